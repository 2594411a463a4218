package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/GoPolymarket/econgate/internal/pkg/logger"
	"gopkg.in/natefinch/lumberjack.v2"
)

type AuditService struct {
	logChan chan *model.AuditLog
	logFile *lumberjack.Logger
	buffer  *auditBuffer
	repo    AuditRepo
	wg      sync.WaitGroup
	once    sync.Once
}

type AuditRepo interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, clientID string, limit int, from, to *time.Time) ([]*model.AuditLog, error)
}

// NewAuditService starts the background writer. Records go to a rotated
// JSONL file under logDir and, when repo is set, to the repository.
func NewAuditService(logDir string, repo AuditRepo) (*AuditService, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	svc := &AuditService{
		logChan: make(chan *model.AuditLog, 1000),
		logFile: &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "audit.jsonl"),
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
		},
		buffer: newAuditBuffer(1000),
		repo:   repo,
	}

	svc.wg.Add(1)
	go svc.processLogs()

	return svc, nil
}

// Log never blocks the request path; a full queue drops the entry.
func (s *AuditService) Log(entry *model.AuditLog) {
	if entry == nil {
		return
	}
	if s.buffer != nil {
		s.buffer.Add(entry)
	}
	select {
	case s.logChan <- entry:
	default:
		logger.Warn("audit queue full, dropping entry", "request_id", entry.ID)
	}
}

// List prefers the repository and falls back to the in-memory ring buffer.
func (s *AuditService) List(ctx context.Context, clientID string, limit int, from, to *time.Time) ([]*model.AuditLog, error) {
	if s.repo != nil {
		records, err := s.repo.List(ctx, clientID, limit, from, to)
		if err == nil {
			return records, nil
		}
		logger.LogError(ctx, err, "audit repo list failed, using buffer")
	}
	if s.buffer == nil {
		return nil, nil
	}
	return s.buffer.List(clientID, limit, from, to), nil
}

func (s *AuditService) processLogs() {
	defer s.wg.Done()
	encoder := json.NewEncoder(s.logFile)
	for entry := range s.logChan {
		if s.repo != nil {
			if err := s.repo.Insert(context.Background(), entry); err != nil {
				logger.Error("failed to write audit log to repo", "error", err)
			}
		}
		if err := encoder.Encode(entry); err != nil {
			logger.Error("failed to write audit log", "error", err)
		}
	}
}

// Close drains queued entries and closes the file.
func (s *AuditService) Close() {
	s.once.Do(func() {
		close(s.logChan)
		s.wg.Wait()
		s.logFile.Close()
	})
}

type auditBuffer struct {
	mu        sync.Mutex
	maxSize   int
	records   []*model.AuditLog
	nextIndex int
}

func newAuditBuffer(maxSize int) *auditBuffer {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &auditBuffer{
		maxSize: maxSize,
		records: make([]*model.AuditLog, 0, maxSize),
	}
}

func (b *auditBuffer) Add(entry *model.AuditLog) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) < b.maxSize {
		b.records = append(b.records, entry)
		return
	}
	b.records[b.nextIndex] = entry
	b.nextIndex = (b.nextIndex + 1) % b.maxSize
}

// List walks newest first.
func (b *auditBuffer) List(clientID string, limit int, from, to *time.Time) []*model.AuditLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	if limit <= 0 || limit > b.maxSize {
		limit = b.maxSize
	}
	results := make([]*model.AuditLog, 0, limit)
	total := len(b.records)
	for i := 0; i < total; i++ {
		idx := (b.nextIndex + total - 1 - i) % total
		entry := b.records[idx]
		if entry == nil {
			continue
		}
		if clientID != "" && entry.ClientID != clientID {
			continue
		}
		if from != nil && entry.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && entry.CreatedAt.After(*to) {
			continue
		}
		results = append(results, entry)
		if len(results) >= limit {
			break
		}
	}
	return results
}
