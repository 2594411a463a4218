package repository

import (
	"context"
	"sync"
	"time"

	"github.com/GoPolymarket/econgate/internal/model"
)

// MemoryRejectionRepo keeps the newest rejections in process memory.
type MemoryRejectionRepo struct {
	mu      sync.RWMutex
	maxSize int
	nextID  uint
	records []*model.ContractRejection // oldest first
}

func NewMemoryRejectionRepo(maxSize int) *MemoryRejectionRepo {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryRejectionRepo{maxSize: maxSize}
}

func (r *MemoryRejectionRepo) Insert(_ context.Context, rec *model.ContractRejection) error {
	if rec == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *rec
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	rec.ID = stored.ID
	r.records = append(r.records, &stored)
	if over := len(r.records) - r.maxSize; over > 0 {
		r.records = append(r.records[:0:0], r.records[over:]...)
	}
	return nil
}

func (r *MemoryRejectionRepo) List(_ context.Context, filter model.RejectionFilter) ([]*model.ContractRejection, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ContractRejection, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := r.records[i]
		if filter.ClientID != "" && rec.ClientID != filter.ClientID {
			continue
		}
		if filter.Contract != "" && rec.Contract != filter.Contract {
			continue
		}
		if filter.From != nil && rec.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.CreatedAt.After(*filter.To) {
			continue
		}
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

func (r *MemoryRejectionRepo) Cleanup(_ context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, rec := range r.records {
		if !rec.CreatedAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

// MemoryUsageRepo counts usage per client and UTC day in process memory.
type MemoryUsageRepo struct {
	mu   sync.Mutex
	days map[string]*model.DailyUsage // clientID + "|" + day
	now  func() time.Time
}

func NewMemoryUsageRepo() *MemoryUsageRepo {
	return &MemoryUsageRepo{
		days: make(map[string]*model.DailyUsage),
		now:  time.Now,
	}
}

func (r *MemoryUsageRepo) AddUsage(_ context.Context, clientID, contract string, accepted bool) error {
	day := r.now().UTC().Format(time.DateOnly)
	r.mu.Lock()
	defer r.mu.Unlock()
	key := clientID + "|" + day
	usage, ok := r.days[key]
	if !ok {
		usage = &model.DailyUsage{ClientID: clientID, Day: day, ByContract: map[string]int64{}}
		r.days[key] = usage
	}
	if accepted {
		usage.Accepted++
	} else {
		usage.Rejected++
	}
	usage.ByContract[contract]++
	return nil
}

func (r *MemoryUsageRepo) GetDailyUsage(_ context.Context, clientID string, day time.Time) (*model.DailyUsage, error) {
	d := day.UTC().Format(time.DateOnly)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := &model.DailyUsage{ClientID: clientID, Day: d, ByContract: map[string]int64{}}
	if usage, ok := r.days[clientID+"|"+d]; ok {
		out.Accepted = usage.Accepted
		out.Rejected = usage.Rejected
		for k, v := range usage.ByContract {
			out.ByContract[k] = v
		}
	}
	return out, nil
}
