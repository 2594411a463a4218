package middleware

import (
	"sync"
	"time"

	"github.com/GoPolymarket/econgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

type IdempotencyRecord struct {
	Status     int
	Body       []byte
	CreatedAt  time.Time
	Processing bool // held by an in-flight request
}

type IdempotencyStore interface {
	// GetOrLock returns (record, true) if exists; (nil,false) if newly locked by caller.
	GetOrLock(key string) (*IdempotencyRecord, bool)
	Save(key string, status int, body []byte)
	Unlock(key string)
}

// InMemIdempotencyStore backs single-instance deployments and tests.
type InMemIdempotencyStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	records map[string]*IdempotencyRecord // key: clientID + ":" + idempotency key
}

func NewInMemIdempotencyStore(ttl time.Duration) *InMemIdempotencyStore {
	return &InMemIdempotencyStore{
		ttl:     ttl,
		records: make(map[string]*IdempotencyRecord),
	}
}

func (s *InMemIdempotencyStore) GetOrLock(key string) (*IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key]; ok && !s.expired(rec) {
		return rec, true
	}

	s.records[key] = &IdempotencyRecord{
		Processing: true,
		CreatedAt:  time.Now(),
	}
	return nil, false
}

func (s *InMemIdempotencyStore) Save(key string, status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = &IdempotencyRecord{
		Status:     status,
		Body:       body,
		CreatedAt:  time.Now(),
		Processing: false,
	}
}

func (s *InMemIdempotencyStore) Unlock(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

func (s *InMemIdempotencyStore) expired(rec *IdempotencyRecord) bool {
	return s.ttl > 0 && time.Since(rec.CreatedAt) > s.ttl
}

// IdempotencyMiddleware replays the stored response for a repeated
// X-Idempotency-Key from the same client. Server errors, and errors left for
// ErrorHandler to render, are not stored so the client can retry. Anonymous
// callers share one identity, so their keys are ignored.
func IdempotencyMiddleware(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		idemKey := c.GetHeader(HeaderIdempotencyKey)
		if idemKey == "" || store == nil {
			c.Next()
			return
		}

		clientID := ClientID(c)
		if clientID == "" || clientID == AnonymousClient {
			c.Next()
			return
		}
		fullKey := clientID + ":" + idemKey

		record, hit := store.GetOrLock(fullKey)
		if hit {
			if record.Processing {
				c.Error(apperrors.New(apperrors.ErrConflict, "request in progress", nil))
				c.Abort()
				return
			}
			c.Header("Idempotent-Replay", "true")
			c.Data(record.Status, "application/json; charset=utf-8", record.Body)
			c.Abort()
			return
		}

		w := &responseBodyWriter{body: nil, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if !w.Written() || w.Status() >= 500 {
			store.Unlock(fullKey)
			return
		}
		store.Save(fullKey, w.Status(), w.body)
	}
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseBodyWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}
