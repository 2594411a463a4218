// Package stream fans validated event contracts out to websocket subscribers.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GoPolymarket/econgate/internal/pkg/logger"
	"github.com/GoPolymarket/econgate/internal/pkg/metrics"
	"github.com/gorilla/websocket"
)

const (
	DefaultBufferSize   = 64
	DefaultWriteTimeout = 5 * time.Second
	DefaultPingPeriod   = 30 * time.Second
)

type Config struct {
	BufferSize   int
	WriteTimeout time.Duration
	PingPeriod   time.Duration
}

// Envelope is the frame written to subscribers.
type Envelope struct {
	Seq         uint64          `json:"seq"`
	Contract    string          `json:"contract"`
	PublishedAt time.Time       `json:"publishedAt"`
	Payload     json.RawMessage `json:"payload"`
}

type Hub struct {
	cfg      Config
	upgrader websocket.Upgrader
	seq      atomic.Uint64

	mu   sync.RWMutex
	subs map[*subscriber]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

type subscriber struct {
	send   chan []byte
	filter map[string]struct{} // empty: every contract
	once   sync.Once
}

func (s *subscriber) wants(contract string) bool {
	if len(s.filter) == 0 {
		return true
	}
	_, ok := s.filter[contract]
	return ok
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

func NewHub(cfg Config) *Hub {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = DefaultPingPeriod
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subs:   make(map[*subscriber]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish frames payload and queues it for every interested subscriber. It
// never blocks: a subscriber whose buffer is full is disconnected.
func (h *Hub) Publish(contract string, payload []byte) int {
	frame, err := json.Marshal(Envelope{
		Seq:         h.seq.Add(1),
		Contract:    contract,
		PublishedAt: time.Now().UTC(),
		Payload:     payload,
	})
	if err != nil {
		logger.Error("failed to frame event", "contract", contract, "error", err)
		return 0
	}

	delivered := 0
	var slow []*subscriber
	h.mu.RLock()
	for sub := range h.subs {
		if !sub.wants(contract) {
			continue
		}
		select {
		case sub.send <- frame:
			delivered++
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		metrics.EventsDropped.WithLabelValues(contract).Inc()
		logger.Warn("dropping slow stream subscriber", "contract", contract)
		h.remove(sub)
	}
	return delivered
}

// Subscribe registers an in-process subscriber. The returned channel is
// closed by cancel, by Close, or when the subscriber falls behind.
func (h *Hub) Subscribe(contracts []string) (<-chan []byte, func()) {
	sub := h.add(contracts)
	return sub.send, func() { h.remove(sub) }
}

// Subscribers reports the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeWS upgrades the request and streams matching events until the peer
// goes away or the hub closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, contracts []string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	sub := h.add(contracts)
	go h.readLoop(conn, sub)
	go h.writeLoop(conn, sub)
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		delete(h.subs, sub)
		sub.close()
	}
	metrics.StreamSubscribers.Set(0)
}

func (h *Hub) add(contracts []string) *subscriber {
	sub := &subscriber{
		send:   make(chan []byte, h.cfg.BufferSize),
		filter: make(map[string]struct{}, len(contracts)),
	}
	for _, c := range contracts {
		if c != "" {
			sub.filter[c] = struct{}{}
		}
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	metrics.StreamSubscribers.Set(float64(n))
	return sub
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		sub.close()
	}
	n := len(h.subs)
	h.mu.Unlock()
	metrics.StreamSubscribers.Set(float64(n))
}

// readLoop only services control frames; subscribers do not send data.
// A missing pong within two ping periods ends the connection.
func (h *Hub) readLoop(conn *websocket.Conn, sub *subscriber) {
	defer h.remove(sub)
	readTimeout := 2 * h.cfg.PingPeriod
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.remove(sub)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(sub)
				return
			}
		case <-h.ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}
