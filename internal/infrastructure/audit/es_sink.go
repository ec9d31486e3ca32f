package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mavrick-auth/internal/application"
)

// DefaultESQueueSize bounds the events waiting to be indexed.
const DefaultESQueueSize = 256

// IndexMapping is the mapping for the audit index, matching AuditEvent.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "action":     {"type": "keyword"},
      "outcome":    {"type": "keyword"},
      "email":      {"type": "keyword"},
      "user_id":    {"type": "long"},
      "provider":   {"type": "keyword"},
      "request_id": {"type": "keyword"},
      "ip":         {"type": "ip"},
      "user_agent": {"type": "text"},
      "at":         {"type": "date"}
    }
  }
}`

// ESSink indexes audit events into Elasticsearch. Record never blocks the
// request: events go onto a bounded queue drained by a single worker, and
// are dropped when the queue is full.
type ESSink struct {
	ES      *elasticsearch.Client
	Index   string
	Logger  *logrus.Logger
	Timeout time.Duration

	queue   chan application.AuditEvent
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

func NewESSink(es *elasticsearch.Client, index string, logger *logrus.Logger) *ESSink {
	return newESSink(es, index, logger, DefaultESQueueSize, true)
}

func newESSink(es *elasticsearch.Client, index string, logger *logrus.Logger, size int, start bool) *ESSink {
	s := &ESSink{
		ES:      es,
		Index:   index,
		Logger:  logger,
		Timeout: 3 * time.Second,
		queue:   make(chan application.AuditEvent, size),
		done:    make(chan struct{}),
	}
	if start && es != nil && index != "" {
		go s.run()
	} else {
		close(s.done)
	}
	return s
}

func (s *ESSink) run() {
	defer close(s.done)
	for ev := range s.queue {
		if err := s.IndexEvent(context.Background(), ev); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("action", ev.Action).Warn("es audit index failed")
		}
	}
}

func (s *ESSink) Record(_ context.Context, ev application.AuditEvent) {
	if s.ES == nil || s.Index == "" {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- ev:
	default:
		if n := s.dropped.Add(1); s.Logger != nil && n&(n-1) == 0 {
			s.Logger.WithFields(logrus.Fields{"action": ev.Action, "dropped": n}).Warn("es audit queue full, dropping event")
		}
	}
}

// Dropped is the number of events discarded because the queue was full.
func (s *ESSink) Dropped() int64 { return s.dropped.Load() }

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (s *ESSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IndexEvent writes one event synchronously.
func (s *ESSink) IndexEvent(ctx context.Context, ev application.AuditEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	c, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req := esapi.IndexRequest{Index: s.Index, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(c, s.ES)
	if err != nil {
		return fmt.Errorf("index audit event: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index audit event: %s", res.Status())
	}
	return nil
}
