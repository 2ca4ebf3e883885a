// Package async provides a sink wrapper with a bounded queue, used when
// async_backend_comm is enabled. Events are queued and delivered by a
// background goroutine; the oldest events are dropped when the queue is full.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strongdm/apmcore/pkg/apm"
	"github.com/strongdm/apmcore/pkg/logging"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("async sink is closed")

// AsyncSinkOption configures the async sink.
type AsyncSinkOption func(*asyncSinkConfig)

type asyncSinkConfig struct {
	queueSize     int
	flushInterval time.Duration
	onDropped     func(count int)
	logger        *slog.Logger
}

// WithQueueSize sets the maximum number of queued events (default: 1000).
func WithQueueSize(size int) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithFlushInterval sets how often the inner sink is flushed while events
// keep arriving (default: 1s).
func WithFlushInterval(d time.Duration) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if d > 0 {
			c.flushInterval = d
		}
	}
}

// WithOnDropped sets a callback invoked when events are dropped due to queue overflow.
func WithOnDropped(fn func(count int)) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		c.onDropped = fn
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		c.logger = logger
	}
}

// asyncSink wraps a sink with a bounded queue.
type asyncSink struct {
	inner     apm.Sink
	queue     chan apm.ErrorEvent
	done      chan struct{}
	interval  time.Duration
	onDropped func(count int)
	logger    *slog.Logger

	// pending counts events accepted but not yet handed to inner.
	pending atomic.Int64
	dropped atomic.Int64

	closeOnce sync.Once
	closed    atomic.Bool
	wg        sync.WaitGroup
}

// NewAsyncSink wraps a sink with a bounded queue for async writes.
// Write never blocks on the inner sink.
func NewAsyncSink(inner apm.Sink, opts ...AsyncSinkOption) apm.Sink {
	cfg := &asyncSinkConfig{
		queueSize:     1000,
		flushInterval: time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &asyncSink{
		inner:     inner,
		queue:     make(chan apm.ErrorEvent, cfg.queueSize),
		done:      make(chan struct{}),
		interval:  cfg.flushInterval,
		onDropped: cfg.onDropped,
		logger:    logging.ForFeature(cfg.logger, logging.FeatureReport),
	}

	s.wg.Add(1)
	go s.processLoop()

	return s
}

// processLoop drains the queue into the inner sink.
func (s *asyncSink) processLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case event := <-s.queue:
			s.deliver(event)
			dirty = true
		case <-ticker.C:
			if dirty {
				if err := s.inner.Flush(context.Background()); err != nil {
					s.logger.Warn("periodic flush failed", "error", err)
				}
				dirty = false
			}
		case <-s.done:
			for {
				select {
				case event := <-s.queue:
					s.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (s *asyncSink) deliver(event apm.ErrorEvent) {
	defer s.pending.Add(-1)
	if err := s.inner.Write(context.Background(), event); err != nil {
		s.logger.Warn("event delivery failed",
			"event_id", event.EventID,
			"error", err)
	}
}

// Write enqueues an event. If the queue is full, the oldest event is dropped.
func (s *asyncSink) Write(ctx context.Context, event apm.ErrorEvent) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.pending.Add(1)
	select {
	case s.queue <- event:
		return nil
	default:
	}

	// Drop the oldest and retry once; if the consumer raced us and the
	// queue is still full, the new event is dropped instead.
	select {
	case <-s.queue:
		s.drop()
	default:
	}
	select {
	case s.queue <- event:
	default:
		s.drop()
	}
	return nil
}

func (s *asyncSink) drop() {
	s.pending.Add(-1)
	n := s.dropped.Add(1)
	if n == 1 || n%100 == 0 {
		s.logger.Warn("event queue full, dropping events", "dropped_total", n)
	}
	if s.onDropped != nil {
		s.onDropped(1)
	}
}

// Flush blocks until every accepted event has reached the inner sink, then
// flushes it.
func (s *asyncSink) Flush(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for s.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return s.inner.Flush(ctx)
}

// Close stops the background goroutine after draining the queue and closes
// the inner sink.
func (s *asyncSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.wg.Wait()
		err = errors.Join(s.inner.Flush(context.Background()), s.inner.Close())
	})
	return err
}
