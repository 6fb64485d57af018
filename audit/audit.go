package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Outcome is the terminal state of one request's authentication pipeline.
// Every request produces exactly one event.
type Outcome string

const (
	OutcomePublicPass        Outcome = "public_pass"
	OutcomeOptionalAnonymous Outcome = "optional_anonymous"
	OutcomeAllowed           Outcome = "allowed"
	OutcomeAuthFailed        Outcome = "auth_failed"
	OutcomeDenied            Outcome = "denied"
	OutcomeMiddlewareError   Outcome = "middleware_error"
)

// Event is one structured authentication/authorization record.
type Event struct {
	Time      time.Time
	Outcome   Outcome
	RequestID string
	Method    string
	Path      string
	UserID    string
	Code      string
	Status    int
}

// Sink receives audit events. Implementations own their storage and must
// apply their own bounded timeouts; the gateway never waits on them.
type Sink interface {
	Record(ctx context.Context, event Event) error
}

// SlogSink writes audit events to a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Record(ctx context.Context, event Event) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "auth audit",
		slog.String("outcome", string(event.Outcome)),
		slog.String("request_id", event.RequestID),
		slog.String("method", event.Method),
		slog.String("path", event.Path),
		slog.String("user_id", event.UserID),
		slog.String("code", event.Code),
		slog.Int("status", event.Status),
		slog.Time("time", event.Time),
	)
	return nil
}

const (
	dispatchBuffer = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher decouples the request path from the audit sink. Publish never
// blocks and never fails the request: events go onto a buffered channel and
// a single worker drains them; a full buffer drops the event with a warning,
// and sink errors are logged once and never escalate.
type Dispatcher struct {
	sink   Sink
	logger *slog.Logger
	events chan Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(sink Sink, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		events: make(chan Event, dispatchBuffer),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues an event without blocking the caller. Events published
// after Close are dropped.
func (d *Dispatcher) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("audit dispatcher closed, dropping event",
			"outcome", string(event.Outcome),
			"request_id", event.RequestID,
		)
		return
	}
	select {
	case d.events <- event:
	default:
		d.logger.Warn("audit buffer full, dropping event",
			"outcome", string(event.Outcome),
			"request_id", event.RequestID,
		)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := d.sink.Record(ctx, event); err != nil {
			d.logger.Warn("audit sink failed",
				"error", err,
				"outcome", string(event.Outcome),
				"request_id", event.RequestID,
			)
		}
		cancel()
	}
}

// Close stops accepting events and drains the buffer. Safe to call more than
// once; Publish remains safe (a no-op) after Close returns.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()
	<-d.done
}
