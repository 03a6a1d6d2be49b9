// Package service implements the carpool domain: validation, authorization,
// membership and seat bookkeeping, the carpool lifecycle and read models.
// Every operation takes the acting user explicitly and returns (T, error)
// where expected failures are *Error values.
package service

import (
	"context"
	"time"

	"github.com/orgatagova/orgatagova/internal/metrics"
	"github.com/orgatagova/orgatagova/internal/queue"
	"github.com/orgatagova/orgatagova/internal/repository"
	"github.com/orgatagova/orgatagova/internal/slogx"
	"github.com/orgatagova/orgatagova/internal/utils"
)

// CodeGenerator returns a fresh invitation code candidate.
type CodeGenerator func() (string, error)

// EventPublisher receives domain events after the mutation that caused them
// has committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.CarpoolEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, queue.CarpoolEvent) error { return nil }

type Service struct {
	store   *repository.Store
	events  EventPublisher
	newCode CodeGenerator
	now     func() time.Time
	loc     *time.Location
}

type Option func(*Service)

// WithClock overrides the time source used for "in the future" checks.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation sets the zone departure dates and times are interpreted in.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func WithCodeGenerator(gen CodeGenerator) Option { return func(s *Service) { s.newCode = gen } }

func WithEvents(p EventPublisher) Option { return func(s *Service) { s.events = p } }

// New constructs a Service.  store must be non-nil.
func New(store *repository.Store, opts ...Option) *Service {
	if store == nil {
		panic("nil store passed to service.New")
	}
	s := &Service{
		store:   store,
		events:  noopPublisher{},
		newCode: utils.NewInvitationCode,
		now:     time.Now,
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the configured location.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// record counts the outcome of op and passes err through.
func record(op string, err error) {
	result := "ok"
	if err != nil {
		result = string(KindOf(err))
	}
	metrics.CarpoolOperationsTotal.WithLabelValues(op, result).Inc()
}

func (s *Service) publish(ctx context.Context, ev queue.CarpoolEvent) {
	ev.OccurredAt = s.now().UTC().Format(time.RFC3339)
	if err := s.events.Publish(ctx, ev); err != nil {
		slogx.FromContext(ctx).Warn("event not published", "event", ev.Type, "carpool_id", ev.CarpoolID, "err", err)
	}
}
