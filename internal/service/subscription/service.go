package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

// DefaultInsertTimeout bounds a single insert when no timeout is configured.
const DefaultInsertTimeout = 5 * time.Second

// Service runs the intake pipeline. It is safe for concurrent use and holds
// no per-request state.
type Service struct {
	repo    Repository
	timeout time.Duration
	now     func() time.Time
	newID   func() uuid.UUID
}

// Option customises a Service.
type Option func(*Service)

// WithInsertTimeout sets the upper bound on one insert.
func WithInsertTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the subscribed_at source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates a subscription service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		timeout: DefaultInsertTimeout,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe converts form and stores it as a new subscription.
//
// A *domain.ValidationError means nothing was stored. A *PersistenceError
// means the insert failed or timed out. The insert is detached from ctx
// cancellation so a dropped client cannot abort it halfway, but it is still
// bounded by the insert timeout.
func (s *Service) Subscribe(ctx context.Context, form Form) (domain.Subscription, error) {
	log := logger.FromContext(ctx)

	subscriber, err := Convert(form)
	if err != nil {
		log.Info("Rejected subscription form", "reason", err)
		return domain.Subscription{}, err
	}

	record := domain.NewSubscription(s.newID(), subscriber, s.now())
	log.Info("Saving new subscriber details in the database", "subscription_id", record.ID)

	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.repo.Insert(insertCtx, record); err != nil {
		log.Error("Failed to save new subscriber", "subscription_id", record.ID, "error", err)
		return domain.Subscription{}, &PersistenceError{Err: err}
	}

	log.Info("New subscriber details have been saved", "subscription_id", record.ID)
	return record, nil
}
