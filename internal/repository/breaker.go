package repository

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/violettance/second-brain-sub000/internal/domain"
	appErrors "github.com/violettance/second-brain-sub000/pkg/errors"
)

// BreakerConfig holds configuration for the backing-store circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the circuit breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerNoteRepository wraps a NoteRepository so that a failing backing
// store trips open instead of being hammered. Business outcomes (not-found,
// validation) are successes as far as the breaker is concerned; only
// backing-store and internal failures count against it. An open circuit
// surfaces as a backing-store error, which the core propagates without retry.
type BreakerNoteRepository struct {
	inner NoteRepository
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerNoteRepository creates the circuit-breaker decorator.
func NewBreakerNoteRepository(inner NoteRepository, config BreakerConfig, logger *zap.Logger) *BreakerNoteRepository {
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return appErrors.IsNotFound(err) || appErrors.IsValidation(err)
		},
	})

	return &BreakerNoteRepository{inner: inner, cb: cb}
}

// execute runs op through the breaker, mapping breaker rejections onto the
// backing-store error kind.
func (r *BreakerNoteRepository) execute(op func() (any, error)) (any, error) {
	result, err := r.cb.Execute(op)
	switch err {
	case nil:
		return result, nil
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		return nil, appErrors.NewBackingStore("backing store unavailable", err)
	default:
		return nil, err
	}
}

func (r *BreakerNoteRepository) CreateNote(ctx context.Context, note *domain.Note) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.inner.CreateNote(ctx, note)
	})
	return err
}

func (r *BreakerNoteRepository) UpdateNote(ctx context.Context, note *domain.Note) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.inner.UpdateNote(ctx, note)
	})
	return err
}

func (r *BreakerNoteRepository) FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	result, err := r.execute(func() (any, error) {
		return r.inner.FindNoteByID(ctx, userID, noteID, tier)
	})
	if err != nil {
		return nil, err
	}
	note, _ := result.(*domain.Note)
	return note, nil
}

func (r *BreakerNoteRepository) FindNotes(ctx context.Context, query NoteQuery) ([]domain.Note, error) {
	result, err := r.execute(func() (any, error) {
		return r.inner.FindNotes(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	notes, _ := result.([]domain.Note)
	return notes, nil
}

func (r *BreakerNoteRepository) ArchiveNote(ctx context.Context, userID, noteID string, archivedAt time.Time) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.inner.ArchiveNote(ctx, userID, noteID, archivedAt)
	})
	return err
}

func (r *BreakerNoteRepository) DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.inner.DeleteNote(ctx, userID, noteID, tier)
	})
	return err
}
