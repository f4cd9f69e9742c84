package repository

import (
	"context"
	"time"

	"github.com/violettance/second-brain-sub000/internal/domain"
)

// OperationObserver receives one observation per repository call. The
// observability collector satisfies it; the indirection keeps this package
// free of a Prometheus dependency.
type OperationObserver interface {
	ObserveRepoOperation(operation string, duration time.Duration, err error)
}

// InstrumentedNoteRepository decorates a NoteRepository with per-operation
// observations. It sits closest to the backing store in the decorator chain,
// so cache hits served above it are not counted as repository work.
type InstrumentedNoteRepository struct {
	inner    NoteRepository
	observer OperationObserver
}

// NewInstrumentedNoteRepository creates the metrics decorator.
func NewInstrumentedNoteRepository(inner NoteRepository, observer OperationObserver) *InstrumentedNoteRepository {
	return &InstrumentedNoteRepository{inner: inner, observer: observer}
}

// observe times op and reports its outcome under the given name.
func (r *InstrumentedNoteRepository) observe(operation string, op func() error) error {
	start := time.Now()
	err := op()
	r.observer.ObserveRepoOperation(operation, time.Since(start), err)
	return err
}

func (r *InstrumentedNoteRepository) CreateNote(ctx context.Context, note *domain.Note) error {
	return r.observe("create_note", func() error {
		return r.inner.CreateNote(ctx, note)
	})
}

func (r *InstrumentedNoteRepository) UpdateNote(ctx context.Context, note *domain.Note) error {
	return r.observe("update_note", func() error {
		return r.inner.UpdateNote(ctx, note)
	})
}

func (r *InstrumentedNoteRepository) FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	var note *domain.Note
	err := r.observe("find_note_by_id", func() error {
		var innerErr error
		note, innerErr = r.inner.FindNoteByID(ctx, userID, noteID, tier)
		return innerErr
	})
	return note, err
}

func (r *InstrumentedNoteRepository) FindNotes(ctx context.Context, query NoteQuery) ([]domain.Note, error) {
	var notes []domain.Note
	err := r.observe("find_notes", func() error {
		var innerErr error
		notes, innerErr = r.inner.FindNotes(ctx, query)
		return innerErr
	})
	return notes, err
}

func (r *InstrumentedNoteRepository) ArchiveNote(ctx context.Context, userID, noteID string, archivedAt time.Time) error {
	return r.observe("archive_note", func() error {
		return r.inner.ArchiveNote(ctx, userID, noteID, archivedAt)
	})
}

func (r *InstrumentedNoteRepository) DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error {
	return r.observe("delete_note", func() error {
		return r.inner.DeleteNote(ctx, userID, noteID, tier)
	})
}
