// Package memory implements the note repository with in-process maps. It is
// the fallback backend when no DynamoDB table is configured, and the backend
// unit tests run against. Mutations made through one handle are visible to
// every reader of the same instance; the event bus tells those readers when
// to re-list.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/violettance/second-brain-sub000/internal/domain"
	"github.com/violettance/second-brain-sub000/internal/repository"
	appErrors "github.com/violettance/second-brain-sub000/pkg/errors"
)

// NoteRepository stores notes in two tier-partitioned maps guarded by a
// single mutex, so cross-tier moves observe a consistent view.
type NoteRepository struct {
	mu sync.RWMutex

	// userID -> noteID -> note, one map per logical collection
	shortTerm map[string]map[string]*domain.Note
	longTerm  map[string]map[string]*domain.Note
}

// NewNoteRepository creates an empty in-memory repository.
func NewNoteRepository() *NoteRepository {
	return &NoteRepository{
		shortTerm: make(map[string]map[string]*domain.Note),
		longTerm:  make(map[string]map[string]*domain.Note),
	}
}

// collection returns the map for a tier, creating the per-user bucket.
// Callers must hold the lock.
func (r *NoteRepository) collection(userID string, tier domain.Tier) map[string]*domain.Note {
	tierMap := r.shortTerm
	if tier == domain.TierLongTerm {
		tierMap = r.longTerm
	}
	bucket, ok := tierMap[userID]
	if !ok {
		bucket = make(map[string]*domain.Note)
		tierMap[userID] = bucket
	}
	return bucket
}

// CreateNote inserts the note into its tier's collection.
func (r *NoteRepository) CreateNote(ctx context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.collection(note.UserID, note.Tier)
	if _, exists := bucket[note.ID]; exists {
		return appErrors.NewValidation("note already exists")
	}

	stored := cloneNote(note)
	bucket[note.ID] = stored
	return nil
}

// UpdateNote overwrites an existing note in place, same tier.
func (r *NoteRepository) UpdateNote(ctx context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.collection(note.UserID, note.Tier)
	if _, exists := bucket[note.ID]; !exists {
		return appErrors.NewNotFound("note not found")
	}

	bucket[note.ID] = cloneNote(note)
	return nil
}

// FindNoteByID retrieves a single note; (nil, nil) when absent. Archived
// notes are returned: archival only hides notes from listings.
func (r *NoteRepository) FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tierMap := r.shortTerm
	if tier == domain.TierLongTerm {
		tierMap = r.longTerm
	}
	bucket, ok := tierMap[userID]
	if !ok {
		return nil, nil
	}
	note, ok := bucket[noteID]
	if !ok {
		return nil, nil
	}
	return cloneNote(note), nil
}

// FindNotes lists notes matching the query.
func (r *NoteRepository) FindNotes(ctx context.Context, query repository.NoteQuery) ([]domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tierMap := r.shortTerm
	if query.Tier == domain.TierLongTerm {
		tierMap = r.longTerm
	}

	var notes []domain.Note
	for _, note := range tierMap[query.UserID] {
		if note.IsArchived() && !query.IncludeArchived {
			continue
		}
		if query.NoteDate != "" && note.NoteDate != query.NoteDate {
			continue
		}
		notes = append(notes, *cloneNote(note))
	}
	return notes, nil
}

// ArchiveNote stamps ArchivedAt on a short-term note.
func (r *NoteRepository) ArchiveNote(ctx context.Context, userID, noteID string, archivedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.shortTerm[userID]
	if !ok {
		return appErrors.NewNotFound("note not found")
	}
	note, ok := bucket[noteID]
	if !ok {
		return appErrors.NewNotFound("note not found")
	}

	at := archivedAt
	note.ArchivedAt = &at
	note.UpdatedAt = archivedAt
	return nil
}

// DeleteNote physically removes a note. The existence check and the delete
// happen under one lock, so concurrent movers of the same note see exactly
// one success.
func (r *NoteRepository) DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tierMap := r.shortTerm
	if tier == domain.TierLongTerm {
		tierMap = r.longTerm
	}
	bucket, ok := tierMap[userID]
	if !ok {
		return appErrors.NewNotFound("note not found")
	}
	if _, ok := bucket[noteID]; !ok {
		return appErrors.NewNotFound("note not found")
	}
	delete(bucket, noteID)
	return nil
}

// cloneNote copies a note so callers never share map-backed state.
func cloneNote(note *domain.Note) *domain.Note {
	copied := *note
	if note.Tags != nil {
		copied.Tags = append([]string(nil), note.Tags...)
	}
	if note.ArchivedAt != nil {
		at := *note.ArchivedAt
		copied.ArchivedAt = &at
	}
	return &copied
}
