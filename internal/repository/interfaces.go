// Package repository defines the persistence interface for tiered notes.
// The service layer depends only on these interfaces; the concrete backend
// (DynamoDB or in-memory) is selected once at construction.
package repository

import (
	"context"
	"time"

	"github.com/violettance/second-brain-sub000/internal/domain"
)

// NoteQuery describes a filtered listing of one owner's notes within a tier.
type NoteQuery struct {
	UserID string
	Tier   domain.Tier

	// NoteDate restricts results to notes whose NoteDate equals it
	// (YYYY-MM-DD). Empty means no date filter.
	NoteDate string

	// IncludeArchived includes soft-deleted short-term notes. Ignored for
	// long-term queries, which have no archival state.
	IncludeArchived bool
}

// NoteRepository is the row-oriented contract the durable backend must
// satisfy, per tier. Insert and delete must each be individually atomic;
// nothing is required to be atomic across tiers.
type NoteRepository interface {
	// CreateNote inserts the note into its tier's collection. The caller
	// assigns id and timestamps.
	CreateNote(ctx context.Context, note *domain.Note) error

	// UpdateNote overwrites the mutable fields of an existing note in place
	// (same tier). Returns a NotFound error if the note is absent.
	UpdateNote(ctx context.Context, note *domain.Note) error

	// FindNoteByID retrieves a single note from the given tier. Returns
	// (nil, nil) when the note does not exist. Archived short-term notes are
	// still returned: archival hides a note from listings, not from direct
	// lookup.
	FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error)

	// FindNotes lists notes matching the query, excluding archived
	// short-term notes unless IncludeArchived is set.
	FindNotes(ctx context.Context, query NoteQuery) ([]domain.Note, error)

	// ArchiveNote soft-deletes a short-term note by stamping ArchivedAt.
	// Returns a NotFound error if the note is absent.
	ArchiveNote(ctx context.Context, userID, noteID string, archivedAt time.Time) error

	// DeleteNote physically removes a note from the given tier. The delete
	// is conditional on the row existing and returns a NotFound error
	// otherwise; concurrent movers race on this delete, and it alone decides
	// the winner.
	DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error
}
