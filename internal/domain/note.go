// Package domain contains the core entities and events for the tiered note store.
package domain

import "time"

// Tier identifies which logical collection a note belongs to. A note is in
// exactly one tier at a time; the tier determines retention and deletion
// semantics, and which table partition owns the row.
type Tier string

const (
	// TierShortTerm holds working notes that expire 30 days after creation
	// unless promoted. Deletion is a soft archive.
	TierShortTerm Tier = "short-term"

	// TierLongTerm holds promoted notes with no archival path. Deletion is
	// unconditional and permanent.
	TierLongTerm Tier = "long-term"
)

// Valid reports whether t is one of the two known tiers.
func (t Tier) Valid() bool {
	return t == TierShortTerm || t == TierLongTerm
}

// ShortTermRetentionDays is the advisory lifetime of a short-term note.
// Nothing sweeps notes at the boundary; DaysRemaining is computed at read time.
const ShortTermRetentionDays = 30

// Note represents a single note in a user's knowledge base.
type Note struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags"`
	Tier       Tier       `json:"tier"`
	NoteDate   string     `json:"note_date"` // YYYY-MM-DD
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// IsArchived reports whether the note has been soft-deleted. Only meaningful
// for short-term notes; long-term notes are removed physically.
func (n *Note) IsArchived() bool {
	return n.ArchivedAt != nil
}

// DaysRemaining returns how many whole days are left before a short-term note
// reaches its advisory 30-day expiry, clamped at zero. A note created exactly
// 30 days ago returns 0. Long-term notes do not expire and always return 0.
func (n *Note) DaysRemaining(now time.Time) int {
	if n.Tier != TierShortTerm {
		return 0
	}
	elapsed := int(now.Sub(n.CreatedAt).Hours() / 24)
	remaining := ShortTermRetentionDays - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NoteDateLayout is the wire format for NoteDate values.
const NoteDateLayout = "2006-01-02"
