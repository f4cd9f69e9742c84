package cache

import (
	"fmt"

	"github.com/violettance/second-brain-sub000/internal/domain"
)

// Cache keys follow the shape {kind}_{ownerID}[_{qualifier}]. Producers and
// invalidators both go through this registry so they agree on naming without
// coordination.
//
// Invalidation treats prefix match as family membership, so two kinds must
// never share a prefix ("note_" vs "notes_" differ at the separator) and
// every qualified family's prefix is terminated with the separator: the
// prefix for owner "u1" is "notes_u1_", which cannot alias "notes_u10_...".
// Unqualified keys (the per-tier listing keys) carry no suffix and are
// invalidated as exact keys; owner ids are UUIDs and are never prefixes of
// one another.

// NotesByDateKey is the key for a date-filtered note listing.
func NotesByDateKey(ownerID, date string) string {
	return fmt.Sprintf("notes_%s_%s", ownerID, date)
}

// NotesPrefix covers every date-qualified notes listing for an owner.
func NotesPrefix(ownerID string) string {
	return fmt.Sprintf("notes_%s_", ownerID)
}

// MemoryShortKey is the key for an owner's full short-term listing.
func MemoryShortKey(ownerID string) string {
	return fmt.Sprintf("memory_short_%s", ownerID)
}

// MemoryLongKey is the key for an owner's full long-term listing.
func MemoryLongKey(ownerID string) string {
	return fmt.Sprintf("memory_long_%s", ownerID)
}

// MemoryLongByDateKey is the key for a date-filtered long-term listing. It
// extends MemoryLongKey with a qualifier, so the unqualified key is its
// invalidation prefix.
func MemoryLongByDateKey(ownerID, date string) string {
	return fmt.Sprintf("memory_long_%s_%s", ownerID, date)
}

// NoteByIDKey is the key for a single note lookup. By-id lookups are per
// tier, so the tier is part of the key: a note cached from one tier's
// collection must never answer a lookup against the other's.
func NoteByIDKey(ownerID string, tier domain.Tier, noteID string) string {
	return fmt.Sprintf("note_%s_%s_%s", ownerID, tierSegment(tier), noteID)
}

func tierSegment(tier domain.Tier) string {
	if tier == domain.TierLongTerm {
		return "long"
	}
	return "short"
}

// NotePrefix covers every single-note entry for an owner.
func NotePrefix(ownerID string) string {
	return fmt.Sprintf("note_%s_", ownerID)
}

// ProjectsKey is the key for an owner's project listing.
func ProjectsKey(ownerID string) string {
	return fmt.Sprintf("projects_%s", ownerID)
}

// OwnerPrefixes returns the invalidation family touched by any note mutation
// for an owner: every date-qualified listing, every single-note entry, and
// both per-tier listing keys. Invalidators pass each of these to the cache;
// they never pass a full date-qualified key, since a mutation must clear all
// date variants, not just one.
func OwnerPrefixes(ownerID string) []string {
	return []string{
		NotesPrefix(ownerID),
		NotePrefix(ownerID),
		MemoryShortKey(ownerID),
		MemoryLongKey(ownerID),
	}
}
