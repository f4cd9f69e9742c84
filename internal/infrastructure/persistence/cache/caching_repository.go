// Package cache decorates the note repository with read-through caching and
// prefix invalidation, following the cache-aside pattern: reads fill the
// cache on miss, every successful mutation clears the owner's key family.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/violettance/second-brain-sub000/internal/domain"
	qcache "github.com/violettance/second-brain-sub000/internal/infrastructure/cache"
	"github.com/violettance/second-brain-sub000/internal/repository"
)

// CachingConfig controls TTLs for the cached read paths.
type CachingConfig struct {
	// NoteTTL applies to single-note lookups.
	NoteTTL time.Duration
	// ListTTL applies to listing queries, which go stale faster.
	ListTTL time.Duration
}

// DefaultCachingConfig returns sensible defaults for caching configuration.
func DefaultCachingConfig() CachingConfig {
	return CachingConfig{
		NoteTTL: qcache.TTLMedium,
		ListTTL: qcache.TTLShort,
	}
}

// CachingNoteRepository is a decorator that adds caching to NoteRepository
// operations without changing the interface.
//
// Two races are tolerated by design and bounded by TTL rather than locking:
// two concurrent misses for the same key both fetch and the second Set
// overwrites with an equivalent value (no single-flight), and a fetch that
// completes after a concurrent invalidation may repopulate a briefly stale
// value. Callers must not rely on either being prevented.
type CachingNoteRepository struct {
	inner  repository.NoteRepository
	cache  *qcache.QueryCache
	config CachingConfig
}

// NewCachingNoteRepository creates a new caching decorator for NoteRepository.
func NewCachingNoteRepository(inner repository.NoteRepository, cache *qcache.QueryCache, config CachingConfig) *CachingNoteRepository {
	if config.NoteTTL <= 0 {
		config.NoteTTL = qcache.TTLMedium
	}
	if config.ListTTL <= 0 {
		config.ListTTL = qcache.TTLShort
	}
	return &CachingNoteRepository{
		inner:  inner,
		cache:  cache,
		config: config,
	}
}

// CreateNote writes through and invalidates the owner's cached queries.
func (r *CachingNoteRepository) CreateNote(ctx context.Context, note *domain.Note) error {
	if err := r.inner.CreateNote(ctx, note); err != nil {
		return err
	}
	r.invalidateOwner(ctx, note.UserID)
	return nil
}

// UpdateNote writes through and invalidates the owner's cached queries.
func (r *CachingNoteRepository) UpdateNote(ctx context.Context, note *domain.Note) error {
	if err := r.inner.UpdateNote(ctx, note); err != nil {
		return err
	}
	r.invalidateOwner(ctx, note.UserID)
	return nil
}

// FindNoteByID serves single-note lookups read-through.
func (r *CachingNoteRepository) FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	key := qcache.NoteByIDKey(userID, tier, noteID)
	if data, found, err := r.cache.Get(ctx, key); found && err == nil {
		var note domain.Note
		if unmarshalErr := json.Unmarshal(data, &note); unmarshalErr == nil {
			return &note, nil
		}
		// Undecodable entry: fall through to the repository.
	}

	note, err := r.inner.FindNoteByID(ctx, userID, noteID, tier)
	if err != nil {
		// A failed fetch is never cached as a negative result.
		return nil, err
	}
	if note != nil {
		if data, marshalErr := json.Marshal(note); marshalErr == nil {
			r.cache.Set(ctx, key, data, r.config.NoteTTL)
		}
	}
	return note, nil
}

// FindNotes serves listings read-through. Archived-inclusive listings are a
// rare administrative path and bypass the cache entirely.
func (r *CachingNoteRepository) FindNotes(ctx context.Context, query repository.NoteQuery) ([]domain.Note, error) {
	if query.IncludeArchived {
		return r.inner.FindNotes(ctx, query)
	}

	key := listKey(query)
	if data, found, err := r.cache.Get(ctx, key); found && err == nil {
		var notes []domain.Note
		if unmarshalErr := json.Unmarshal(data, &notes); unmarshalErr == nil {
			return notes, nil
		}
	}

	notes, err := r.inner.FindNotes(ctx, query)
	if err != nil {
		return nil, err
	}
	if data, marshalErr := json.Marshal(notes); marshalErr == nil {
		r.cache.Set(ctx, key, data, r.config.ListTTL)
	}
	return notes, nil
}

// ArchiveNote soft-deletes through and invalidates the owner's cached queries.
func (r *CachingNoteRepository) ArchiveNote(ctx context.Context, userID, noteID string, archivedAt time.Time) error {
	if err := r.inner.ArchiveNote(ctx, userID, noteID, archivedAt); err != nil {
		return err
	}
	r.invalidateOwner(ctx, userID)
	return nil
}

// DeleteNote deletes through and invalidates the owner's cached queries.
func (r *CachingNoteRepository) DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error {
	if err := r.inner.DeleteNote(ctx, userID, noteID, tier); err != nil {
		return err
	}
	r.invalidateOwner(ctx, userID)
	return nil
}

// invalidateOwner clears every cached query in the owner's key family. It is
// called synchronously after each successful mutation, with owner-level
// prefixes rather than full keys so all date-qualified variants go too.
func (r *CachingNoteRepository) invalidateOwner(ctx context.Context, userID string) {
	for _, prefix := range qcache.OwnerPrefixes(userID) {
		r.cache.Invalidate(ctx, prefix)
	}
}

// listKey derives the registry key for a listing query. Daily-note keys
// (notes_<owner>_<date>) are the short-term tier's dated listings; the
// long-term tier gets its own dated variant under the memory_long family.
func listKey(query repository.NoteQuery) string {
	if query.Tier == domain.TierLongTerm {
		if query.NoteDate != "" {
			return qcache.MemoryLongByDateKey(query.UserID, query.NoteDate)
		}
		return qcache.MemoryLongKey(query.UserID)
	}
	if query.NoteDate != "" {
		return qcache.NotesByDateKey(query.UserID, query.NoteDate)
	}
	return qcache.MemoryShortKey(query.UserID)
}
