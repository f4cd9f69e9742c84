// Package notes provides unit tests for the note service using mock repositories.
package notes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violettance/second-brain-sub000/internal/domain"
	qcache "github.com/violettance/second-brain-sub000/internal/infrastructure/cache"
	pcache "github.com/violettance/second-brain-sub000/internal/infrastructure/persistence/cache"
	"github.com/violettance/second-brain-sub000/internal/repository"
	"github.com/violettance/second-brain-sub000/internal/repository/mocks"
	appErrors "github.com/violettance/second-brain-sub000/pkg/errors"
)

// staleReadRepository serves every by-id lookup from a fixed note, standing
// in for a read layer holding a stale copy. Mutations go to the real store.
type staleReadRepository struct {
	*mocks.MockNoteRepository
	stale *domain.Note
}

func (r *staleReadRepository) FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	return r.stale, nil
}

func TestCreateNote(t *testing.T) {
	mockRepo := mocks.NewMockNoteRepository()
	service := NewService(mockRepo, nil, nil, nil)
	ctx := context.Background()

	t.Run("SuccessfulCreation", func(t *testing.T) {
		note, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{
			Title:    "Morning thoughts",
			Content:  "Remember to review the migration design",
			Tags:     []string{"daily"},
			NoteDate: "2025-06-24",
		})
		require.NoError(t, err)
		require.NotNil(t, note)

		assert.NotEmpty(t, note.ID)
		assert.Equal(t, "u1", note.UserID)
		assert.Equal(t, domain.TierShortTerm, note.Tier)
		assert.Equal(t, "2025-06-24", note.NoteDate)
		assert.False(t, note.CreatedAt.IsZero())

		stored, err := mockRepo.FindNoteByID(ctx, "u1", note.ID, domain.TierShortTerm)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, note.Title, stored.Title)
	})

	t.Run("EmptyTitle", func(t *testing.T) {
		_, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("InvalidTier", func(t *testing.T) {
		_, err := service.CreateNote(ctx, "u1", domain.Tier("archive"), CreateNoteInput{Title: "x"})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("InvalidNoteDate", func(t *testing.T) {
		_, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{
			Title:    "x",
			NoteDate: "24/06/2025",
		})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("NoteDateDefaultsToToday", func(t *testing.T) {
		note, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "datestamped"})
		require.NoError(t, err)
		assert.Equal(t, time.Now().Format(domain.NoteDateLayout), note.NoteDate)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		mockRepo.SetError("CreateNote", appErrors.NewBackingStore("database down", nil))
		defer mockRepo.ClearErrors()

		_, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "x"})
		require.Error(t, err)
		assert.True(t, appErrors.IsBackingStore(err))
	})
}

func TestListNotes(t *testing.T) {
	mockRepo := mocks.NewMockNoteRepository()
	service := NewService(mockRepo, nil, nil, nil)
	ctx := context.Background()

	_, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{
		Title: "day one", NoteDate: "2025-01-01",
	})
	require.NoError(t, err)
	_, err = service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{
		Title: "day two", NoteDate: "2025-01-02",
	})
	require.NoError(t, err)
	_, err = service.CreateNote(ctx, "u1", domain.TierLongTerm, CreateNoteInput{
		Title: "keeper", NoteDate: "2025-01-01",
	})
	require.NoError(t, err)

	t.Run("PerTier", func(t *testing.T) {
		short, err := service.ListNotes(ctx, "u1", domain.TierShortTerm, "")
		require.NoError(t, err)
		assert.Len(t, short, 2)

		long, err := service.ListNotes(ctx, "u1", domain.TierLongTerm, "")
		require.NoError(t, err)
		assert.Len(t, long, 1)
	})

	t.Run("DateFiltered", func(t *testing.T) {
		notes, err := service.ListNotes(ctx, "u1", domain.TierShortTerm, "2025-01-02")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "day two", notes[0].Title)
	})

	t.Run("BadDate", func(t *testing.T) {
		_, err := service.ListNotes(ctx, "u1", domain.TierShortTerm, "not-a-date")
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestUpdateNote(t *testing.T) {
	mockRepo := mocks.NewMockNoteRepository()
	service := NewService(mockRepo, nil, nil, nil)
	ctx := context.Background()

	note, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{
		Title: "draft", Content: "v1",
	})
	require.NoError(t, err)

	t.Run("InPlaceUpdate", func(t *testing.T) {
		newContent := "v2"
		updated, err := service.UpdateNote(ctx, "u1", note.ID, domain.TierShortTerm, UpdateNoteInput{
			Content: &newContent,
		})
		require.NoError(t, err)
		assert.Equal(t, "v2", updated.Content)
		assert.Equal(t, "draft", updated.Title)
		assert.Equal(t, note.ID, updated.ID)
	})

	t.Run("TierChangeReroutesToMove", func(t *testing.T) {
		target := domain.TierLongTerm
		moved, err := service.UpdateNote(ctx, "u1", note.ID, domain.TierShortTerm, UpdateNoteInput{
			Tier: &target,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TierLongTerm, moved.Tier)

		// The note left the short-term collection entirely.
		short, err := service.ListNotes(ctx, "u1", domain.TierShortTerm, "")
		require.NoError(t, err)
		assert.Empty(t, short)
	})

	t.Run("TierChangeWithEditsRejected", func(t *testing.T) {
		fresh, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "stay put"})
		require.NoError(t, err)

		target := domain.TierLongTerm
		title := "renamed en route"
		_, err = service.UpdateNote(ctx, "u1", fresh.ID, domain.TierShortTerm, UpdateNoteInput{
			Tier:  &target,
			Title: &title,
		})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))

		// The note stayed in short-term, unedited.
		kept, err := service.GetNote(ctx, "u1", fresh.ID, domain.TierShortTerm)
		require.NoError(t, err)
		assert.Equal(t, "stay put", kept.Title)
	})

	t.Run("DemotionRejected", func(t *testing.T) {
		long, err := service.CreateNote(ctx, "u1", domain.TierLongTerm, CreateNoteInput{Title: "keeper"})
		require.NoError(t, err)

		target := domain.TierShortTerm
		_, err = service.UpdateNote(ctx, "u1", long.ID, domain.TierLongTerm, UpdateNoteInput{Tier: &target})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("MissingNote", func(t *testing.T) {
		title := "x"
		_, err := service.UpdateNote(ctx, "u1", "missing", domain.TierShortTerm, UpdateNoteInput{Title: &title})
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("ArchivedNoteRejected", func(t *testing.T) {
		archived, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "old"})
		require.NoError(t, err)
		require.NoError(t, service.DeleteNote(ctx, "u1", archived.ID, domain.TierShortTerm))

		title := "resurrect"
		_, err = service.UpdateNote(ctx, "u1", archived.ID, domain.TierShortTerm, UpdateNoteInput{Title: &title})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestDeleteNoteAsymmetry(t *testing.T) {
	mockRepo := mocks.NewMockNoteRepository()
	service := NewService(mockRepo, nil, nil, nil)
	ctx := context.Background()

	t.Run("ShortTermDeleteIsSoft", func(t *testing.T) {
		note, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "soft"})
		require.NoError(t, err)

		require.NoError(t, service.DeleteNote(ctx, "u1", note.ID, domain.TierShortTerm))

		// Hidden from listing, still reachable by id; days remaining still
		// computes.
		listed, err := service.ListNotes(ctx, "u1", domain.TierShortTerm, "")
		require.NoError(t, err)
		assert.Empty(t, listed)

		fetched, err := service.GetNote(ctx, "u1", note.ID, domain.TierShortTerm)
		require.NoError(t, err)
		assert.True(t, fetched.IsArchived())
		assert.Equal(t, 30, service.DaysRemaining(fetched))
	})

	t.Run("LongTermDeleteIsPermanent", func(t *testing.T) {
		note, err := service.CreateNote(ctx, "u1", domain.TierLongTerm, CreateNoteInput{Title: "hard"})
		require.NoError(t, err)

		require.NoError(t, service.DeleteNote(ctx, "u1", note.ID, domain.TierLongTerm))

		_, err = service.GetNote(ctx, "u1", note.ID, domain.TierLongTerm)
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("DeleteMissingLongTerm", func(t *testing.T) {
		err := service.DeleteNote(ctx, "u1", "missing", domain.TierLongTerm)
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestMoveToLongTerm(t *testing.T) {
	ctx := context.Background()

	t.Run("MoveCarriesFieldsAssignsNewIdentity", func(t *testing.T) {
		mockRepo := mocks.NewMockNoteRepository()
		service := NewService(mockRepo, nil, nil, nil)

		source, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{
			Title:    "promote me",
			Content:  "important insight",
			Tags:     []string{"keep"},
			NoteDate: "2025-06-24",
		})
		require.NoError(t, err)

		moved, err := service.MoveToLongTerm(ctx, "u1", source.ID)
		require.NoError(t, err)

		assert.Equal(t, source.Title, moved.Title)
		assert.Equal(t, source.Content, moved.Content)
		assert.Equal(t, source.Tags, moved.Tags)
		assert.Equal(t, source.NoteDate, moved.NoteDate)
		assert.Equal(t, domain.TierLongTerm, moved.Tier)
		assert.NotEqual(t, source.ID, moved.ID)
		assert.Nil(t, moved.ArchivedAt)

		short, err := service.ListNotes(ctx, "u1", domain.TierShortTerm, "")
		require.NoError(t, err)
		assert.Empty(t, short)

		long, err := service.ListNotes(ctx, "u1", domain.TierLongTerm, "")
		require.NoError(t, err)
		require.Len(t, long, 1)
		assert.Equal(t, "promote me", long[0].Title)
	})

	t.Run("SecondMoveFailsNotFound", func(t *testing.T) {
		mockRepo := mocks.NewMockNoteRepository()
		service := NewService(mockRepo, nil, nil, nil)

		source, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "once"})
		require.NoError(t, err)

		_, err = service.MoveToLongTerm(ctx, "u1", source.ID)
		require.NoError(t, err)

		_, err = service.MoveToLongTerm(ctx, "u1", source.ID)
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))

		// The winner's copy is the only long-term note.
		long, err := service.ListNotes(ctx, "u1", domain.TierLongTerm, "")
		require.NoError(t, err)
		assert.Len(t, long, 1)
	})

	t.Run("MoveMissingNote", func(t *testing.T) {
		mockRepo := mocks.NewMockNoteRepository()
		service := NewService(mockRepo, nil, nil, nil)

		_, err := service.MoveToLongTerm(ctx, "u1", "missing")
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("ArchivedNoteCanStillBeMoved", func(t *testing.T) {
		mockRepo := mocks.NewMockNoteRepository()
		service := NewService(mockRepo, nil, nil, nil)

		source, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "archived"})
		require.NoError(t, err)
		require.NoError(t, service.DeleteNote(ctx, "u1", source.ID, domain.TierShortTerm))

		moved, err := service.MoveToLongTerm(ctx, "u1", source.ID)
		require.NoError(t, err)
		assert.Nil(t, moved.ArchivedAt)
	})

	t.Run("StaleWrongTierReadRejected", func(t *testing.T) {
		// A cached read layer may hand back a note that is not actually in
		// the short-term collection. Such a source must be treated as
		// absent, never inserted as a long-term duplicate.
		mockRepo := mocks.NewMockNoteRepository()
		stale := &domain.Note{
			ID:     "n1",
			UserID: "u1",
			Title:  "already promoted",
			Tier:   domain.TierLongTerm,
		}
		service := NewService(&staleReadRepository{mockRepo, stale}, nil, nil, nil)

		_, err := service.MoveToLongTerm(ctx, "u1", "n1")
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))

		// Nothing was inserted on behalf of the stale read.
		long, err := mockRepo.FindNotes(ctx, repository.NoteQuery{UserID: "u1", Tier: domain.TierLongTerm})
		require.NoError(t, err)
		assert.Empty(t, long)
	})

	t.Run("InsertFailureLeavesSourceIntact", func(t *testing.T) {
		mockRepo := mocks.NewMockNoteRepository()
		service := NewService(mockRepo, nil, nil, nil)

		source, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "stuck"})
		require.NoError(t, err)

		mockRepo.SetError("CreateNote", appErrors.NewBackingStore("insert failed", nil))
		_, err = service.MoveToLongTerm(ctx, "u1", source.ID)
		require.Error(t, err)
		assert.True(t, appErrors.IsBackingStore(err))
		mockRepo.ClearErrors()

		// Insert-then-delete ordering: the note never left short-term.
		short, err := service.ListNotes(ctx, "u1", domain.TierShortTerm, "")
		require.NoError(t, err)
		assert.Len(t, short, 1)
	})

	t.Run("DeleteFailureSurfacesPartialMigration", func(t *testing.T) {
		mockRepo := mocks.NewMockNoteRepository()
		service := NewService(mockRepo, nil, nil, nil)

		source, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "split"})
		require.NoError(t, err)

		mockRepo.SetError("DeleteNote", appErrors.NewBackingStore("delete failed", nil))
		_, err = service.MoveToLongTerm(ctx, "u1", source.ID)
		require.Error(t, err)
		assert.True(t, appErrors.IsPartialMigration(err))
		mockRepo.ClearErrors()

		// Recoverable duplicate, not data loss: both copies exist.
		short, err := service.ListNotes(ctx, "u1", domain.TierShortTerm, "")
		require.NoError(t, err)
		assert.Len(t, short, 1)

		long, err := service.ListNotes(ctx, "u1", domain.TierLongTerm, "")
		require.NoError(t, err)
		assert.Len(t, long, 1)
	})
}

func TestEventsPublished(t *testing.T) {
	mockRepo := mocks.NewMockNoteRepository()
	bus := domain.NewInMemoryEventBus(nil)
	service := NewService(mockRepo, bus, nil, nil)
	ctx := context.Background()

	var types []string
	bus.Subscribe(func(event domain.DomainEvent) {
		types = append(types, event.EventType())
	})

	note, err := service.CreateNote(ctx, "u1", domain.TierShortTerm, CreateNoteInput{Title: "tracked"})
	require.NoError(t, err)

	newTitle := "tracked v2"
	_, err = service.UpdateNote(ctx, "u1", note.ID, domain.TierShortTerm, UpdateNoteInput{Title: &newTitle})
	require.NoError(t, err)

	moved, err := service.MoveToLongTerm(ctx, "u1", note.ID)
	require.NoError(t, err)

	require.NoError(t, service.DeleteNote(ctx, "u1", moved.ID, domain.TierLongTerm))

	assert.Equal(t, []string{"NoteCreated", "NoteUpdated", "NoteMoved", "NoteDeleted"}, types)
}

func TestDaysRemainingThroughService(t *testing.T) {
	mockRepo := mocks.NewMockNoteRepository()
	svc := NewService(mockRepo, nil, nil, nil)

	now := time.Date(2025, 6, 24, 12, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }

	note := &domain.Note{Tier: domain.TierShortTerm, CreatedAt: now.AddDate(0, 0, -12)}
	assert.Equal(t, 18, svc.DaysRemaining(note))
}

// TestMoveScenarioWithCache exercises the full read-through stack: service
// over the caching decorator over the in-memory repository. After a move,
// both per-tier listing keys must be gone from the cache until the next read
// repopulates them.
func TestMoveScenarioWithCache(t *testing.T) {
	ctx := context.Background()

	queryCache := qcache.NewQueryCache(nil, nil)
	repo := pcache.NewCachingNoteRepository(
		mocks.NewMockNoteRepository(), queryCache, pcache.DefaultCachingConfig())
	service := NewService(repo, domain.NewInMemoryEventBus(nil), nil, nil)

	note, err := service.CreateNote(ctx, "U", domain.TierShortTerm, CreateNoteInput{Title: "N1"})
	require.NoError(t, err)

	// Listing both tiers populates their cache keys.
	short, err := service.ListNotes(ctx, "U", domain.TierShortTerm, "")
	require.NoError(t, err)
	require.Len(t, short, 1)
	_, err = service.ListNotes(ctx, "U", domain.TierLongTerm, "")
	require.NoError(t, err)

	require.True(t, queryCache.Contains(qcache.MemoryShortKey("U")))
	require.True(t, queryCache.Contains(qcache.MemoryLongKey("U")))

	_, err = service.MoveToLongTerm(ctx, "U", note.ID)
	require.NoError(t, err)

	// Both tier listing keys were invalidated by the move.
	assert.False(t, queryCache.Contains(qcache.MemoryShortKey("U")))
	assert.False(t, queryCache.Contains(qcache.MemoryLongKey("U")))

	// The next reads repopulate the cache and see the post-move state.
	short, err = service.ListNotes(ctx, "U", domain.TierShortTerm, "")
	require.NoError(t, err)
	assert.Empty(t, short)

	long, err := service.ListNotes(ctx, "U", domain.TierLongTerm, "")
	require.NoError(t, err)
	require.Len(t, long, 1)
	assert.Equal(t, "N1", long[0].Title)

	assert.True(t, queryCache.Contains(qcache.MemoryShortKey("U")))
	assert.True(t, queryCache.Contains(qcache.MemoryLongKey("U")))
}
