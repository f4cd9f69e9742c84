package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violettance/second-brain-sub000/internal/config"
	"github.com/violettance/second-brain-sub000/internal/domain"
	qcache "github.com/violettance/second-brain-sub000/internal/infrastructure/cache"
	pcache "github.com/violettance/second-brain-sub000/internal/infrastructure/persistence/cache"
	"github.com/violettance/second-brain-sub000/internal/service/notes"
)

func memoryConfig() config.Config {
	return config.Config{
		Environment: "development",
		Backend:     config.BackendMemory,
		Features: config.Features{
			EnableCaching: true,
		},
	}
}

func TestNewContainer(t *testing.T) {
	ctx := context.Background()

	t.Run("MemoryBackendWithCaching", func(t *testing.T) {
		container, err := NewContainer(ctx, memoryConfig(), nil)
		require.NoError(t, err)

		assert.NotNil(t, container.Notes)
		assert.NotNil(t, container.Cache)
		assert.NotNil(t, container.Bus)
		assert.IsType(t, &pcache.CachingNoteRepository{}, container.Repo)
		assert.Nil(t, container.Metrics)
	})

	t.Run("CachingDisabled", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Features.EnableCaching = false

		container, err := NewContainer(ctx, cfg, nil)
		require.NoError(t, err)
		_, isCaching := container.Repo.(*pcache.CachingNoteRepository)
		assert.False(t, isCaching)
	})

	t.Run("MetricsEnabled", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Features.EnableMetrics = true

		container, err := NewContainer(ctx, cfg, nil)
		require.NoError(t, err)
		assert.NotNil(t, container.Metrics)
	})

	t.Run("InvalidConfigRejected", func(t *testing.T) {
		cfg := config.Config{Backend: config.BackendDynamoDB}
		_, err := NewContainer(ctx, cfg, nil)
		require.Error(t, err)
	})
}

// TestContainerEndToEnd drives a note through the fully assembled graph: the
// service, the caching decorator, the in-memory store, and the event bus.
func TestContainerEndToEnd(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(ctx, memoryConfig(), nil)
	require.NoError(t, err)

	var seen []string
	container.Bus.Subscribe(func(event domain.DomainEvent) {
		seen = append(seen, event.EventType())
	})

	note, err := container.Notes.CreateNote(ctx, "u1", domain.TierShortTerm, notes.CreateNoteInput{
		Title: "wired",
	})
	require.NoError(t, err)

	listed, err := container.Notes.ListNotes(ctx, "u1", domain.TierShortTerm, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, container.Cache.Contains(qcache.MemoryShortKey("u1")))

	moved, err := container.Notes.MoveToLongTerm(ctx, "u1", note.ID)
	require.NoError(t, err)
	assert.False(t, container.Cache.Contains(qcache.MemoryShortKey("u1")))

	long, err := container.Notes.ListNotes(ctx, "u1", domain.TierLongTerm, "")
	require.NoError(t, err)
	require.Len(t, long, 1)
	assert.Equal(t, moved.ID, long[0].ID)

	assert.Equal(t, []string{"NoteCreated", "NoteMoved"}, seen)
}
