package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violettance/second-brain-sub000/internal/domain"
	appErrors "github.com/violettance/second-brain-sub000/pkg/errors"
)

// flakyRepository fails every call with a configurable error. Only the
// methods the breaker tests exercise are meaningful; the rest satisfy the
// interface.
type flakyRepository struct {
	err   error
	calls int
}

func (f *flakyRepository) CreateNote(ctx context.Context, note *domain.Note) error {
	f.calls++
	return f.err
}

func (f *flakyRepository) UpdateNote(ctx context.Context, note *domain.Note) error {
	f.calls++
	return f.err
}

func (f *flakyRepository) FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Note{ID: noteID, UserID: userID, Tier: tier}, nil
}

func (f *flakyRepository) FindNotes(ctx context.Context, query NoteQuery) ([]domain.Note, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Note{}, nil
}

func (f *flakyRepository) ArchiveNote(ctx context.Context, userID, noteID string, archivedAt time.Time) error {
	f.calls++
	return f.err
}

func (f *flakyRepository) DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error {
	f.calls++
	return f.err
}

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}

func TestBreakerPassesThroughWhenClosed(t *testing.T) {
	inner := &flakyRepository{}
	repo := NewBreakerNoteRepository(inner, testBreakerConfig(), nil)
	ctx := context.Background()

	note, err := repo.FindNoteByID(ctx, "u1", "n1", domain.TierShortTerm)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "n1", note.ID)

	notes, err := repo.FindNotes(ctx, NoteQuery{UserID: "u1", Tier: domain.TierShortTerm})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestBreakerOpensOnBackingStoreFailures(t *testing.T) {
	inner := &flakyRepository{err: appErrors.NewBackingStore("store down", nil)}
	repo := NewBreakerNoteRepository(inner, testBreakerConfig(), nil)
	ctx := context.Background()

	// Drive the breaker past its failure threshold.
	for i := 0; i < 3; i++ {
		_, err := repo.FindNoteByID(ctx, "u1", "n1", domain.TierShortTerm)
		require.Error(t, err)
		assert.True(t, appErrors.IsBackingStore(err))
	}

	before := inner.calls
	_, err := repo.FindNoteByID(ctx, "u1", "n1", domain.TierShortTerm)
	require.Error(t, err)
	assert.True(t, appErrors.IsBackingStore(err))

	// The open circuit rejected the call before it reached the store.
	assert.Equal(t, before, inner.calls)
}

func TestBreakerIgnoresBusinessOutcomes(t *testing.T) {
	inner := &flakyRepository{err: appErrors.NewNotFound("note not found")}
	repo := NewBreakerNoteRepository(inner, testBreakerConfig(), nil)
	ctx := context.Background()

	// Not-found results are successes to the breaker; it never opens no
	// matter how many the store returns.
	for i := 0; i < 10; i++ {
		err := repo.DeleteNote(ctx, "u1", "n1", domain.TierLongTerm)
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))
	}
	assert.Equal(t, 10, inner.calls)
}

func TestBreakerPropagatesOriginalError(t *testing.T) {
	storeErr := appErrors.NewBackingStore("throttled", nil)
	inner := &flakyRepository{err: storeErr}
	repo := NewBreakerNoteRepository(inner, testBreakerConfig(), nil)

	err := repo.CreateNote(context.Background(), &domain.Note{ID: "n1", UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, storeErr, err)
}
