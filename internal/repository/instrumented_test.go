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

type recordingObserver struct {
	operations []string
	errors     []error
}

func (o *recordingObserver) ObserveRepoOperation(operation string, duration time.Duration, err error) {
	o.operations = append(o.operations, operation)
	o.errors = append(o.errors, err)
}

func TestInstrumentedRepositoryObservesOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessPath", func(t *testing.T) {
		observer := &recordingObserver{}
		repo := NewInstrumentedNoteRepository(&flakyRepository{}, observer)

		require.NoError(t, repo.CreateNote(ctx, &domain.Note{ID: "n1", UserID: "u1"}))
		_, err := repo.FindNoteByID(ctx, "u1", "n1", domain.TierShortTerm)
		require.NoError(t, err)
		require.NoError(t, repo.DeleteNote(ctx, "u1", "n1", domain.TierShortTerm))

		assert.Equal(t, []string{"create_note", "find_note_by_id", "delete_note"}, observer.operations)
		for _, err := range observer.errors {
			assert.NoError(t, err)
		}
	})

	t.Run("FailurePath", func(t *testing.T) {
		storeErr := appErrors.NewBackingStore("down", nil)
		observer := &recordingObserver{}
		repo := NewInstrumentedNoteRepository(&flakyRepository{err: storeErr}, observer)

		err := repo.UpdateNote(ctx, &domain.Note{ID: "n1", UserID: "u1"})
		require.Error(t, err)

		require.Len(t, observer.errors, 1)
		assert.Equal(t, storeErr, observer.errors[0])
	})

	t.Run("ResultsPassThrough", func(t *testing.T) {
		observer := &recordingObserver{}
		repo := NewInstrumentedNoteRepository(&flakyRepository{}, observer)

		note, err := repo.FindNoteByID(ctx, "u1", "n1", domain.TierLongTerm)
		require.NoError(t, err)
		require.NotNil(t, note)
		assert.Equal(t, "n1", note.ID)
	})
}
