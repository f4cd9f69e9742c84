package domain

import "errors"

// Domain errors for business rule violations and validation failures

var (
	// Note errors
	ErrNoteNotFound      = errors.New("note not found")
	ErrNoteAlreadyExists = errors.New("note already exists")
	ErrEmptyTitle        = errors.New("note title cannot be empty")
	ErrInvalidTier       = errors.New("invalid tier: must be short-term or long-term")
	ErrInvalidNoteDate   = errors.New("invalid note date: must be YYYY-MM-DD")

	// Tier business rule errors
	ErrCannotDemoteNote         = errors.New("cannot move a long-term note back to short-term")
	ErrTierChangeWithEdits      = errors.New("tier change cannot be combined with field edits")
	ErrCannotUpdateArchivedNote = errors.New("cannot update archived note")
	ErrArchiveLongTermNote      = errors.New("long-term notes cannot be archived")

	// General domain errors
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflict detected")
)

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoteNotFound)
}
