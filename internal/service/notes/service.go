// Package notes provides the business logic for the two-tier note store:
// per-tier queries and mutations, soft archival of short-term notes, and the
// migration that promotes a note to long-term storage.
package notes

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/violettance/second-brain-sub000/internal/domain"
	"github.com/violettance/second-brain-sub000/internal/infrastructure/observability"
	"github.com/violettance/second-brain-sub000/internal/repository"
	appErrors "github.com/violettance/second-brain-sub000/pkg/errors"
)

// CreateNoteInput carries the caller-supplied fields for a new note.
type CreateNoteInput struct {
	Title    string   `validate:"required,max=200"`
	Content  string   `validate:"max=50000"`
	Tags     []string `validate:"max=32,dive,max=64"`
	NoteDate string   `validate:"omitempty,datetime=2006-01-02"`
}

// UpdateNoteInput carries the fields to change on an existing note. Nil
// pointers leave the field untouched. Setting Tier to a different tier than
// the note's current one re-routes the call to the move operation; a tier
// change cannot be combined with other field edits, since the move carries
// the stored note's fields.
type UpdateNoteInput struct {
	Title    *string      `validate:"omitempty,max=200"`
	Content  *string      `validate:"omitempty,max=50000"`
	Tags     []string     `validate:"omitempty,max=32,dive,max=64"`
	NoteDate *string      `validate:"omitempty,datetime=2006-01-02"`
	Tier     *domain.Tier `validate:"omitempty"`
}

// Service defines the interface for note-related business operations.
type Service interface {
	// ListNotes returns one tier's notes for a user, optionally restricted
	// to a single note date. Archived short-term notes are excluded.
	ListNotes(ctx context.Context, userID string, tier domain.Tier, noteDate string) ([]domain.Note, error)

	// GetNote retrieves a single note by id, including archived ones.
	GetNote(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error)

	// CreateNote stores a new note in the given tier.
	CreateNote(ctx context.Context, userID string, tier domain.Tier, input CreateNoteInput) (*domain.Note, error)

	// UpdateNote modifies a note in place, or moves it when input.Tier
	// differs from the note's current tier.
	UpdateNote(ctx context.Context, userID, noteID string, tier domain.Tier, input UpdateNoteInput) (*domain.Note, error)

	// DeleteNote archives a short-term note (soft, reversible) or
	// permanently removes a long-term note.
	DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error

	// MoveToLongTerm migrates a short-term note into long-term storage.
	MoveToLongTerm(ctx context.Context, userID, noteID string) (*domain.Note, error)

	// DaysRemaining reports the advisory days left before a short-term note
	// reaches its 30-day expiry, clamped at zero.
	DaysRemaining(note *domain.Note) int
}

// service implements the Service interface with concrete business logic.
type service struct {
	repo     repository.NoteRepository
	bus      domain.EventBus
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *observability.Collector

	// now is replaceable in tests
	now func() time.Time
}

// NewService creates a new note service. Logger and metrics may be nil.
func NewService(repo repository.NoteRepository, bus domain.EventBus, logger *zap.Logger, metrics *observability.Collector) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:     repo,
		bus:      bus,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// ListNotes returns the notes in one tier, newest-independent ordering is
// left to the caller.
func (s *service) ListNotes(ctx context.Context, userID string, tier domain.Tier, noteDate string) ([]domain.Note, error) {
	if !tier.Valid() {
		return nil, appErrors.NewValidation(domain.ErrInvalidTier.Error())
	}
	if noteDate != "" {
		if _, err := time.Parse(domain.NoteDateLayout, noteDate); err != nil {
			return nil, appErrors.NewValidation(domain.ErrInvalidNoteDate.Error())
		}
	}

	return s.repo.FindNotes(ctx, repository.NoteQuery{
		UserID:   userID,
		Tier:     tier,
		NoteDate: noteDate,
	})
}

// GetNote retrieves a note by id. Archival hides notes from listings only,
// so archived short-term notes are still returned here.
func (s *service) GetNote(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	if !tier.Valid() {
		return nil, appErrors.NewValidation(domain.ErrInvalidTier.Error())
	}

	note, err := s.repo.FindNoteByID(ctx, userID, noteID, tier)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, appErrors.NewNotFound("note not found")
	}
	return note, nil
}

// CreateNote assigns id and timestamps and stores the note in its tier.
func (s *service) CreateNote(ctx context.Context, userID string, tier domain.Tier, input CreateNoteInput) (*domain.Note, error) {
	if !tier.Valid() {
		return nil, appErrors.NewValidation(domain.ErrInvalidTier.Error())
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.NewValidation(err.Error())
	}

	now := s.now()
	noteDate := input.NoteDate
	if noteDate == "" {
		noteDate = now.Format(domain.NoteDateLayout)
	}

	note := &domain.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		Tags:      input.Tags,
		Tier:      tier,
		NoteDate:  noteDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, "failed to create note")
	}

	if s.metrics != nil {
		s.metrics.NotesCreated.Inc()
	}
	s.publish(ctx, domain.NewNoteCreatedEvent(note.ID, userID, tier, note.Title))

	return note, nil
}

// UpdateNote applies in-place field changes. When input.Tier names a
// different tier, the call is re-routed to the move operation instead; the
// tier is a partition key, not a mutable column, and skipping this branch
// would strand the note in its old collection.
func (s *service) UpdateNote(ctx context.Context, userID, noteID string, tier domain.Tier, input UpdateNoteInput) (*domain.Note, error) {
	if !tier.Valid() {
		return nil, appErrors.NewValidation(domain.ErrInvalidTier.Error())
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.NewValidation(err.Error())
	}

	if input.Tier != nil && *input.Tier != tier {
		// The move carries the stored fields, not the input's; accepting
		// edits here would drop them silently.
		if input.Title != nil || input.Content != nil || input.Tags != nil || input.NoteDate != nil {
			return nil, appErrors.NewValidation(domain.ErrTierChangeWithEdits.Error())
		}
		if tier == domain.TierShortTerm && *input.Tier == domain.TierLongTerm {
			return s.MoveToLongTerm(ctx, userID, noteID)
		}
		return nil, appErrors.NewValidation(domain.ErrCannotDemoteNote.Error())
	}

	note, err := s.repo.FindNoteByID(ctx, userID, noteID, tier)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, appErrors.NewNotFound("note not found")
	}
	if note.IsArchived() {
		return nil, appErrors.NewValidation(domain.ErrCannotUpdateArchivedNote.Error())
	}

	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	if input.Tags != nil {
		note.Tags = input.Tags
	}
	if input.NoteDate != nil {
		note.NoteDate = *input.NoteDate
	}
	note.UpdatedAt = s.now()

	if err := s.repo.UpdateNote(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, "failed to update note")
	}

	s.publish(ctx, domain.NewNoteUpdatedEvent(note.ID, userID, tier))

	return note, nil
}

// DeleteNote is deliberately asymmetric across tiers: a short-term delete is
// a soft archive the note can be recovered from, a long-term delete is final.
func (s *service) DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error {
	if !tier.Valid() {
		return appErrors.NewValidation(domain.ErrInvalidTier.Error())
	}

	if tier == domain.TierShortTerm {
		archivedAt := s.now()
		if err := s.repo.ArchiveNote(ctx, userID, noteID, archivedAt); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.NotesDeleted.Inc()
		}
		s.publish(ctx, domain.NewNoteArchivedEvent(noteID, userID, archivedAt))
		return nil
	}

	if err := s.repo.DeleteNote(ctx, userID, noteID, tier); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.NotesDeleted.Inc()
	}
	s.publish(ctx, domain.NewNoteDeletedEvent(noteID, userID, tier))
	return nil
}

// MoveToLongTerm migrates a note across tiers as insert-then-delete: the
// long-term copy is written first, so a failure at any point leaves at worst
// a recoverable duplicate, never a lost note. The source delete is
// conditional in the repository and is the single point of truth when two
// movers race; the loser gets a partial-migration error and the long-term
// duplicate it created is the thing to clean up.
//
// The destination note gets a fresh id along with fresh timestamps; the
// original id dies with the short-term row.
func (s *service) MoveToLongTerm(ctx context.Context, userID, noteID string) (*domain.Note, error) {
	source, err := s.repo.FindNoteByID(ctx, userID, noteID, domain.TierShortTerm)
	if err != nil {
		return nil, err
	}
	// The read may be served from a cache. Only a short-term row is a valid
	// source; anything else must not reach the insert, or the move would
	// fabricate a long-term duplicate for a note that was never short-term.
	if source == nil || source.Tier != domain.TierShortTerm {
		return nil, appErrors.NewNotFound("note not found")
	}

	now := s.now()
	moved := &domain.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     source.Title,
		Content:   source.Content,
		Tags:      source.Tags,
		Tier:      domain.TierLongTerm,
		NoteDate:  source.NoteDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateNote(ctx, moved); err != nil {
		return nil, appErrors.Wrap(err, "failed to insert note into long-term storage")
	}

	if err := s.repo.DeleteNote(ctx, userID, noteID, domain.TierShortTerm); err != nil {
		s.logger.Error("tier move left a long-term duplicate",
			zap.String("user_id", userID),
			zap.String("source_note_id", noteID),
			zap.String("duplicate_note_id", moved.ID),
			zap.Error(err),
		)
		return nil, appErrors.NewPartialMigration(
			"inserted long-term copy "+moved.ID+" but failed to remove short-term source "+noteID, err)
	}

	if s.metrics != nil {
		s.metrics.NotesMoved.Inc()
	}
	s.publish(ctx, domain.NewNoteMovedEvent(moved.ID, noteID, userID))

	return moved, nil
}

// DaysRemaining is a pure read-time computation; no background job archives
// notes at the boundary.
func (s *service) DaysRemaining(note *domain.Note) int {
	return note.DaysRemaining(s.now())
}

// publish fans the event out to subscribers; delivery failures are logged,
// never propagated into the mutation's result.
func (s *service) publish(ctx context.Context, event domain.DomainEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
