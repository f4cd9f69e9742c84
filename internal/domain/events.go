package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an important business occurrence in the domain
type DomainEvent interface {
	// EventID returns a unique identifier for this event instance
	EventID() string

	// EventType returns the type of event (e.g., "NoteCreated", "NoteMoved")
	EventType() string

	// AggregateID returns the ID of the note that generated this event
	AggregateID() string

	// UserID returns the ID of the user who triggered this event
	UserID() string

	// Timestamp returns when the event occurred
	Timestamp() time.Time

	// EventData returns the event-specific data
	EventData() map[string]interface{}
}

// BaseEvent provides common functionality for all domain events
type BaseEvent struct {
	eventID     string
	eventType   string
	aggregateID string
	userID      string
	timestamp   time.Time
}

// EventID returns the unique event identifier
func (e BaseEvent) EventID() string {
	return e.eventID
}

// EventType returns the type of event
func (e BaseEvent) EventType() string {
	return e.eventType
}

// AggregateID returns the note identifier
func (e BaseEvent) AggregateID() string {
	return e.aggregateID
}

// UserID returns the user identifier
func (e BaseEvent) UserID() string {
	return e.userID
}

// Timestamp returns the event timestamp
func (e BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with common fields
func newBaseEvent(eventType, aggregateID, userID string) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New().String(),
		eventType:   eventType,
		aggregateID: aggregateID,
		userID:      userID,
		timestamp:   time.Now(),
	}
}

// NoteCreatedEvent is fired when a new note is created in either tier
type NoteCreatedEvent struct {
	BaseEvent
	Tier  Tier   `json:"tier"`
	Title string `json:"title"`
}

// NewNoteCreatedEvent creates a new NoteCreatedEvent
func NewNoteCreatedEvent(noteID, userID string, tier Tier, title string) *NoteCreatedEvent {
	return &NoteCreatedEvent{
		BaseEvent: newBaseEvent("NoteCreated", noteID, userID),
		Tier:      tier,
		Title:     title,
	}
}

// EventData returns the event-specific data
func (e *NoteCreatedEvent) EventData() map[string]interface{} {
	return map[string]interface{}{
		"tier":  string(e.Tier),
		"title": e.Title,
	}
}

// NoteUpdatedEvent is fired when a note is modified in place
type NoteUpdatedEvent struct {
	BaseEvent
	Tier Tier `json:"tier"`
}

// NewNoteUpdatedEvent creates a new NoteUpdatedEvent
func NewNoteUpdatedEvent(noteID, userID string, tier Tier) *NoteUpdatedEvent {
	return &NoteUpdatedEvent{
		BaseEvent: newBaseEvent("NoteUpdated", noteID, userID),
		Tier:      tier,
	}
}

// EventData returns the event-specific data
func (e *NoteUpdatedEvent) EventData() map[string]interface{} {
	return map[string]interface{}{
		"tier": string(e.Tier),
	}
}

// NoteArchivedEvent is fired when a short-term note is soft-deleted
type NoteArchivedEvent struct {
	BaseEvent
	ArchivedAt time.Time `json:"archived_at"`
}

// NewNoteArchivedEvent creates a new NoteArchivedEvent
func NewNoteArchivedEvent(noteID, userID string, archivedAt time.Time) *NoteArchivedEvent {
	return &NoteArchivedEvent{
		BaseEvent:  newBaseEvent("NoteArchived", noteID, userID),
		ArchivedAt: archivedAt,
	}
}

// EventData returns the event-specific data
func (e *NoteArchivedEvent) EventData() map[string]interface{} {
	return map[string]interface{}{
		"archived_at": e.ArchivedAt,
	}
}

// NoteDeletedEvent is fired when a long-term note is permanently removed
type NoteDeletedEvent struct {
	BaseEvent
	Tier Tier `json:"tier"`
}

// NewNoteDeletedEvent creates a new NoteDeletedEvent
func NewNoteDeletedEvent(noteID, userID string, tier Tier) *NoteDeletedEvent {
	return &NoteDeletedEvent{
		BaseEvent: newBaseEvent("NoteDeleted", noteID, userID),
		Tier:      tier,
	}
}

// EventData returns the event-specific data
func (e *NoteDeletedEvent) EventData() map[string]interface{} {
	return map[string]interface{}{
		"tier": string(e.Tier),
	}
}

// NoteMovedEvent is fired when a note is migrated from short-term to
// long-term storage. SourceNoteID is the id removed from the short-term
// collection; the aggregate id is the new long-term note.
type NoteMovedEvent struct {
	BaseEvent
	SourceNoteID string `json:"source_note_id"`
	FromTier     Tier   `json:"from_tier"`
	ToTier       Tier   `json:"to_tier"`
}

// NewNoteMovedEvent creates a new NoteMovedEvent
func NewNoteMovedEvent(newNoteID, sourceNoteID, userID string) *NoteMovedEvent {
	return &NoteMovedEvent{
		BaseEvent:    newBaseEvent("NoteMoved", newNoteID, userID),
		SourceNoteID: sourceNoteID,
		FromTier:     TierShortTerm,
		ToTier:       TierLongTerm,
	}
}

// EventData returns the event-specific data
func (e *NoteMovedEvent) EventData() map[string]interface{} {
	return map[string]interface{}{
		"source_note_id": e.SourceNoteID,
		"from_tier":      string(e.FromTier),
		"to_tier":        string(e.ToTier),
	}
}
