// Package mocks provides mock implementations of repository interfaces for testing.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/violettance/second-brain-sub000/internal/domain"
	"github.com/violettance/second-brain-sub000/internal/repository"
	"github.com/violettance/second-brain-sub000/internal/repository/memory"
)

// MockNoteRepository wraps the in-memory repository with per-method error
// injection, so services can be tested against storage failures without a
// real database.
type MockNoteRepository struct {
	*memory.NoteRepository

	mu           sync.Mutex
	shouldFailOn map[string]error
}

// NewMockNoteRepository creates a new mock repository instance.
func NewMockNoteRepository() *MockNoteRepository {
	return &MockNoteRepository{
		NoteRepository: memory.NewNoteRepository(),
		shouldFailOn:   make(map[string]error),
	}
}

// SetError configures the mock to return an error for a specific method.
// Useful for testing error handling in services.
func (m *MockNoteRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockNoteRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

// checkError returns an error if one is configured for the given method.
func (m *MockNoteRepository) checkError(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, exists := m.shouldFailOn[method]; exists {
		return err
	}
	return nil
}

func (m *MockNoteRepository) CreateNote(ctx context.Context, note *domain.Note) error {
	if err := m.checkError("CreateNote"); err != nil {
		return err
	}
	return m.NoteRepository.CreateNote(ctx, note)
}

func (m *MockNoteRepository) UpdateNote(ctx context.Context, note *domain.Note) error {
	if err := m.checkError("UpdateNote"); err != nil {
		return err
	}
	return m.NoteRepository.UpdateNote(ctx, note)
}

func (m *MockNoteRepository) FindNoteByID(ctx context.Context, userID, noteID string, tier domain.Tier) (*domain.Note, error) {
	if err := m.checkError("FindNoteByID"); err != nil {
		return nil, err
	}
	return m.NoteRepository.FindNoteByID(ctx, userID, noteID, tier)
}

func (m *MockNoteRepository) FindNotes(ctx context.Context, query repository.NoteQuery) ([]domain.Note, error) {
	if err := m.checkError("FindNotes"); err != nil {
		return nil, err
	}
	return m.NoteRepository.FindNotes(ctx, query)
}

func (m *MockNoteRepository) ArchiveNote(ctx context.Context, userID, noteID string, archivedAt time.Time) error {
	if err := m.checkError("ArchiveNote"); err != nil {
		return err
	}
	return m.NoteRepository.ArchiveNote(ctx, userID, noteID, archivedAt)
}

func (m *MockNoteRepository) DeleteNote(ctx context.Context, userID, noteID string, tier domain.Tier) error {
	if err := m.checkError("DeleteNote"); err != nil {
		return err
	}
	return m.NoteRepository.DeleteNote(ctx, userID, noteID, tier)
}
