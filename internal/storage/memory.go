package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a thread-safe store used by tests and local development
// sessions that don't need persistence.
type InMemoryStore struct {
	mu      sync.RWMutex
	quiz    []QuizResult
	reports []DesignReport
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// SaveQuizResult appends a quiz submission.
func (s *InMemoryStore) SaveQuizResult(_ context.Context, input QuizResult) (QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}
	s.quiz = append(s.quiz, input)
	return input, nil
}

// SaveReport prepends a design report, newest first.
func (s *InMemoryStore) SaveReport(_ context.Context, input DesignReport) (DesignReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}
	s.reports = append([]DesignReport{input}, s.reports...)
	if len(s.reports) > 50 {
		s.reports = s.reports[:50]
	}
	return input, nil
}

// ListReports returns a snapshot of stored reports.
func (s *InMemoryStore) ListReports(_ context.Context) ([]DesignReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]DesignReport, len(s.reports))
	copy(snapshot, s.reports)
	return snapshot, nil
}

// QuizResults returns a snapshot of saved quiz submissions, used by tests.
func (s *InMemoryStore) QuizResults() []QuizResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]QuizResult, len(s.quiz))
	copy(snapshot, s.quiz)
	return snapshot
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}
