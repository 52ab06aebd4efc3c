package repository

import (
	"sync"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// SubmissionStore keeps records entered through the module forms. They live
// alongside the read-only fixture slices and are lost on restart.
type SubmissionStore struct {
	mu         sync.RWMutex
	amendments map[string][]domain.Amendment
	notices    map[string][]domain.FormalNotice
	claims     map[string][]domain.WarrantyClaim
	checked    map[string]map[int]bool
	closed     map[string]bool
}

// NewSubmissionStore returns an empty store.
func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		amendments: make(map[string][]domain.Amendment),
		notices:    make(map[string][]domain.FormalNotice),
		claims:     make(map[string][]domain.WarrantyClaim),
		checked:    make(map[string]map[int]bool),
		closed:     make(map[string]bool),
	}
}

func (s *SubmissionStore) AddAmendment(operationID string, a domain.Amendment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amendments[operationID] = append(s.amendments[operationID], a)
}

func (s *SubmissionStore) Amendments(operationID string) []domain.Amendment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Amendment(nil), s.amendments[operationID]...)
}

func (s *SubmissionStore) AddNotice(operationID string, n domain.FormalNotice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[operationID] = append(s.notices[operationID], n)
}

func (s *SubmissionStore) Notices(operationID string) []domain.FormalNotice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.FormalNotice(nil), s.notices[operationID]...)
}

func (s *SubmissionStore) AddClaim(operationID string, c domain.WarrantyClaim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[operationID] = append(s.claims[operationID], c)
}

func (s *SubmissionStore) Claims(operationID string) []domain.WarrantyClaim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.WarrantyClaim(nil), s.claims[operationID]...)
}

// CheckItem marks a closure checklist item as done.
func (s *SubmissionStore) CheckItem(operationID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked[operationID] == nil {
		s.checked[operationID] = make(map[int]bool)
	}
	s.checked[operationID][index] = true
}

// CheckedItems returns the checklist indexes marked done for an operation.
func (s *SubmissionStore) CheckedItems(operationID string) map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]bool, len(s.checked[operationID]))
	for idx, done := range s.checked[operationID] {
		out[idx] = done
	}
	return out
}

// MarkClosed records that an operation went through closure. It reports
// false when the operation was already closed.
func (s *SubmissionStore) MarkClosed(operationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed[operationID] {
		return false
	}
	s.closed[operationID] = true
	return true
}

// Reopen clears the closed flag set by MarkClosed.
func (s *SubmissionStore) Reopen(operationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.closed, operationID)
}

func (s *SubmissionStore) IsClosed(operationID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed[operationID]
}
