package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// OperationFilter narrows operation listings.
type OperationFilter struct {
	ACO    string
	Status domain.OperationStatus
	Type   domain.OperationType
	Search string
}

// Match reports whether op passes the filter.
func (f OperationFilter) Match(op *domain.Operation) bool {
	if f.ACO != "" && !strings.EqualFold(op.ACO, f.ACO) {
		return false
	}
	if f.Status != "" && op.Status != f.Status {
		return false
	}
	if f.Type != "" && op.Type != f.Type {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(op.Name), needle) &&
			!strings.Contains(strings.ToLower(op.Municipality), needle) {
			return false
		}
	}
	return true
}

// OperationRepository stores operations created at runtime.
type OperationRepository interface {
	Create(ctx context.Context, op *domain.Operation, phases []domain.Phase) error
	Update(ctx context.Context, op *domain.Operation) error
	GetByID(ctx context.Context, id string) (*domain.Operation, error)
	List(ctx context.Context, filter OperationFilter) ([]domain.Operation, error)
	ListPhases(ctx context.Context, operationID string) ([]domain.Phase, error)
}

type memoryOperationRepository struct {
	mu     sync.RWMutex
	ops    map[string]domain.Operation
	phases map[string][]domain.Phase
}

// NewMemoryOperationRepository returns a process-local implementation.
func NewMemoryOperationRepository() OperationRepository {
	return &memoryOperationRepository{
		ops:    make(map[string]domain.Operation),
		phases: make(map[string][]domain.Phase),
	}
}

func (r *memoryOperationRepository) Create(_ context.Context, op *domain.Operation, phases []domain.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.ID] = *op
	r.phases[op.ID] = append([]domain.Phase(nil), phases...)
	return nil
}

func (r *memoryOperationRepository) Update(_ context.Context, op *domain.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[op.ID]; !ok {
		return ErrNotFound
	}
	r.ops[op.ID] = *op
	return nil
}

func (r *memoryOperationRepository) GetByID(_ context.Context, id string) (*domain.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &op, nil
}

func (r *memoryOperationRepository) List(_ context.Context, filter OperationFilter) ([]domain.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Operation, 0, len(r.ops))
	for _, op := range r.ops {
		op := op
		if filter.Match(&op) {
			result = append(result, op)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryOperationRepository) ListPhases(_ context.Context, operationID string) ([]domain.Phase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	phases, ok := r.phases[operationID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]domain.Phase(nil), phases...), nil
}
