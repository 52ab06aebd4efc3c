package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/events"
	"github.com/opcopilot/opcopilot/internal/fixtures"
	"github.com/opcopilot/opcopilot/internal/repository"
	"github.com/opcopilot/opcopilot/internal/timeline"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

// PortfolioService serves operations from the demo data plus those created at runtime.
type PortfolioService struct {
	loader     *fixtures.Loader
	repo       repository.OperationRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// PortfolioDependencies bundles collaborators for the portfolio service.
type PortfolioDependencies struct {
	Loader     *fixtures.Loader
	Repo       repository.OperationRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewPortfolioService builds the service.
func NewPortfolioService(deps PortfolioDependencies) *PortfolioService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{
		loader:     deps.Loader,
		repo:       deps.Repo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateOperationInput captures the new-operation form.
type CreateOperationInput struct {
	Name         string
	Type         domain.OperationType
	Municipality string
	Budget       *float64
	Units        *int
	StartDate    string
	EndDate      string
	ACO          string
}

// Notice returns the on-screen notice of the demo data, if fallback data is served.
func (s *PortfolioService) Notice() string {
	return s.loader.Demo().Notice
}

// Templates returns the phase templates per operation type.
func (s *PortfolioService) Templates() *fixtures.PhaseTemplates {
	return s.loader.Templates()
}

// List returns the operations visible to user. Case managers only see their
// own operations; administrators see all of them.
func (s *PortfolioService) List(ctx context.Context, user *domain.User, filter repository.OperationFilter) ([]domain.Operation, error) {
	if !user.SeesAllOperations() {
		filter.ACO = user.Login
	}

	var result []domain.Operation
	for _, rec := range s.loader.Demo().Operations {
		op := rec.ToDomain()
		if filter.Match(&op) {
			result = append(result, op)
		}
	}

	created, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return append(result, created...), nil
}

// Get returns one operation if user may see it.
func (s *PortfolioService) Get(ctx context.Context, user *domain.User, id string) (*domain.Operation, error) {
	op, _, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.SeesAllOperations() && !strings.EqualFold(op.ACO, user.Login) {
		return nil, apperrors.NewForbidden("operation belongs to another case manager")
	}
	return op, nil
}

// Phases returns the normalized phases of an operation.
func (s *PortfolioService) Phases(ctx context.Context, user *domain.User, id string) ([]domain.Phase, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	return s.phasesOf(ctx, id)
}

// Timeline lays out the phases of an operation.
func (s *PortfolioService) Timeline(ctx context.Context, user *domain.User, id string) (*domain.Operation, timeline.Layout, error) {
	op, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, timeline.Layout{}, err
	}
	phases, err := s.phasesOf(ctx, id)
	if err != nil {
		return nil, timeline.Layout{}, err
	}
	return op, timeline.Build(op.Name, phases), nil
}

// Create validates the form and stores a new operation with phases
// instantiated from its type's template.
func (s *PortfolioService) Create(ctx context.Context, user *domain.User, input CreateOperationInput) (*domain.Operation, []domain.Phase, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Municipality = strings.TrimSpace(input.Municipality)
	input.Type = domain.OperationType(strings.ToUpper(strings.TrimSpace(string(input.Type))))

	var missing []string
	if input.Name == "" {
		missing = append(missing, "nom")
	}
	if input.Type == "" {
		missing = append(missing, "type")
	}
	if input.Municipality == "" {
		missing = append(missing, "commune")
	}
	if input.Budget == nil {
		missing = append(missing, "budget_total")
	}
	if input.Units == nil {
		missing = append(missing, "nb_logements")
	}
	if len(missing) > 0 {
		return nil, nil, apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}
	if !input.Type.Valid() {
		return nil, nil, apperrors.NewValidationError("unknown operation type", map[string]any{"type": input.Type, "allowed": domain.OperationTypes})
	}

	now := s.now().UTC()
	start := startOfDay(now)
	op := &domain.Operation{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Type:         input.Type,
		Municipality: input.Municipality,
		Status:       domain.OperationStatusMontage,
		Budget:       *input.Budget,
		Units:        *input.Units,
		CreatedAt:    now,
		ACO:          user.Login,
	}
	if user.SeesAllOperations() && strings.TrimSpace(input.ACO) != "" {
		op.ACO = strings.ToLower(strings.TrimSpace(input.ACO))
	}

	if input.StartDate != "" {
		t, ok := timeline.ParseDate(input.StartDate)
		if !ok {
			return nil, nil, apperrors.NewValidationError("invalid start date", map[string]any{"date_debut": input.StartDate})
		}
		start = t
		op.StartDate = &t
	}
	if input.EndDate != "" {
		t, ok := timeline.ParseDate(input.EndDate)
		if !ok {
			return nil, nil, apperrors.NewValidationError("invalid end date", map[string]any{"date_fin_prevue": input.EndDate})
		}
		if t.Before(start) {
			return nil, nil, apperrors.NewValidationError("end date before start date", nil)
		}
		op.EndDate = &t
	}

	phases := instantiateTemplate(s.loader.Templates().Template(string(op.Type)), start)
	if op.StartDate == nil {
		op.StartDate = &start
	}
	if op.EndDate == nil && len(phases) > 0 {
		end := phases[len(phases)-1].End
		op.EndDate = &end
	}

	if err := s.repo.Create(ctx, op, phases); err != nil {
		return nil, nil, err
	}
	s.logger.Info("operation created",
		zap.String("operation_id", op.ID),
		zap.String("type", string(op.Type)),
		zap.String("aco", op.ACO))

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventOperationCreated,
		OperationID: op.ID,
		Actor:       user.Login,
		Payload:     events.OperationCreatedPayload{Name: op.Name, Type: op.Type, Phases: len(phases)},
	})
	return op, phases, nil
}

// MarkClosed moves a runtime operation to the closed status. Demo operations
// are read-only and stay as loaded.
func (s *PortfolioService) MarkClosed(ctx context.Context, id string) error {
	op, fromFixture, err := s.find(ctx, id)
	if err != nil || fromFixture {
		return err
	}
	op.Status = domain.OperationStatusCloturee
	op.Progress = 100
	return s.repo.Update(ctx, op)
}

func (s *PortfolioService) find(ctx context.Context, id string) (*domain.Operation, bool, error) {
	for _, rec := range s.loader.Demo().Operations {
		if rec.ID.String() == id {
			op := rec.ToDomain()
			return &op, true, nil
		}
	}
	op, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperrors.NewNotFound("operation", map[string]any{"id": id})
	}
	if err != nil {
		return nil, false, err
	}
	return op, false, nil
}

func (s *PortfolioService) phasesOf(ctx context.Context, id string) ([]domain.Phase, error) {
	demo := s.loader.Demo()
	if raw, ok := demo.Phases[domain.OperationKey(id)]; ok {
		return timeline.Normalize(raw, startOfDay(s.now())), nil
	}
	phases, err := s.repo.ListPhases(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		// Demo operations without a phase list have an empty timeline.
		return nil, nil
	}
	return phases, err
}

// instantiateTemplate chains template phases back to back from start.
func instantiateTemplate(tpl fixtures.PhaseTemplate, start time.Time) []domain.Phase {
	phases := make([]domain.Phase, 0, len(tpl.Phases))
	cursor := start
	for i, tp := range tpl.Phases {
		end := cursor.AddDate(0, tp.Months, 0)
		if tp.Months <= 0 {
			end = cursor.AddDate(0, 0, timeline.PhaseSpanDays)
		}
		status := domain.PhaseStatusNonDemarree
		if i == 0 {
			status = domain.PhaseStatusEnCours
		}
		phases = append(phases, domain.Phase{
			Name:        tp.Name,
			Start:       cursor,
			End:         end,
			Status:      status,
			Responsible: tp.Responsible,
			Critical:    tp.Critical,
		})
		cursor = end
	}
	return phases
}

// startOfDay truncates t to midnight UTC, the anchor of generated phase dates.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
