package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/events"
	"github.com/opcopilot/opcopilot/internal/fixtures"
	"github.com/opcopilot/opcopilot/internal/repository"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

const (
	// REMCoherenceThreshold is the mean absolute REM gap (€) under which REM
	// and works progress are considered coherent.
	REMCoherenceThreshold = 2000.0
	// REMLateThreshold is the REM completion (%) under which REM is late.
	REMLateThreshold = 95.0

	// AmendmentBudgetReference and AmendmentDelayReference scale the
	// amendment totals into percentages.
	AmendmentBudgetReference = 25000.0
	AmendmentDelayReference  = 550.0

	DefaultConformityDelay = 15
	MinConformityDelay     = 1
	MaxConformityDelay     = 60
)

const (
	noticeNoREM        = "Aucune donnée REM disponible pour cette opération"
	noticeNoAmendments = "Aucun avenant pour cette opération"
	noticeNoNotices    = "Aucune MED active pour cette opération"
	noticeNoUtilities  = "Aucune donnée concessionnaire pour cette opération"
	noticeNoSettlement = "Module DGD non applicable pour cette opération (phase travaux non atteinte)"
	noticeNoClaims     = "Aucune réclamation GPA pour cette opération"
	noticeChecklist    = "Complétez tous les éléments de la checklist"
)

// AmendmentReasons lists the accepted amendment motives.
var AmendmentReasons = []string{
	"Modification programme",
	"Délai supplémentaire",
	"Plus-value travaux",
	"Moins-value travaux",
	"Changement MOE",
	"Adaptation réglementaire",
	"Autre",
}

// NoticeTypes lists formal notice categories, keyed by code.
var NoticeTypes = []Option{
	{Code: "MED_MOE", Label: "MED_MOE (Maîtrise d'Œuvre)"},
	{Code: "MED_SPS", Label: "MED_SPS (Sécurité Protection Santé)"},
	{Code: "MED_OPC", Label: "MED_OPC (Ordonnancement Pilotage)"},
	{Code: "MED_ENTREPRISE", Label: "MED_ENTREPRISE (par lot)"},
	{Code: "MED_CT", Label: "MED_CT (Contrôleur Technique)"},
}

// NoticeReasons lists the accepted formal notice motives.
var NoticeReasons = []string{
	"Retard dans les études",
	"Non-respect du planning",
	"Défaut de coordination",
	"Non-conformité technique",
	"Absence sur chantier",
	"Documents manquants",
	"Malfaçons constatées",
	"Non-respect des règles de sécurité",
}

// ClaimTypes lists warranty claim categories.
var ClaimTypes = []string{
	"Plomberie",
	"Électricité",
	"Peinture",
	"Menuiserie",
	"Carrelage",
	"Ventilation",
	"Autre",
}

// ClaimUrgencies lists warranty claim urgency levels, lowest first.
var ClaimUrgencies = []string{"Normale", "Prioritaire", "Urgente"}

var utilityTitles = map[domain.UtilityProvider]string{
	domain.UtilityEDF:   "Processus EDF - Raccordement Électrique",
	domain.UtilityWater: "Processus EAU - Branchement",
	domain.UtilityFiber: "Processus FIBRE - Installation",
}

// Option is a coded choice of a form field.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// REMReport is the quarterly financial tracking of an operation.
type REMReport struct {
	Rows      []domain.REMEntry `json:"rows"`
	MeanGap   float64           `json:"mean_gap"`
	Coherent  bool              `json:"coherent"`
	Reference *domain.REMEntry  `json:"reference,omitempty"`
	Late      bool              `json:"late"`
	Notice    string            `json:"notice,omitempty"`
}

// AmendmentReport lists amendments with their cumulated impact.
type AmendmentReport struct {
	Rows                []domain.Amendment `json:"rows"`
	Count               int                `json:"count"`
	TotalBudgetImpact   float64            `json:"total_budget_impact"`
	TotalDelayImpact    int                `json:"total_delay_impact"`
	BudgetImpactPercent float64            `json:"budget_impact_percent"`
	DelayImpactPercent  float64            `json:"delay_impact_percent"`
	Reasons             []string           `json:"reasons"`
	Notice              string             `json:"notice,omitempty"`
}

// NoticeReport lists formal notices and the options of the notice form.
type NoticeReport struct {
	Rows    []domain.FormalNotice `json:"rows"`
	Pending int                   `json:"pending"`
	Types   []Option              `json:"types"`
	Reasons []string              `json:"reasons"`
	Notice  string                `json:"notice,omitempty"`
}

// UtilityStepView is a utility step with its display label.
type UtilityStepView struct {
	Name   string `json:"nom"`
	Status string `json:"statut"`
	Label  string `json:"label"`
	Date   string `json:"date"`
}

// UtilityView is the workflow of one provider.
type UtilityView struct {
	Provider domain.UtilityProvider `json:"provider"`
	Title    string                 `json:"title"`
	Steps    []UtilityStepView      `json:"steps"`
}

// UtilityReport groups the utility workflows of an operation.
type UtilityReport struct {
	Providers []UtilityView `json:"providers"`
	Notice    string        `json:"notice,omitempty"`
}

// SettlementReport is the final cost settlement of an operation.
type SettlementReport struct {
	Applicable       bool                      `json:"applicable"`
	Lots             []domain.SettlementLot    `json:"lots,omitempty"`
	Workflow         []domain.WorkflowStep     `json:"workflow,omitempty"`
	Summary          *domain.SettlementSummary `json:"summary,omitempty"`
	PlusMinusPercent float64                   `json:"plus_minus_percent"`
	Notice           string                    `json:"notice,omitempty"`
}

// ClaimReport lists warranty claims and their breakdown by type.
type ClaimReport struct {
	Rows      []domain.WarrantyClaim `json:"rows"`
	ByType    map[string]int         `json:"by_type"`
	Types     []string               `json:"types"`
	Urgencies []string               `json:"urgencies"`
	Notice    string                 `json:"notice,omitempty"`
}

// ClosureBalance summarizes an operation at closing time.
type ClosureBalance struct {
	InitialBudget      float64 `json:"budget_initial"`
	FinalBudget        float64 `json:"budget_final"`
	BudgetGapPercent   float64 `json:"ecart_budget"`
	PlannedMonths      int     `json:"duree_prevue"`
	ActualMonths       int     `json:"duree_reelle"`
	PlanningGapPercent float64 `json:"ecart_planning"`
	LatePhases         int     `json:"phases_retard"`
	Amendments         int     `json:"avenants"`
	Claims             int     `json:"reclamations_gpa"`
}

// ClosureReport is the closure checklist of an operation.
type ClosureReport struct {
	Checklist []domain.ChecklistItem `json:"checklist"`
	Ready     bool                   `json:"ready"`
	Closed    bool                   `json:"closed"`
	Balance   ClosureBalance         `json:"balance"`
	Notice    string                 `json:"notice,omitempty"`
}

// AmendmentInput captures the new-amendment form.
type AmendmentInput struct {
	Reason       string
	BudgetImpact float64
	DelayImpact  int
	Description  string
}

// NoticeInput captures the formal notice form. A zero delay means the default.
type NoticeInput struct {
	Type            string
	Recipient       string
	Reasons         []string
	ConformityDelay int
	Details         string
}

// ClaimInput captures the warranty claim form.
type ClaimInput struct {
	Unit        string
	Tenant      string
	Type        string
	Urgency     string
	Description string
}

// ModuleService serves the per-operation modules.
type ModuleService struct {
	loader      *fixtures.Loader
	portfolio   *PortfolioService
	submissions *repository.SubmissionStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// ModuleDependencies bundles collaborators for the module service.
type ModuleDependencies struct {
	Loader      *fixtures.Loader
	Portfolio   *PortfolioService
	Submissions *repository.SubmissionStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewModuleService builds the service.
func NewModuleService(deps ModuleDependencies) *ModuleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{
		loader:      deps.Loader,
		portfolio:   deps.Portfolio,
		submissions: deps.Submissions,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         time.Now,
	}
}

// REM analyses the quarterly REM rows.
func (s *ModuleService) REM(ctx context.Context, user *domain.User, operationID string) (*REMReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	rows := s.loader.Demo().REM[domain.OperationKey(operationID)]
	report := &REMReport{Rows: rows}
	if len(rows) == 0 {
		report.Rows = []domain.REMEntry{}
		report.Notice = noticeNoREM
		return report, nil
	}

	var sum float64
	var n int
	for _, r := range rows {
		if r.REMGap != 0 {
			sum += math.Abs(r.REMGap)
			n++
		}
	}
	if n > 0 {
		report.MeanGap = sum / float64(n)
	}
	report.Coherent = report.MeanGap < REMCoherenceThreshold

	// The last quarter is usually still open; the one before is the latest closed.
	ref := rows[0]
	if len(rows) >= 2 {
		ref = rows[len(rows)-2]
	}
	report.Reference = &ref
	report.Late = ref.REMProgress < REMLateThreshold
	return report, nil
}

// Amendments lists demo and submitted amendments with their totals.
func (s *ModuleService) Amendments(ctx context.Context, user *domain.User, operationID string) (*AmendmentReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	rows := s.amendments(operationID)
	report := &AmendmentReport{Rows: rows, Count: len(rows), Reasons: AmendmentReasons}
	for _, a := range rows {
		report.TotalBudgetImpact += a.BudgetImpact
		report.TotalDelayImpact += a.DelayImpact
	}
	report.BudgetImpactPercent = round1(report.TotalBudgetImpact / AmendmentBudgetReference * 100)
	report.DelayImpactPercent = round1(float64(report.TotalDelayImpact) / AmendmentDelayReference * 100)
	if len(rows) == 0 {
		report.Notice = noticeNoAmendments
	}
	return report, nil
}

// CreateAmendment drafts an amendment and sends it for hierarchical validation.
func (s *ModuleService) CreateAmendment(ctx context.Context, user *domain.User, operationID string, input AmendmentInput) (*domain.Amendment, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if !contains(AmendmentReasons, reason) {
		return nil, apperrors.NewValidationError("unknown amendment reason", map[string]any{"motif": input.Reason, "allowed": AmendmentReasons})
	}

	amendment := domain.Amendment{
		ID:           uuid.NewString(),
		Number:       fmt.Sprintf("AV-%03d", len(s.amendments(operationID))+1),
		Date:         s.today(),
		Reason:       reason,
		BudgetImpact: input.BudgetImpact,
		DelayImpact:  input.DelayImpact,
		Status:       domain.AmendmentStatusDraft,
		Description:  strings.TrimSpace(input.Description),
	}
	s.submissions.AddAmendment(operationID, amendment)

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventAmendmentCreated,
		OperationID: operationID,
		Actor:       user.Login,
		Payload: events.AmendmentCreatedPayload{
			Number:       amendment.Number,
			Reason:       amendment.Reason,
			BudgetImpact: amendment.BudgetImpact,
			DelayImpact:  amendment.DelayImpact,
		},
	})
	return &amendment, nil
}

// Notices lists the formal notices of an operation.
func (s *ModuleService) Notices(ctx context.Context, user *domain.User, operationID string) (*NoticeReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	rows := s.notices(operationID)
	report := &NoticeReport{Rows: rows, Types: NoticeTypes, Reasons: NoticeReasons}
	for _, n := range rows {
		if n.Status == domain.NoticeStatusPending {
			report.Pending++
		}
	}
	if len(rows) == 0 {
		report.Notice = noticeNoNotices
	}
	return report, nil
}

// CreateNotice generates a formal notice. Recipient and at least one reason
// are required; the conformity delay defaults to 15 days.
func (s *ModuleService) CreateNotice(ctx context.Context, user *domain.User, operationID string, input NoticeInput) (*domain.FormalNotice, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}

	recipient := strings.TrimSpace(input.Recipient)
	var missing []string
	if recipient == "" {
		missing = append(missing, "destinataire")
	}
	if len(input.Reasons) == 0 {
		missing = append(missing, "motifs")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}
	for _, r := range input.Reasons {
		if !contains(NoticeReasons, r) {
			return nil, apperrors.NewValidationError("unknown notice reason", map[string]any{"motif": r, "allowed": NoticeReasons})
		}
	}

	noticeType := strings.TrimSpace(input.Type)
	if noticeType == "" {
		noticeType = NoticeTypes[0].Code
	}
	if !hasOption(NoticeTypes, noticeType) {
		return nil, apperrors.NewValidationError("unknown notice type", map[string]any{"type": input.Type})
	}

	delay := input.ConformityDelay
	if delay == 0 {
		delay = DefaultConformityDelay
	}
	if delay < MinConformityDelay || delay > MaxConformityDelay {
		return nil, apperrors.NewValidationError("conformity delay out of range", map[string]any{
			"delai_conformite": delay,
			"min":              MinConformityDelay,
			"max":              MaxConformityDelay,
		})
	}

	now := s.now()
	notice := domain.FormalNotice{
		ID:              uuid.NewString(),
		Reference:       fmt.Sprintf("MED-%d-%03d", now.Year(), len(s.notices(operationID))+1),
		Type:            noticeType,
		Recipient:       recipient,
		SentDate:        now.Format("2006-01-02"),
		ConformityDelay: delay,
		Status:          domain.NoticeStatusSent,
		Reasons:         append([]string(nil), input.Reasons...),
		Details:         strings.TrimSpace(input.Details),
	}
	s.submissions.AddNotice(operationID, notice)

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventNoticeGenerated,
		OperationID: operationID,
		Actor:       user.Login,
		Payload:     events.NoticePayload{Reference: notice.Reference, Recipient: notice.Recipient, ConformityDelay: delay},
	})
	return &notice, nil
}

// RemindPendingNotices sends a reminder for each notice awaiting conformity.
func (s *ModuleService) RemindPendingNotices(ctx context.Context, user *domain.User, operationID string) ([]domain.FormalNotice, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	reminded := []domain.FormalNotice{}
	for _, n := range s.notices(operationID) {
		if n.Status != domain.NoticeStatusPending {
			continue
		}
		reminded = append(reminded, n)
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:        events.EventNoticeReminded,
			OperationID: operationID,
			Actor:       user.Login,
			Payload:     events.NoticePayload{Reference: n.Reference, Recipient: n.Recipient, ConformityDelay: n.ConformityDelay},
		})
	}
	return reminded, nil
}

// Utilities returns the connection workflows per provider.
func (s *ModuleService) Utilities(ctx context.Context, user *domain.User, operationID string) (*UtilityReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	data := s.loader.Demo().Utilities[domain.OperationKey(operationID)]
	report := &UtilityReport{Providers: []UtilityView{}}
	if len(data) == 0 {
		report.Notice = noticeNoUtilities
		return report, nil
	}
	for _, p := range domain.UtilityProviders {
		view := UtilityView{Provider: p, Title: utilityTitles[p], Steps: []UtilityStepView{}}
		for _, step := range data[string(p)].Steps {
			view.Steps = append(view.Steps, UtilityStepView{
				Name:   step.Name,
				Status: step.Status,
				Label:  UtilityStatusLabel(step.Status),
				Date:   stepDate(step.Date),
			})
		}
		report.Providers = append(report.Providers, view)
	}
	return report, nil
}

// RemindUtility sends a reminder to a utility provider about its open steps.
func (s *ModuleService) RemindUtility(ctx context.Context, user *domain.User, operationID, provider string) (*events.UtilityRemindedPayload, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	p := domain.UtilityProvider(strings.ToUpper(strings.TrimSpace(provider)))
	if _, ok := utilityTitles[p]; !ok {
		return nil, apperrors.NewValidationError("unknown utility provider", map[string]any{"provider": provider, "allowed": domain.UtilityProviders})
	}

	payload := events.UtilityRemindedPayload{Provider: p}
	for _, step := range s.loader.Demo().Utilities[domain.OperationKey(operationID)][string(p)].Steps {
		if step.Status != "VALIDEE" {
			payload.PendingSteps++
		}
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventUtilityReminded,
		OperationID: operationID,
		Actor:       user.Login,
		Payload:     payload,
	})
	return &payload, nil
}

// Settlement returns the final cost settlement, when the operation has one.
func (s *ModuleService) Settlement(ctx context.Context, user *domain.User, operationID string) (*SettlementReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	dgd, ok := s.loader.Demo().Settlements[domain.OperationKey(operationID)]
	if !ok || (len(dgd.Lots) == 0 && dgd.Summary == nil) {
		return &SettlementReport{Notice: noticeNoSettlement}, nil
	}
	report := &SettlementReport{
		Applicable: true,
		Lots:       dgd.Lots,
		Workflow:   SettlementWorkflow(),
		Summary:    dgd.Summary,
	}
	if dgd.Summary != nil && dgd.Summary.InitialAmount != 0 {
		report.PlusMinusPercent = round1(dgd.Summary.PlusMinusValues / dgd.Summary.InitialAmount * 100)
	}
	return report, nil
}

// Claims lists warranty claims with a count per type.
func (s *ModuleService) Claims(ctx context.Context, user *domain.User, operationID string) (*ClaimReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	rows := s.claims(operationID)
	report := &ClaimReport{Rows: rows, ByType: map[string]int{}, Types: ClaimTypes, Urgencies: ClaimUrgencies}
	for _, c := range rows {
		report.ByType[c.Type]++
	}
	if len(rows) == 0 {
		report.Notice = noticeNoClaims
	}
	return report, nil
}

// CreateClaim registers a tenant claim and forwards it to the case manager.
func (s *ModuleService) CreateClaim(ctx context.Context, user *domain.User, operationID string, input ClaimInput) (*domain.WarrantyClaim, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	unit := strings.TrimSpace(input.Unit)
	tenant := strings.TrimSpace(input.Tenant)
	description := strings.TrimSpace(input.Description)

	var missing []string
	if unit == "" {
		missing = append(missing, "logement")
	}
	if tenant == "" {
		missing = append(missing, "locataire")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}

	claimType := strings.TrimSpace(input.Type)
	if claimType == "" {
		claimType = "Autre"
	}
	if !contains(ClaimTypes, claimType) {
		return nil, apperrors.NewValidationError("unknown claim type", map[string]any{"type": input.Type, "allowed": ClaimTypes})
	}
	urgency := strings.TrimSpace(input.Urgency)
	if urgency == "" {
		urgency = ClaimUrgencies[0]
	}
	if !contains(ClaimUrgencies, urgency) {
		return nil, apperrors.NewValidationError("unknown urgency", map[string]any{"urgence": input.Urgency, "allowed": ClaimUrgencies})
	}

	claim := domain.WarrantyClaim{
		ID:          uuid.NewString(),
		Date:        s.today(),
		Unit:        unit,
		Type:        claimType,
		Description: description,
		Status:      "OUVERTE",
		Tenant:      tenant,
		Urgency:     urgency,
	}
	s.submissions.AddClaim(operationID, claim)

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventClaimRegistered,
		OperationID: operationID,
		Actor:       user.Login,
		Payload:     events.ClaimRegisteredPayload{Unit: unit, Type: claimType, Urgency: urgency},
	})
	return &claim, nil
}

// Closure returns the closure checklist and balance.
func (s *ModuleService) Closure(ctx context.Context, user *domain.User, operationID string) (*ClosureReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	return s.closure(operationID), nil
}

// CheckClosureItem marks one checklist item as done.
func (s *ModuleService) CheckClosureItem(ctx context.Context, user *domain.User, operationID string, index int) (*ClosureReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(closureChecklist) {
		return nil, apperrors.NewValidationError("unknown checklist item", map[string]any{"index": index})
	}
	s.submissions.CheckItem(operationID, index)
	return s.closure(operationID), nil
}

// Close closes an operation once every checklist item is done.
func (s *ModuleService) Close(ctx context.Context, user *domain.User, operationID string) (*ClosureReport, error) {
	if _, err := s.portfolio.Get(ctx, user, operationID); err != nil {
		return nil, err
	}
	report := s.closure(operationID)
	if report.Closed {
		return nil, apperrors.NewConflict("operation already closed", map[string]any{"operation_id": operationID})
	}
	if !report.Ready {
		var pending []string
		for _, item := range report.Checklist {
			if !item.Done {
				pending = append(pending, item.Label)
			}
		}
		return nil, apperrors.NewConflict(noticeChecklist, map[string]any{"pending": pending})
	}
	if !s.submissions.MarkClosed(operationID) {
		return nil, apperrors.NewConflict("operation already closed", map[string]any{"operation_id": operationID})
	}
	if err := s.portfolio.MarkClosed(ctx, operationID); err != nil {
		s.submissions.Reopen(operationID)
		return nil, err
	}
	s.logger.Info("operation closed", zap.String("operation_id", operationID), zap.String("aco", user.Login))

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventOperationClosed,
		OperationID: operationID,
		Actor:       user.Login,
	})
	report.Closed = true
	return report, nil
}

// SettlementWorkflow is the fixed validation circuit of a settlement.
func SettlementWorkflow() []domain.WorkflowStep {
	return []domain.WorkflowStep{
		{Name: "Saisie quantités", Responsible: "ACO", State: "VALIDEE"},
		{Name: "Validation entreprise", Responsible: "Entreprise", State: "VALIDEE"},
		{Name: "Vérification MOE", Responsible: "MOE", State: "EN_COURS"},
		{Name: "Validation SPIC", Responsible: "SPIC", State: "EN_ATTENTE"},
		{Name: "Génération décompte", Responsible: "Système", State: "EN_ATTENTE"},
	}
}

var closureChecklist = []domain.ChecklistItem{
	{Label: "Toutes phases validées", Done: true, Responsible: "ACO"},
	{Label: "Documents archivés", Done: true, Responsible: "ACO"},
	{Label: "Soldes financiers validés", Responsible: "Financier"},
	{Label: "Retenue de garantie levée", Responsible: "Financier"},
	{Label: "Bilan opération rédigé", Responsible: "ACO"},
	{Label: "Lessons learned documentées", Responsible: "ACO"},
}

var closureBalance = ClosureBalance{
	InitialBudget:      2450000,
	FinalBudget:        2398000,
	BudgetGapPercent:   -2.1,
	PlannedMonths:      24,
	ActualMonths:       26,
	PlanningGapPercent: 8.3,
	LatePhases:         3,
	Amendments:         3,
	Claims:             12,
}

func (s *ModuleService) closure(operationID string) *ClosureReport {
	checked := s.submissions.CheckedItems(operationID)
	items := make([]domain.ChecklistItem, len(closureChecklist))
	ready := true
	for i, item := range closureChecklist {
		item.Done = item.Done || checked[i]
		ready = ready && item.Done
		items[i] = item
	}
	report := &ClosureReport{
		Checklist: items,
		Ready:     ready,
		Closed:    s.submissions.IsClosed(operationID),
		Balance:   closureBalance,
	}
	if !ready {
		report.Notice = noticeChecklist
	}
	return report
}

// UtilityStatusLabel maps a utility step status to its display label.
func UtilityStatusLabel(status string) string {
	switch status {
	case "VALIDEE":
		return "Validé"
	case "EN_COURS":
		return "En cours"
	case "PLANIFIE":
		return "Planifié"
	default:
		return "En attente"
	}
}

func stepDate(date string) string {
	if strings.TrimSpace(date) == "" {
		return "À programmer"
	}
	return date
}

func (s *ModuleService) amendments(operationID string) []domain.Amendment {
	rows := append([]domain.Amendment{}, s.loader.Demo().Amendments[domain.OperationKey(operationID)]...)
	return append(rows, s.submissions.Amendments(operationID)...)
}

func (s *ModuleService) notices(operationID string) []domain.FormalNotice {
	rows := append([]domain.FormalNotice{}, s.loader.Demo().Notices[domain.OperationKey(operationID)]...)
	return append(rows, s.submissions.Notices(operationID)...)
}

func (s *ModuleService) claims(operationID string) []domain.WarrantyClaim {
	rows := append([]domain.WarrantyClaim{}, s.loader.Demo().Claims[domain.OperationKey(operationID)]...)
	return append(rows, s.submissions.Claims(operationID)...)
}

func (s *ModuleService) today() string {
	return s.now().Format("2006-01-02")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func hasOption(options []Option, code string) bool {
	for _, o := range options {
		if o.Code == code {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
