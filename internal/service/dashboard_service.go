package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/fixtures"
	"github.com/opcopilot/opcopilot/internal/repository"
)

// PlanningWindow is how far ahead the planning page looks for phase deadlines.
const PlanningWindow = 7 * 24 * time.Hour

// KPICard is a dashboard figure linking to the page that details it.
type KPICard struct {
	Label string      `json:"label"`
	Value string      `json:"value"`
	Color string      `json:"color"`
	Page  domain.Page `json:"page"`
}

// Dashboard is the landing screen of a case manager.
type Dashboard struct {
	User     string                 `json:"user"`
	KPIs     []KPICard              `json:"kpis"`
	Activity []domain.ActivityPoint `json:"activity"`
	Alerts   []domain.Alert         `json:"alerts"`
	Notice   string                 `json:"notice,omitempty"`
}

// OperationSummary is an operation row with its traffic light.
type OperationSummary struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"nom"`
	Type         domain.OperationType   `json:"type"`
	Municipality string                 `json:"commune"`
	Status       domain.OperationStatus `json:"statut"`
	Progress     float64                `json:"avancement"`
	Budget       float64                `json:"budget_total"`
	Units        int                    `json:"nb_logements"`
	Blockers     int                    `json:"freins_actifs"`
	ACO          string                 `json:"aco"`
	Health       domain.HealthLight     `json:"sante"`
}

// Summarize converts operations into list rows.
func Summarize(ops []domain.Operation) []OperationSummary {
	rows := make([]OperationSummary, 0, len(ops))
	for i := range ops {
		op := &ops[i]
		rows = append(rows, OperationSummary{
			ID:           op.ID,
			Name:         op.Name,
			Type:         op.Type,
			Municipality: op.Municipality,
			Status:       op.Status,
			Progress:     op.Progress,
			Budget:       op.Budget,
			Units:        op.Units,
			Blockers:     op.Blockers,
			ACO:          op.ACO,
			Health:       op.Health(),
		})
	}
	return rows
}

// Deadline is a phase starting or ending inside the planning window.
type Deadline struct {
	OperationID   string             `json:"operation_id"`
	OperationName string             `json:"operation"`
	Phase         string             `json:"phase"`
	Kind          string             `json:"kind"`
	Date          time.Time          `json:"date"`
	Status        domain.PhaseStatus `json:"statut"`
	Critical      bool               `json:"critique"`
}

// TypeOption is an operation type offered by the new-operation form.
type TypeOption struct {
	Type   domain.OperationType `json:"type"`
	Label  string               `json:"label"`
	Phases int                  `json:"phases"`
}

// PageView is the content of a top-level page.
type PageView struct {
	Page       domain.Page        `json:"page"`
	Title      string             `json:"title"`
	Message    string             `json:"message,omitempty"`
	Dashboard  *Dashboard         `json:"dashboard,omitempty"`
	Operations []OperationSummary `json:"operations,omitempty"`
	Deadlines  []Deadline         `json:"deadlines,omitempty"`
	Types      []TypeOption       `json:"types,omitempty"`
}

var pageTitles = map[domain.Page]string{
	domain.PageDashboard:    "Mon Tableau de Bord",
	domain.PagePortfolio:    "Mon Portefeuille",
	domain.PageREM:          "Suivi REM",
	domain.PageBlockers:     "Freins Actifs",
	domain.PagePlanning:     "Échéances de la semaine",
	domain.PageNewOperation: "Nouvelle Opération",
	domain.PageQuickAccess:  "Accès Rapide",
}

// DashboardService assembles the dashboard and the top-level pages.
type DashboardService struct {
	loader    *fixtures.Loader
	portfolio *PortfolioService
	now       func() time.Time
}

// NewDashboardService builds the service.
func NewDashboardService(loader *fixtures.Loader, portfolio *PortfolioService) *DashboardService {
	return &DashboardService{loader: loader, portfolio: portfolio, now: time.Now}
}

// Dashboard returns KPI cards, the monthly activity series and the alerts
// concerning the user's operations.
func (s *DashboardService) Dashboard(ctx context.Context, user *domain.User) (*Dashboard, error) {
	demo := s.loader.Demo()
	ops, err := s.portfolio.List(ctx, user, repository.OperationFilter{})
	if err != nil {
		return nil, err
	}
	visible := make(map[string]bool, len(ops))
	for _, op := range ops {
		visible[op.ID] = true
	}

	alerts := make([]domain.Alert, 0, len(demo.Alerts))
	for _, a := range demo.Alerts {
		if a.OperationID == "" || user.SeesAllOperations() || visible[a.OperationID] {
			alerts = append(alerts, a)
		}
	}

	k := demo.KPIs
	return &Dashboard{
		User: user.DisplayName,
		KPIs: []KPICard{
			{Label: "Opérations Actives", Value: fmt.Sprintf("%d", k.ActiveOperations), Color: "kpi-blue", Page: domain.PagePortfolio},
			{Label: "REM Mon Portefeuille", Value: formatThousands(k.REMPortfolio), Color: "kpi-green", Page: domain.PageREM},
			{Label: "Freins Actifs", Value: fmt.Sprintf("%d", k.ActiveBlockers), Color: "kpi-orange", Page: domain.PageBlockers},
			{Label: "Échéances Semaine", Value: fmt.Sprintf("%d", k.WeekDeadlines), Color: "kpi-red", Page: domain.PagePlanning},
		},
		Activity: demo.MonthlyActivity,
		Alerts:   alerts,
		Notice:   demo.Notice,
	}, nil
}

// Page renders a top-level page. Unknown keys resolve to the dashboard.
func (s *DashboardService) Page(ctx context.Context, user *domain.User, raw string) (*PageView, error) {
	page := domain.ResolvePage(raw)
	view := &PageView{Page: page, Title: pageTitles[page]}

	switch page {
	case domain.PageDashboard:
		d, err := s.Dashboard(ctx, user)
		if err != nil {
			return nil, err
		}
		view.Dashboard = d
	case domain.PagePortfolio:
		ops, err := s.portfolio.List(ctx, user, repository.OperationFilter{})
		if err != nil {
			return nil, err
		}
		view.Operations = Summarize(ops)
	case domain.PageBlockers:
		ops, err := s.portfolio.List(ctx, user, repository.OperationFilter{})
		if err != nil {
			return nil, err
		}
		var blocked []domain.Operation
		for _, op := range ops {
			if op.Blockers > 0 {
				blocked = append(blocked, op)
			}
		}
		sort.SliceStable(blocked, func(i, j int) bool { return blocked[i].Blockers > blocked[j].Blockers })
		view.Operations = Summarize(blocked)
		if len(blocked) == 0 {
			view.Message = "Aucun frein actif sur votre portefeuille"
		}
	case domain.PagePlanning:
		deadlines, err := s.Deadlines(ctx, user)
		if err != nil {
			return nil, err
		}
		view.Deadlines = deadlines
		if len(deadlines) == 0 {
			view.Message = "Aucune échéance dans les 7 prochains jours"
		}
	case domain.PageNewOperation:
		templates := s.portfolio.Templates()
		for _, t := range domain.OperationTypes {
			tpl := templates.Template(string(t))
			view.Types = append(view.Types, TypeOption{Type: t, Label: tpl.Label, Phases: len(tpl.Phases)})
		}
		view.Message = templates.Notice
	case domain.PageREM:
		view.Message = "Section REM détaillée à venir."
	case domain.PageQuickAccess:
		view.Message = "Accès rapide à venir."
	}
	return view, nil
}

// Deadlines lists phases of the user's operations that start or end within
// the planning window, soonest first.
func (s *DashboardService) Deadlines(ctx context.Context, user *domain.User) ([]Deadline, error) {
	ops, err := s.portfolio.List(ctx, user, repository.OperationFilter{})
	if err != nil {
		return nil, err
	}
	from := startOfDay(s.now())
	to := from.Add(PlanningWindow)
	within := func(t time.Time) bool { return !t.Before(from) && !t.After(to) }

	var out []Deadline
	for _, op := range ops {
		phases, err := s.portfolio.phasesOf(ctx, op.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range phases {
			if within(p.Start) {
				out = append(out, deadline(op, p, "debut", p.Start))
			}
			if within(p.End) {
				out = append(out, deadline(op, p, "fin", p.End))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func deadline(op domain.Operation, p domain.Phase, kind string, at time.Time) Deadline {
	return Deadline{
		OperationID:   op.ID,
		OperationName: op.Name,
		Phase:         p.Name,
		Kind:          kind,
		Date:          at,
		Status:        p.Status,
		Critical:      p.Critical,
	}
}

// formatThousands renders 485000 as "485k€".
func formatThousands(v float64) string {
	if v >= 1000 {
		s := fmt.Sprintf("%.1f", v/1000)
		s = strings.TrimSuffix(s, ".0")
		return s + "k€"
	}
	return fmt.Sprintf("%.0f€", v)
}
