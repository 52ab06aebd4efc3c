package fixtures

import (
	"strings"
	"time"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/timeline"
)

// DefaultTemplateKey names the template used for unknown operation types.
const DefaultTemplateKey = "DEFAULT"

// FallbackDemoData is served when the demo data document cannot be read.
func FallbackDemoData() *DemoData {
	d := &DemoData{
		Operations: []OperationRecord{
			{
				ID: "1", Name: "ZAC Bellevue", Type: "OPP", Municipality: "Les Abymes",
				Status: "TRAVAUX", Progress: 65, Budget: 2450000, Units: 32,
				CreatedAt: "2023-02-01", StartDate: "2023-03-15", EndDate: "2025-06-30",
				Blockers: 0, ACO: "aco1",
			},
			{
				ID: "2", Name: "Résidence Soleil", Type: "VEFA", Municipality: "Baie-Mahault",
				Status: "ETUDES", Progress: 30, Budget: 1850000, Units: 24,
				CreatedAt: "2023-09-10", StartDate: "2024-01-08", EndDate: "2026-03-31",
				Blockers: 1, ACO: "aco1",
			},
			{
				ID: "3", Name: "Collège Nord", Type: "MANDAT", Municipality: "Sainte-Rose",
				Status: "MONTAGE", Progress: 10, Budget: 5200000, Units: 0,
				CreatedAt: "2024-04-22", StartDate: "2024-06-01", EndDate: "2027-09-01",
				Blockers: 2, ACO: "aco2",
			},
		},
		Phases: map[string][]any{
			domain.OperationKey("1"): {
				phaseRecord("Montage opération", "2023-03-15", "2023-06-30", "VALIDEE", "ACO", false),
				phaseRecord("Études de conception", "2023-07-01", "2023-12-15", "VALIDEE", "MOE", false),
				phaseRecord("Consultation entreprises", "2024-01-08", "2024-04-30", "VALIDEE", "ACO", true),
				phaseRecord("Travaux gros œuvre", "2024-05-06", "2025-01-31", "EN_COURS", "Entreprise", true),
				phaseRecord("Second œuvre", "2025-02-03", "2025-05-30", "NON_DEMARREE", "Entreprise", false),
				phaseRecord("Réception", "2025-06-02", "2025-06-30", "NON_DEMARREE", "MOE", true),
			},
		},
		KPIs: domain.KPIs{
			ActiveOperations: 23,
			REMPortfolio:     485000,
			ActiveBlockers:   3,
			WeekDeadlines:    5,
		},
		Alerts: []domain.Alert{
			{Level: "critique", Message: "Collège Nord : permis de construire en attente", OperationID: "3"},
			{Level: "attention", Message: "Résidence Soleil : retard études de sol", OperationID: "2"},
			{Level: "info", Message: "ZAC Bellevue : réception prévue en juin", OperationID: "1"},
		},
	}

	months := []string{"Jan", "Fév", "Mar", "Avr", "Mai", "Juin", "Juil", "Août", "Sep", "Oct", "Nov", "Déc"}
	started := []int{2, 1, 3, 2, 4, 2, 1, 0, 3, 2, 2, 1}
	completed := []int{0, 1, 1, 0, 2, 1, 2, 1, 0, 1, 2, 3}
	amendments := []int{1, 0, 2, 1, 1, 3, 0, 1, 2, 1, 0, 1}
	for i, m := range months {
		d.MonthlyActivity = append(d.MonthlyActivity, domain.ActivityPoint{
			Month:      m,
			Started:    started[i],
			Completed:  completed[i],
			Amendments: amendments[i],
		})
	}

	d.ensureMaps()
	return d
}

// FallbackTemplates is served when the phase templates document cannot be read.
func FallbackTemplates() *PhaseTemplates {
	return &PhaseTemplates{Types: map[string]PhaseTemplate{DefaultTemplateKey: genericTemplate()}}
}

func genericTemplate() PhaseTemplate {
	return PhaseTemplate{
		Label: "Opération générique",
		Phases: []TemplatePhase{
			{Name: "Montage", Months: 3, Responsible: "ACO"},
			{Name: "Études", Months: 6, Responsible: "MOE"},
			{Name: "Consultation", Months: 3, Responsible: "ACO", Critical: true},
			{Name: "Travaux", Months: 18, Responsible: "Entreprise", Critical: true},
			{Name: "Réception", Months: 1, Responsible: "MOE", Critical: true},
		},
	}
}

func phaseRecord(name, start, end, status, responsible string, critical bool) map[string]any {
	return map[string]any{
		timeline.KeyName:        name,
		timeline.KeyStart:       start,
		timeline.KeyEnd:         end,
		timeline.KeyStatus:      status,
		timeline.KeyResponsible: responsible,
		timeline.KeyCritical:    critical,
	}
}

// ToDomain converts a fixture record into an operation. Unparseable dates are left unset.
func (r OperationRecord) ToDomain() domain.Operation {
	op := domain.Operation{
		ID:           r.ID.String(),
		Name:         r.Name,
		Type:         domain.OperationType(strings.ToUpper(r.Type)),
		Municipality: r.Municipality,
		Status:       domain.OperationStatus(strings.ToUpper(r.Status)),
		Progress:     r.Progress,
		Budget:       r.Budget,
		Units:        r.Units,
		Blockers:     r.Blockers,
		ACO:          r.ACO,
	}
	if t, ok := timeline.ParseDate(r.CreatedAt); ok {
		op.CreatedAt = t
	}
	op.StartDate = optionalDate(r.StartDate)
	op.EndDate = optionalDate(r.EndDate)
	return op
}

func optionalDate(raw string) *time.Time {
	t, ok := timeline.ParseDate(raw)
	if !ok {
		return nil
	}
	return &t
}
