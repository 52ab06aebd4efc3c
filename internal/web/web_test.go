package web

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/service"
	"github.com/opcopilot/opcopilot/internal/timeline"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestLoginPageEscapesError(t *testing.T) {
	out := render(t, LoginPage(`<script>alert(1)</script>`))
	assert.Contains(t, out, `action="/login"`)
	assert.Contains(t, out, `name="password"`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestLayoutSidebar(t *testing.T) {
	shell := Shell{
		User: &domain.User{Login: "aco1", DisplayName: "Marie Dupont", Sector: "Nord"},
		Page: domain.PagePortfolio,
		Operations: []service.OperationSummary{
			{ID: "1", Name: "Les Jardins", Health: domain.HealthRed},
		},
	}
	out := render(t, Layout("Mon Portefeuille", shell, PageContent(&service.PageView{Page: domain.PagePortfolio, Message: "vide"})))

	assert.Contains(t, out, "Marie Dupont")
	assert.Contains(t, out, `href="/operations/1"`)
	assert.Contains(t, out, healthColors[domain.HealthRed])
	assert.Contains(t, out, `<li class="active"><a href="/?page=portefeuille">`)
	assert.Contains(t, out, `action="/logout"`)
	assert.Contains(t, out, "vide")
}

func TestDashboardContent(t *testing.T) {
	d := &service.Dashboard{
		KPIs:     []service.KPICard{{Label: "Opérations actives", Value: "23", Color: "kpi-blue", Page: domain.PagePortfolio}},
		Activity: []domain.ActivityPoint{{Month: "Jan", Started: 2, Completed: 1}},
		Alerts:   []domain.Alert{{Level: "critique", Message: "Retard", OperationID: "3"}},
	}
	out := render(t, DashboardContent(d))

	assert.Contains(t, out, `href="/?page=portefeuille"`)
	assert.Contains(t, out, ">23<")
	assert.Contains(t, out, "<td>Jan</td>")
	assert.Contains(t, out, `href="/operations/3"`)
}

func TestPageContentNewOperation(t *testing.T) {
	view := &service.PageView{
		Page:  domain.PageNewOperation,
		Types: []service.TypeOption{{Type: domain.OperationTypeVEFA, Label: "VEFA", Phases: 4}},
	}
	out := render(t, PageContent(view))
	assert.Contains(t, out, `action="/operations"`)
	assert.Contains(t, out, `<option value="VEFA">VEFA (4 phases)</option>`)
}

func TestTimelineEmpty(t *testing.T) {
	out := render(t, Timeline(timeline.Build("Vide", nil)))
	assert.Contains(t, out, timeline.EmptyMessage)
	assert.NotContains(t, out, "<svg")
}

func TestTimelineDrawsNodesAndSegments(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	phases := []domain.Phase{
		{Name: "Montage", Start: start, End: start.AddDate(0, 1, 0), Status: domain.PhaseStatusValidee},
		{Name: "Études", Start: start.AddDate(0, 1, 0), End: start.AddDate(0, 2, 0), Status: domain.PhaseStatusEnCours},
		{Name: "Travaux & réception", Start: start.AddDate(0, 2, 0), End: start.AddDate(0, 6, 0)},
	}
	out := render(t, Timeline(timeline.Build("Les Jardins", phases)))

	assert.Contains(t, out, "Timeline - Les Jardins")
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Equal(t, 2, strings.Count(out, `class="segment"`))
	assert.Equal(t, 2, strings.Count(out, `class="marker"`))
	assert.Contains(t, out, "PHASE 01")
	assert.Contains(t, out, "Travaux &amp; réception")
	assert.Contains(t, out, "01/24")
	assert.Contains(t, out, "01/01/2024 → 01/07/2024")
}

func TestOperationPageSections(t *testing.T) {
	op := &domain.Operation{ID: "1", Name: "Les Jardins", Type: domain.OperationTypeOPP, Budget: 2450000, Units: 24}
	v := OperationView{
		Operation: op,
		Timeline:  timeline.Build(op.Name, nil),
		REM:       &service.REMReport{Rows: []domain.REMEntry{{Quarter: "T1 2024", REMGap: 3000}}, MeanGap: 3000},
		Closure: &service.ClosureReport{
			Checklist: []domain.ChecklistItem{{Label: "PV de réception", Done: true, Responsible: "MOE"}},
			Ready:     true,
		},
	}
	out := render(t, OperationPage(v))

	assert.Contains(t, out, "2 450 000 €")
	assert.Contains(t, out, `id="rem"`)
	assert.Contains(t, out, "incohérence")
	assert.Contains(t, out, "Prête pour la clôture")
	assert.NotContains(t, out, `id="avenants"`)
}

func TestOperationPageForms(t *testing.T) {
	op := &domain.Operation{ID: "7", Name: "Les Jardins", Type: domain.OperationTypeOPP}
	v := OperationView{
		Operation:  op,
		Timeline:   timeline.Build(op.Name, nil),
		Amendments: &service.AmendmentReport{Reasons: service.AmendmentReasons},
		Notices:    &service.NoticeReport{Pending: 1, Types: service.NoticeTypes, Reasons: service.NoticeReasons},
		Utilities: &service.UtilityReport{Providers: []service.UtilityView{
			{Provider: domain.UtilityEDF, Title: "Processus EDF"},
		}},
		Claims: &service.ClaimReport{Types: service.ClaimTypes, Urgencies: service.ClaimUrgencies},
		Closure: &service.ClosureReport{Checklist: []domain.ChecklistItem{
			{Label: "Toutes phases validées", Done: true},
			{Label: "Bilan <rédigé>"},
		}},
		Errors: map[string]string{SectionClaims: "Champs obligatoires : logement"},
	}
	out := render(t, OperationPage(v))

	assert.Contains(t, out, `action="/operations/7/amendments"`)
	assert.Contains(t, out, `<option value="Plus-value travaux">`)
	assert.Contains(t, out, `action="/operations/7/notices"`)
	assert.Contains(t, out, `name="motifs" value="Malfaçons constatées"`)
	assert.Contains(t, out, `action="/operations/7/notices/remind"`)
	assert.Contains(t, out, `action="/operations/7/utilities/EDF/remind"`)
	assert.Contains(t, out, "Relancer EDF")
	assert.Contains(t, out, `action="/operations/7/claims"`)
	assert.Contains(t, out, "Champs obligatoires : logement")
	assert.Contains(t, out, "Bilan &lt;rédigé&gt;")
	assert.Contains(t, out, `action="/operations/7/closure/items/1"`)
	assert.NotContains(t, out, `action="/operations/7/closure/items/0"`)
	assert.NotContains(t, out, `action="/operations/7/closure"`)

	v.Closure = &service.ClosureReport{Ready: true}
	out = render(t, OperationPage(v))
	assert.Contains(t, out, `action="/operations/7/closure"`)
	assert.Contains(t, out, "Clôturer l&#39;opération")
}

func TestEuros(t *testing.T) {
	assert.Equal(t, "0 €", euros(0))
	assert.Equal(t, "999 €", euros(999))
	assert.Equal(t, "1 000 €", euros(1000))
	assert.Equal(t, "-25 000 €", euros(-25000))
}
