package web

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/service"
)

// PageContent renders the body of a top-level page.
func PageContent(view *service.PageView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		switch view.Page {
		case domain.PageDashboard:
			if view.Dashboard != nil {
				h.component(ctx, DashboardContent(view.Dashboard))
			}
		case domain.PagePortfolio, domain.PageBlockers:
			operationsTable(h, view.Operations)
		case domain.PagePlanning:
			deadlinesTable(h, view.Deadlines)
		case domain.PageNewOperation:
			newOperationForm(h, view.Types, "")
		}
		notice(h, view.Message)
	})
}

// DashboardContent renders KPI cards, activity and alerts.
func DashboardContent(d *service.Dashboard) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="kpis">`)
		for _, kpi := range d.KPIs {
			h.rawf(`<a class="kpi %s" href="/?page=%s">`, templ.EscapeString(kpi.Color), templ.EscapeString(string(kpi.Page)))
			h.elem("strong", "kpi-value", kpi.Value)
			h.elem("span", "kpi-label", kpi.Label)
			h.raw("</a>")
		}
		h.raw("</section>")

		h.raw(`<section class="activity">`)
		h.elem("h2", "", "Activité mensuelle")
		rows := make([][]string, 0, len(d.Activity))
		for _, p := range d.Activity {
			rows = append(rows, []string{p.Month, strconv.Itoa(p.Started), strconv.Itoa(p.Completed), strconv.Itoa(p.Amendments)})
		}
		table(h, []string{"Mois", "Démarrées", "Livrées", "Avenants"}, rows)
		h.raw("</section>")

		h.raw(`<section class="alerts">`)
		h.elem("h2", "", "Alertes")
		h.raw("<ul>")
		for _, a := range d.Alerts {
			h.rawf(`<li class="alert alert-%s">`, templ.EscapeString(a.Level))
			if a.OperationID != "" {
				h.rawf(`<a href="/operations/%s">`, templ.EscapeString(a.OperationID))
				h.text(a.Message)
				h.raw("</a>")
			} else {
				h.text(a.Message)
			}
			h.raw("</li>")
		}
		h.raw("</ul></section>")
		notice(h, d.Notice)
	})
}

func operationsTable(h *htmlWriter, ops []service.OperationSummary) {
	if len(ops) == 0 {
		return
	}
	h.raw(`<table class="data"><thead><tr>`)
	for _, col := range []string{"", "Opération", "Type", "Commune", "Statut", "Avancement", "Budget", "Logements", "Freins"} {
		h.elem("th", "", col)
	}
	h.raw("</tr></thead><tbody>")
	for _, op := range ops {
		h.rawf(`<tr><td><span class="dot" style="background:%s" title="%s"></span></td>`,
			healthColors[op.Health], templ.EscapeString(string(op.Health)))
		h.rawf(`<td><a href="/operations/%s">`, templ.EscapeString(op.ID))
		h.text(op.Name)
		h.raw("</a></td>")
		for _, cell := range []string{
			string(op.Type),
			op.Municipality,
			string(op.Status),
			percent(op.Progress),
			euros(op.Budget),
			strconv.Itoa(op.Units),
			strconv.Itoa(op.Blockers),
		} {
			h.elem("td", "", cell)
		}
		h.raw("</tr>")
	}
	h.raw("</tbody></table>")
}

func deadlinesTable(h *htmlWriter, deadlines []service.Deadline) {
	if len(deadlines) == 0 {
		return
	}
	rows := make([][]string, 0, len(deadlines))
	for _, d := range deadlines {
		kind := "Début"
		if d.Kind == "fin" {
			kind = "Fin"
		}
		flag := ""
		if d.Critical {
			flag = "Critique"
		}
		rows = append(rows, []string{d.Date.Format("02/01/2006"), d.OperationName, d.Phase, kind, string(d.Status), flag})
	}
	table(h, []string{"Date", "Opération", "Phase", "Échéance", "Statut", ""}, rows)
}

func newOperationForm(h *htmlWriter, types []service.TypeOption, errMsg string) {
	if errMsg != "" {
		h.elem("p", "error", errMsg)
	}
	h.raw(`<form method="post" action="/operations" class="new-operation">`)
	h.raw(`<label>Nom<input type="text" name="nom" required></label>`)
	h.raw(`<label>Type<select name="type">`)
	for _, t := range types {
		h.rawf(`<option value="%s">`, templ.EscapeString(string(t.Type)))
		h.text(fmt.Sprintf("%s (%d phases)", t.Label, t.Phases))
		h.raw("</option>")
	}
	h.raw(`</select></label>`)
	h.raw(`<label>Commune<input type="text" name="commune" required></label>`)
	h.raw(`<label>Budget total<input type="number" name="budget_total" min="0" step="1000" required></label>`)
	h.raw(`<label>Nombre de logements<input type="number" name="nb_logements" min="0" required></label>`)
	h.raw(`<label>Date de début<input type="date" name="date_debut"></label>`)
	h.raw(`<label>Date de fin prévue<input type="date" name="date_fin_prevue"></label>`)
	h.raw(`<button type="submit">Créer l'opération</button></form>`)
}

// NewOperationContent renders the creation form after a rejected submission.
func NewOperationContent(types []service.TypeOption, errMsg string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		newOperationForm(h, types, errMsg)
	})
}
