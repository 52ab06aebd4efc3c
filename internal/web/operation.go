package web

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/service"
	"github.com/opcopilot/opcopilot/internal/timeline"
)

// OperationView gathers everything shown on an operation page. Nil reports
// are skipped. Errors holds a form error per section id.
type OperationView struct {
	Operation  *domain.Operation
	Timeline   timeline.Layout
	REM        *service.REMReport
	Amendments *service.AmendmentReport
	Notices    *service.NoticeReport
	Utilities  *service.UtilityReport
	Settlement *service.SettlementReport
	Claims     *service.ClaimReport
	Closure    *service.ClosureReport
	Errors     map[string]string
}

// Section ids of the operation page, also used as URL fragments.
const (
	SectionAmendments = "avenants"
	SectionNotices    = "med"
	SectionUtilities  = "concessionnaires"
	SectionClaims     = "gpa"
	SectionClosure    = "cloture"
)

// OperationPage renders the header, timeline and module sections of an operation.
func OperationPage(v OperationView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		op := v.Operation
		h.raw(`<section class="operation-header">`)
		h.rawf(`<span class="dot" style="background:%s"></span>`, healthColors[op.Health()])
		h.elem("span", "type", string(op.Type))
		h.elem("span", "municipality", op.Municipality)
		h.elem("span", "status", string(op.Status))
		h.elem("span", "progress", percent(op.Progress))
		h.elem("span", "budget", euros(op.Budget))
		h.elem("span", "units", strconv.Itoa(op.Units)+" logements")
		h.raw("</section>")

		h.component(ctx, Timeline(v.Timeline))

		if v.REM != nil {
			remSection(h, v.REM)
		}
		if v.Amendments != nil {
			amendmentSection(h, op.ID, v.Amendments, v.Errors[SectionAmendments])
		}
		if v.Notices != nil {
			noticeSection(h, op.ID, v.Notices, v.Errors[SectionNotices])
		}
		if v.Utilities != nil {
			utilitySection(h, op.ID, v.Utilities, v.Errors[SectionUtilities])
		}
		if v.Settlement != nil {
			settlementSection(h, v.Settlement)
		}
		if v.Claims != nil {
			claimSection(h, op.ID, v.Claims, v.Errors[SectionClaims])
		}
		if v.Closure != nil {
			closureSection(h, op.ID, v.Closure, v.Errors[SectionClosure])
		}
	})
}

func section(h *htmlWriter, id, title string, body func()) {
	h.rawf(`<section class="module" id="%s">`, id)
	h.elem("h2", "", title)
	body()
	h.raw("</section>")
}

func remSection(h *htmlWriter, r *service.REMReport) {
	section(h, "rem", "Suivi REM", func() {
		rows := make([][]string, 0, len(r.Rows))
		for _, e := range r.Rows {
			rows = append(rows, []string{e.Quarter, euros(e.REMProjected), euros(e.REMActual), euros(e.REMGap), percent(e.REMProgress), percent(e.WorksProgress)})
		}
		table(h, []string{"Trimestre", "REM projetée", "REM réalisée", "Écart", "Avancement REM", "Avancement travaux"}, rows)
		if len(r.Rows) > 0 {
			if r.Coherent {
				h.elem("p", "ok", "Écart moyen "+euros(r.MeanGap)+" : cohérent")
			} else {
				h.elem("p", "error", "Écart moyen "+euros(r.MeanGap)+" : incohérence REM / travaux")
			}
			if r.Late {
				h.elem("p", "error", "Avancement REM en retard")
			}
		}
		notice(h, r.Notice)
	})
}

func amendmentSection(h *htmlWriter, operationID string, r *service.AmendmentReport, errMsg string) {
	section(h, SectionAmendments, "Avenants", func() {
		rows := make([][]string, 0, len(r.Rows))
		for _, a := range r.Rows {
			rows = append(rows, []string{a.Number, a.Date, a.Reason, euros(a.BudgetImpact), strconv.Itoa(a.DelayImpact) + " j", string(a.Status)})
		}
		table(h, []string{"N°", "Date", "Motif", "Impact budget", "Impact délai", "Statut"}, rows)
		h.elem("p", "totals", strconv.Itoa(r.Count)+" avenant(s) · "+euros(r.TotalBudgetImpact)+" ("+percent(r.BudgetImpactPercent)+") · "+
			strconv.Itoa(r.TotalDelayImpact)+" j ("+percent(r.DelayImpactPercent)+")")
		notice(h, r.Notice)
		formError(h, errMsg)
		amendmentForm(h, operationID, r.Reasons)
	})
}

func noticeSection(h *htmlWriter, operationID string, r *service.NoticeReport, errMsg string) {
	section(h, SectionNotices, "Mises en demeure", func() {
		rows := make([][]string, 0, len(r.Rows))
		for _, n := range r.Rows {
			rows = append(rows, []string{n.Reference, n.Recipient, n.SentDate, strconv.Itoa(n.ConformityDelay) + " j", string(n.Status)})
		}
		table(h, []string{"Référence", "Destinataire", "Envoi", "Délai", "Statut"}, rows)
		h.elem("p", "totals", strconv.Itoa(r.Pending)+" en attente")
		if r.Pending > 0 {
			button(h, operationAction(operationID, "/notices/remind"), "Relancer MED")
		}
		notice(h, r.Notice)
		formError(h, errMsg)
		noticeForm(h, operationID, r.Types, r.Reasons)
	})
}

func utilitySection(h *htmlWriter, operationID string, r *service.UtilityReport, errMsg string) {
	section(h, SectionUtilities, "Concessionnaires", func() {
		for _, p := range r.Providers {
			h.elem("h3", "", p.Title)
			rows := make([][]string, 0, len(p.Steps))
			for _, s := range p.Steps {
				rows = append(rows, []string{s.Name, s.Label, s.Date})
			}
			table(h, []string{"Étape", "Statut", "Date"}, rows)
			button(h, operationAction(operationID, "/utilities/"+string(p.Provider)+"/remind"), "Relancer "+string(p.Provider))
		}
		notice(h, r.Notice)
		formError(h, errMsg)
	})
}

func settlementSection(h *htmlWriter, r *service.SettlementReport) {
	section(h, "dgd", "Décompte général définitif", func() {
		if !r.Applicable {
			notice(h, r.Notice)
			return
		}
		rows := make([][]string, 0, len(r.Lots))
		for _, l := range r.Lots {
			rows = append(rows, []string{l.Name, euros(l.InitialContract), euros(l.PlusMinusValue), euros(l.Penalties), euros(l.FinalAmount)})
		}
		table(h, []string{"Lot", "Marché initial", "Plus/moins-value", "Pénalités", "Montant final"}, rows)
		if r.Summary != nil {
			h.elem("p", "totals", "Montant final "+euros(r.Summary.FinalAmount)+" · écart "+percent(r.Summary.GapPercent))
		}
		steps := make([]string, 0, len(r.Workflow))
		for _, s := range r.Workflow {
			steps = append(steps, s.Name+" ("+s.State+")")
		}
		h.elem("p", "workflow", strings.Join(steps, " → "))
		notice(h, r.Notice)
	})
}

func claimSection(h *htmlWriter, operationID string, r *service.ClaimReport, errMsg string) {
	section(h, SectionClaims, "Garantie de parfait achèvement", func() {
		rows := make([][]string, 0, len(r.Rows))
		for _, c := range r.Rows {
			rows = append(rows, []string{c.Date, c.Unit, c.Type, c.Description, c.Status})
		}
		table(h, []string{"Date", "Logement", "Type", "Description", "Statut"}, rows)
		types := make([]string, 0, len(r.ByType))
		for t := range r.ByType {
			types = append(types, t)
		}
		sort.Strings(types)
		parts := make([]string, 0, len(types))
		for _, t := range types {
			parts = append(parts, t+" : "+strconv.Itoa(r.ByType[t]))
		}
		if len(parts) > 0 {
			h.elem("p", "totals", strings.Join(parts, " · "))
		}
		notice(h, r.Notice)
		formError(h, errMsg)
		claimForm(h, operationID, r.Types, r.Urgencies)
	})
}

func closureSection(h *htmlWriter, operationID string, r *service.ClosureReport, errMsg string) {
	section(h, SectionClosure, "Clôture", func() {
		h.raw(`<ul class="checklist">`)
		for i, item := range r.Checklist {
			mark := "☐"
			if item.Done {
				mark = "☑"
			}
			h.raw("<li>")
			h.text(mark + " " + item.Label + " (" + item.Responsible + ")")
			if !item.Done && !r.Closed {
				button(h, checklistAction(operationID, i), "Valider")
			}
			h.raw("</li>")
		}
		h.raw("</ul>")
		switch {
		case r.Closed:
			h.elem("p", "ok", "Opération clôturée")
		case r.Ready:
			h.elem("p", "ok", "Prête pour la clôture")
			button(h, operationAction(operationID, "/closure"), "Clôturer l'opération")
		default:
			h.elem("p", "notice", "Prérequis de clôture incomplets")
		}
		b := r.Balance
		h.elem("p", "totals", "Budget "+euros(b.InitialBudget)+" → "+euros(b.FinalBudget)+" ("+percent(b.BudgetGapPercent)+") · durée "+
			strconv.Itoa(b.PlannedMonths)+" → "+strconv.Itoa(b.ActualMonths)+" mois")
		notice(h, r.Notice)
		formError(h, errMsg)
	})
}
