package web

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/opcopilot/opcopilot/internal/service"
)

func operationAction(operationID, path string) string {
	return "/operations/" + url.PathEscape(operationID) + path
}

func formError(h *htmlWriter, msg string) {
	if msg != "" {
		h.elem("p", "error", msg)
	}
}

func openForm(h *htmlWriter, action, class string) {
	h.rawf(`<form method="post" action="%s" class="%s">`, templ.EscapeString(action), class)
}

// button posts an empty form to action.
func button(h *htmlWriter, action, label string) {
	openForm(h, action, "action")
	h.raw(`<button type="submit">`)
	h.text(label)
	h.raw(`</button></form>`)
}

func selectField(h *htmlWriter, label, name string, options []service.Option) {
	h.raw("<label>")
	h.text(label)
	h.rawf(`<select name="%s">`, name)
	for _, o := range options {
		h.rawf(`<option value="%s">`, templ.EscapeString(o.Code))
		h.text(o.Label)
		h.raw("</option>")
	}
	h.raw("</select></label>")
}

func plainOptions(values []string) []service.Option {
	out := make([]service.Option, 0, len(values))
	for _, v := range values {
		out = append(out, service.Option{Code: v, Label: v})
	}
	return out
}

func textField(h *htmlWriter, label, name string, required bool) {
	h.raw("<label>")
	h.text(label)
	if required {
		h.rawf(`<input type="text" name="%s" required></label>`, name)
		return
	}
	h.rawf(`<input type="text" name="%s"></label>`, name)
}

func textArea(h *htmlWriter, label, name string) {
	h.raw("<label>")
	h.text(label)
	h.rawf(`<textarea name="%s"></textarea></label>`, name)
}

func amendmentForm(h *htmlWriter, operationID string, reasons []string) {
	openForm(h, operationAction(operationID, "/amendments"), "module-form")
	h.elem("h3", "", "Nouvel avenant")
	selectField(h, "Motif", "motif", plainOptions(reasons))
	h.raw(`<label>Impact budget (€)<input type="number" name="impact_budget" step="100" value="0"></label>`)
	h.raw(`<label>Impact délai (jours)<input type="number" name="impact_delai" min="0" value="0"></label>`)
	textArea(h, "Description", "description")
	h.raw(`<button type="submit">Créer l'avenant</button></form>`)
}

func noticeForm(h *htmlWriter, operationID string, types []service.Option, reasons []string) {
	openForm(h, operationAction(operationID, "/notices"), "module-form")
	h.elem("h3", "", "Générer une mise en demeure")
	selectField(h, "Type", "type", types)
	textField(h, "Destinataire", "destinataire", true)
	h.raw(`<fieldset class="reasons"><legend>Motifs</legend>`)
	for _, r := range reasons {
		h.rawf(`<label><input type="checkbox" name="motifs" value="%s">`, templ.EscapeString(r))
		h.text(r)
		h.raw("</label>")
	}
	h.raw("</fieldset>")
	h.rawf(`<label>Délai de mise en conformité (jours)<input type="number" name="delai_conformite" min="%d" max="%d" value="%d"></label>`,
		service.MinConformityDelay, service.MaxConformityDelay, service.DefaultConformityDelay)
	textArea(h, "Détails", "details")
	h.raw(`<button type="submit">Générer la MED</button></form>`)
}

func claimForm(h *htmlWriter, operationID string, types, urgencies []string) {
	openForm(h, operationAction(operationID, "/claims"), "module-form")
	h.elem("h3", "", "Nouvelle réclamation")
	textField(h, "Logement", "logement", true)
	textField(h, "Locataire", "locataire", true)
	selectField(h, "Type", "type", plainOptions(types))
	selectField(h, "Urgence", "urgence", plainOptions(urgencies))
	textArea(h, "Description", "description")
	h.raw(`<button type="submit">Enregistrer la réclamation</button></form>`)
}

func checklistAction(operationID string, index int) string {
	return operationAction(operationID, "/closure/items/"+strconv.Itoa(index))
}
