package web

import (
	"context"

	"github.com/a-h/templ"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/service"
)

const appTitle = "OPCOPILOT"

var navLabels = []struct {
	Page  domain.Page
	Label string
}{
	{domain.PageDashboard, "Tableau de bord"},
	{domain.PagePortfolio, "Mon portefeuille"},
	{domain.PageREM, "Suivi REM"},
	{domain.PageBlockers, "Freins actifs"},
	{domain.PagePlanning, "Planning"},
	{domain.PageNewOperation, "Nouvelle opération"},
	{domain.PageQuickAccess, "Accès rapide"},
}

var healthColors = map[domain.HealthLight]string{
	domain.HealthGreen:  "#4CAF50",
	domain.HealthOrange: "#FF9800",
	domain.HealthRed:    "#F44336",
}

// Shell is what the sidebar needs to know about the current user.
type Shell struct {
	User       *domain.User
	Page       domain.Page
	SelectedID string
	Operations []service.OperationSummary
}

// Layout wraps body in the application chrome.
func Layout(title string, shell Shell, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		head(h, title)
		h.raw(`<body><aside class="sidebar">`)
		h.elem("h1", "brand", appTitle)
		if shell.User != nil {
			h.elem("p", "user", shell.User.DisplayName+" · "+shell.User.Sector)
		}
		h.raw(`<nav><ul>`)
		for _, item := range navLabels {
			class := ""
			if item.Page == shell.Page && shell.SelectedID == "" {
				class = "active"
			}
			h.rawf(`<li class="%s"><a href="/?page=%s">`, class, templ.EscapeString(string(item.Page)))
			h.text(item.Label)
			h.raw("</a></li>")
		}
		h.raw(`</ul></nav><h2>Mes opérations</h2><ul class="operations">`)
		for _, op := range shell.Operations {
			class := ""
			if op.ID == shell.SelectedID {
				class = "active"
			}
			h.rawf(`<li class="%s"><span class="dot" style="background:%s"></span><a href="/operations/%s">`,
				class, healthColors[op.Health], templ.EscapeString(op.ID))
			h.text(op.Name)
			h.raw("</a></li>")
		}
		h.raw(`</ul><form method="post" action="/logout"><button type="submit">Déconnexion</button></form></aside>`)
		h.raw(`<main>`)
		h.elem("h1", "title", title)
		h.component(ctx, body)
		h.raw("</main></body></html>")
	})
}

// LoginPage renders the login form with an optional error.
func LoginPage(errMsg string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		head(h, "Connexion")
		h.raw(`<body class="login"><form method="post" action="/login" class="login-form">`)
		h.elem("h1", "brand", appTitle)
		if errMsg != "" {
			h.elem("p", "error", errMsg)
		}
		h.raw(`<label>Identifiant<input type="text" name="login" autocomplete="username" required></label>`)
		h.raw(`<label>Mot de passe<input type="password" name="password" autocomplete="current-password" required></label>`)
		h.raw(`<button type="submit">Se connecter</button></form></body></html>`)
	})
}

// ErrorPage renders a standalone error message.
func ErrorPage(status int, msg string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		head(h, "Erreur")
		h.raw(`<body><main>`)
		h.rawf(`<h1 class="title">Erreur %d</h1>`, status)
		h.elem("p", "error", msg)
		h.raw(`<a href="/">Retour au tableau de bord</a></main></body></html>`)
	})
}

func head(h *htmlWriter, title string) {
	h.raw(`<!DOCTYPE html><html lang="fr"><head><meta charset="utf-8">`)
	h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	h.raw("<title>")
	h.text(title + " - " + appTitle)
	h.raw("</title>")
	h.raw(`<style>` + stylesheet + `</style></head>`)
}

const stylesheet = `body{margin:0;font-family:sans-serif;display:flex;color:#222}` +
	`.sidebar{width:260px;min-height:100vh;background:#1f3a5f;color:#fff;padding:1rem}` +
	`.sidebar a{color:#fff;text-decoration:none}.sidebar li.active{font-weight:bold}` +
	`.dot{display:inline-block;width:10px;height:10px;border-radius:50%;margin-right:6px}` +
	`main{flex:1;padding:1.5rem}table.data{border-collapse:collapse;width:100%}` +
	`table.data td,table.data th{border:1px solid #ddd;padding:4px 8px;text-align:left}` +
	`.kpis{display:flex;gap:1rem}.kpi{flex:1;padding:1rem;border-radius:8px;color:#fff}` +
	`.kpi-blue{background:#1976D2}.kpi-green{background:#388E3C}.kpi-orange{background:#F57C00}.kpi-red{background:#D32F2F}` +
	`.notice{color:#8a6d3b}.error{color:#c62828}.ok{color:#2e7d32}` +
	`body.login{justify-content:center;align-items:center;min-height:100vh}` +
	`.login-form{display:flex;flex-direction:column;gap:.75rem;width:320px}`
