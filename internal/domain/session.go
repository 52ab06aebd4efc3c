package domain

import "time"

// Page identifies a top-level screen.
type Page string

const (
	PageDashboard    Page = "dashboard"
	PagePortfolio    Page = "portefeuille"
	PageREM          Page = "rem"
	PageBlockers     Page = "freins"
	PagePlanning     Page = "planning"
	PageNewOperation Page = "nouvelle"
	PageQuickAccess  Page = "acces"
)

// Pages lists every routable page.
var Pages = []Page{
	PageDashboard,
	PagePortfolio,
	PageREM,
	PageBlockers,
	PagePlanning,
	PageNewOperation,
	PageQuickAccess,
}

// ResolvePage maps a raw key to a known page, defaulting to the dashboard.
func ResolvePage(raw string) Page {
	for _, p := range Pages {
		if string(p) == raw {
			return p
		}
	}
	return PageDashboard
}

// Session holds per-user navigation state.
type Session struct {
	Login               string    `json:"login"`
	Page                Page      `json:"page"`
	SelectedOperationID string    `json:"selected_operation_id,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}
