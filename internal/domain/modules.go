package domain

// Records below mirror the per-operation slices of the demo data file, so they
// carry their fixture keys as JSON tags.

// REMEntry is one quarter of financial tracking (REM and works spending).
type REMEntry struct {
	Quarter           string  `json:"trimestre"`
	REMProjected      float64 `json:"rem_projetee"`
	REMActual         float64 `json:"rem_realisee"`
	REMGap            float64 `json:"ecart_rem"`
	REMProgress       float64 `json:"avancement_rem"`
	SpendingProjected float64 `json:"depenses_projetees"`
	SpendingInvoiced  float64 `json:"depenses_facturees"`
	SpendingGap       float64 `json:"ecart_depenses"`
	WorksProgress     float64 `json:"avancement_travaux"`
}

// AmendmentStatus enumerates budget amendment states.
type AmendmentStatus string

const (
	AmendmentStatusDraft     AmendmentStatus = "BROUILLON"
	AmendmentStatusPending   AmendmentStatus = "EN_VALIDATION"
	AmendmentStatusValidated AmendmentStatus = "VALIDE"
)

// Amendment is a budget/delay change to an operation's contract.
type Amendment struct {
	ID           string          `json:"id,omitempty"`
	Number       string          `json:"numero"`
	Date         string          `json:"date"`
	Reason       string          `json:"motif"`
	BudgetImpact float64         `json:"impact_budget"`
	DelayImpact  int             `json:"impact_delai"`
	Status       AmendmentStatus `json:"statut"`
	Description  string          `json:"description,omitempty"`
}

// NoticeStatus enumerates formal notice states.
type NoticeStatus string

const (
	NoticeStatusSent     NoticeStatus = "ENVOYEE"
	NoticeStatusPending  NoticeStatus = "EN_ATTENTE"
	NoticeStatusResolved NoticeStatus = "LEVEE"
)

// FormalNotice is a formal notice (mise en demeure) sent to a contractor.
type FormalNotice struct {
	ID              string       `json:"id,omitempty"`
	Reference       string       `json:"reference"`
	Type            string       `json:"type,omitempty"`
	Recipient       string       `json:"destinataire"`
	SentDate        string       `json:"date_envoi"`
	ConformityDelay int          `json:"delai_conformite"`
	Status          NoticeStatus `json:"statut"`
	Reasons         []string     `json:"motifs,omitempty"`
	Details         string       `json:"details,omitempty"`
}

// UtilityProvider names a utility network operator workflow.
type UtilityProvider string

const (
	UtilityEDF   UtilityProvider = "EDF"
	UtilityWater UtilityProvider = "EAU"
	UtilityFiber UtilityProvider = "FIBRE"
)

// UtilityProviders lists providers in display order.
var UtilityProviders = []UtilityProvider{UtilityEDF, UtilityWater, UtilityFiber}

// UtilityStep is one step of a utility connection workflow.
type UtilityStep struct {
	Name   string `json:"nom"`
	Status string `json:"statut"`
	Date   string `json:"date,omitempty"`
}

// UtilityWorkflow groups the steps for one provider.
type UtilityWorkflow struct {
	Steps []UtilityStep `json:"etapes"`
}

// SettlementLot is one contract lot of the final cost settlement.
type SettlementLot struct {
	Name            string  `json:"nom"`
	InitialContract float64 `json:"marche_initial"`
	ActualQuantity  float64 `json:"quantites_reelles"`
	PlusMinusValue  float64 `json:"plus_moins_value"`
	Penalties       float64 `json:"penalites"`
	FinalAmount     float64 `json:"montant_final"`
}

// SettlementSummary aggregates the settlement.
type SettlementSummary struct {
	InitialAmount   float64 `json:"montant_initial"`
	PlusMinusValues float64 `json:"plus_moins_values"`
	Penalties       float64 `json:"penalites"`
	FinalAmount     float64 `json:"montant_final"`
	GapPercent      float64 `json:"ecart_pourcentage"`
}

// Settlement is the final cost settlement (DGD) of an operation.
type Settlement struct {
	Lots    []SettlementLot    `json:"lots"`
	Summary *SettlementSummary `json:"synthese,omitempty"`
}

// WarrantyClaim is a tenant claim raised during the completion warranty year.
type WarrantyClaim struct {
	ID                string `json:"id,omitempty"`
	Date              string `json:"date"`
	Unit              string `json:"logement"`
	Type              string `json:"type"`
	Description       string `json:"description"`
	Status            string `json:"statut"`
	InterventionDelay int    `json:"delai_intervention"`
	Tenant            string `json:"locataire,omitempty"`
	Urgency           string `json:"urgence,omitempty"`
}

// ChecklistItem is one closure prerequisite.
type ChecklistItem struct {
	Label       string `json:"item"`
	Done        bool   `json:"statut"`
	Responsible string `json:"responsable"`
}

// WorkflowStep is a step of a fixed validation workflow.
type WorkflowStep struct {
	Name        string `json:"nom"`
	Responsible string `json:"responsable"`
	State       string `json:"statut"`
}

// Alert is a dashboard alert.
type Alert struct {
	Level       string `json:"niveau"`
	Message     string `json:"message"`
	OperationID string `json:"operation_id,omitempty"`
}

// ActivityPoint is one month of the dashboard activity series.
type ActivityPoint struct {
	Month      string `json:"mois"`
	Started    int    `json:"demarrees"`
	Completed  int    `json:"livrees"`
	Amendments int    `json:"avenants"`
}

// KPIs are aggregate dashboard figures for a portfolio.
type KPIs struct {
	ActiveOperations int     `json:"operations_actives"`
	REMPortfolio     float64 `json:"rem_portefeuille"`
	ActiveBlockers   int     `json:"freins_actifs"`
	WeekDeadlines    int     `json:"echeances_semaine"`
}
