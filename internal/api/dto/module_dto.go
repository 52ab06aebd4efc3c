package dto

// SelectPageRequest payload.
type SelectPageRequest struct {
	Page string `json:"page"`
}

// SelectOperationRequest payload. An empty id clears the selection.
type SelectOperationRequest struct {
	OperationID string `json:"operation_id"`
}

// CreateAmendmentRequest payload.
type CreateAmendmentRequest struct {
	Reason       string  `json:"motif" form:"motif"`
	BudgetImpact float64 `json:"impact_budget" form:"impact_budget"`
	DelayImpact  int     `json:"impact_delai" form:"impact_delai"`
	Description  string  `json:"description" form:"description"`
}

// CreateNoticeRequest payload.
type CreateNoticeRequest struct {
	Type            string   `json:"type" form:"type"`
	Recipient       string   `json:"destinataire" form:"destinataire"`
	Reasons         []string `json:"motifs" form:"motifs"`
	ConformityDelay int      `json:"delai_conformite" form:"delai_conformite"`
	Details         string   `json:"details" form:"details"`
}

// CreateClaimRequest payload.
type CreateClaimRequest struct {
	Unit        string `json:"logement" form:"logement"`
	Tenant      string `json:"locataire" form:"locataire"`
	Type        string `json:"type" form:"type"`
	Urgency     string `json:"urgence" form:"urgence"`
	Description string `json:"description" form:"description"`
}
