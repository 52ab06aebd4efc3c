package dto

import (
	"time"

	"github.com/opcopilot/opcopilot/internal/domain"
	"github.com/opcopilot/opcopilot/internal/timeline"
)

const dateLayout = "2006-01-02"

// CreateOperationRequest payload. Budget and units are pointers so an
// omitted field can be told apart from zero.
type CreateOperationRequest struct {
	Name         string   `json:"nom" form:"nom"`
	Type         string   `json:"type" form:"type"`
	Municipality string   `json:"commune" form:"commune"`
	Budget       *float64 `json:"budget_total" form:"budget_total"`
	Units        *int     `json:"nb_logements" form:"nb_logements"`
	StartDate    string   `json:"date_debut" form:"date_debut"`
	EndDate      string   `json:"date_fin_prevue" form:"date_fin_prevue"`
	ACO          string   `json:"aco" form:"aco"`
}

// OperationResponse describes an operation.
type OperationResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"nom"`
	Type         domain.OperationType   `json:"type"`
	Municipality string                 `json:"commune"`
	Status       domain.OperationStatus `json:"statut"`
	Progress     float64                `json:"avancement"`
	Budget       float64                `json:"budget_total"`
	Units        int                    `json:"nb_logements"`
	CreatedAt    *string                `json:"date_creation"`
	StartDate    *string                `json:"date_debut"`
	EndDate      *string                `json:"date_fin_prevue"`
	Blockers     int                    `json:"freins_actifs"`
	ACO          string                 `json:"aco"`
	Health       domain.HealthLight     `json:"sante"`
	Phases       []PhaseResponse        `json:"phases,omitempty"`
}

// PhaseResponse describes a normalized phase.
type PhaseResponse struct {
	Name        string             `json:"nom"`
	Start       string             `json:"date_debut_prevue"`
	End         string             `json:"date_fin_prevue"`
	Status      domain.PhaseStatus `json:"statut"`
	Responsible string             `json:"responsable"`
	Critical    bool               `json:"critique"`
}

// ToOperationResponse maps an operation and its phases.
func ToOperationResponse(op *domain.Operation, phases []domain.Phase) OperationResponse {
	resp := OperationResponse{
		ID:           op.ID,
		Name:         op.Name,
		Type:         op.Type,
		Municipality: op.Municipality,
		Status:       op.Status,
		Progress:     op.Progress,
		Budget:       op.Budget,
		Units:        op.Units,
		StartDate:    formatDate(op.StartDate),
		EndDate:      formatDate(op.EndDate),
		Blockers:     op.Blockers,
		ACO:          op.ACO,
		Health:       op.Health(),
	}
	if !op.CreatedAt.IsZero() {
		resp.CreatedAt = formatDate(&op.CreatedAt)
	}
	for _, p := range phases {
		resp.Phases = append(resp.Phases, ToPhaseResponse(p))
	}
	return resp
}

// ToPhaseResponse maps a phase.
func ToPhaseResponse(p domain.Phase) PhaseResponse {
	return PhaseResponse{
		Name:        p.Name,
		Start:       p.Start.Format(dateLayout),
		End:         p.End.Format(dateLayout),
		Status:      p.Status,
		Responsible: p.Responsible,
		Critical:    p.Critical,
	}
}

// TimelineResponse is the laid-out timeline of an operation.
type TimelineResponse struct {
	Title    string                 `json:"title"`
	Message  string                 `json:"message,omitempty"`
	Start    *string                `json:"start,omitempty"`
	End      *string                `json:"end,omitempty"`
	Nodes    []TimelineNodeResponse `json:"nodes"`
	Segments []TimelineSegment      `json:"segments"`
}

// TimelineNodeResponse is one placed phase.
type TimelineNodeResponse struct {
	X           int           `json:"x"`
	Above       bool          `json:"above"`
	Y           float64       `json:"y"`
	Color       string        `json:"color"`
	StatusColor string        `json:"status_color"`
	Label       string        `json:"label"`
	DateBadge   string        `json:"date_badge"`
	Hover       string        `json:"hover"`
	Phase       PhaseResponse `json:"phase"`
}

// TimelineSegment joins two consecutive nodes.
type TimelineSegment struct {
	From     int     `json:"from"`
	To       int     `json:"to"`
	Color    string  `json:"color"`
	MarkerX  float64 `json:"marker_x"`
	MarkerUp bool    `json:"marker_up"`
}

// ToTimelineResponse maps a layout.
func ToTimelineResponse(l timeline.Layout) TimelineResponse {
	resp := TimelineResponse{
		Title:    l.Title,
		Message:  l.Message,
		Nodes:    make([]TimelineNodeResponse, 0, len(l.Nodes)),
		Segments: make([]TimelineSegment, 0, len(l.Segments)),
	}
	if !l.Empty() {
		resp.Start = formatDate(&l.Start)
		resp.End = formatDate(&l.End)
	}
	for _, n := range l.Nodes {
		resp.Nodes = append(resp.Nodes, TimelineNodeResponse{
			X:           n.X,
			Above:       n.Above,
			Y:           n.CircleY,
			Color:       n.Color,
			StatusColor: n.StatusColor,
			Label:       n.Label,
			DateBadge:   n.DateBadge,
			Hover:       n.Hover,
			Phase:       ToPhaseResponse(n.Phase),
		})
	}
	for _, s := range l.Segments {
		resp.Segments = append(resp.Segments, TimelineSegment{
			From:     s.From,
			To:       s.To,
			Color:    s.Color,
			MarkerX:  s.Midpoint,
			MarkerUp: s.MarkerUp,
		})
	}
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
