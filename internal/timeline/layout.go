package timeline

import (
	"fmt"
	"time"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// EmptyMessage is shown when an operation has no phase to draw.
const EmptyMessage = "Aucune phase disponible pour cette opération"

// Palette colors nodes and segments round-robin by index.
var Palette = []string{
	"#FFD54F",
	"#FF9800",
	"#F44336",
	"#E91E63",
	"#673AB7",
	"#2E7D32",
}

var statusColors = map[domain.PhaseStatus]string{
	domain.PhaseStatusValidee:           "#4CAF50",
	domain.PhaseStatusEnCours:           "#2196F3",
	domain.PhaseStatusEnAttente:         "#FFC107",
	domain.PhaseStatusRetard:            "#F44336",
	domain.PhaseStatusCritique:          "#E91E63",
	domain.PhaseStatusNonDemarree:       "#9E9E9E",
	domain.PhaseStatusValidationRequise: "#FF9800",
	domain.PhaseStatusEnRevision:        "#673AB7",
}

// DefaultStatusColor is used for statuses outside the known set.
const DefaultStatusColor = "#0066cc"

// Vertical offsets, in timeline units, relative to the bar at y=0.
const (
	markerOffset = 0.15
	circleOffset = 0.8
	titleOffset  = 1.2
	descOffset   = 1.4
)

// StatusColor returns the display color for a phase status.
func StatusColor(status domain.PhaseStatus) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return DefaultStatusColor
}

// Node is one phase placed on the timeline.
type Node struct {
	Index       int
	X           int
	Above       bool
	CircleY     float64
	ConnectorY  float64
	TitleY      float64
	DescY       float64
	Color       string
	StatusColor string
	Label       string
	DateBadge   string
	Hover       string
	Phase       domain.Phase
}

// Segment joins two consecutive nodes on the bar.
type Segment struct {
	From     int
	To       int
	Color    string
	Midpoint float64
	MarkerY  float64
	MarkerUp bool
}

// Layout is the drawable form of an operation's timeline.
type Layout struct {
	Title    string
	Message  string
	Nodes    []Node
	Segments []Segment
	Start    time.Time
	End      time.Time
}

// Empty reports whether there is nothing to draw.
func (l Layout) Empty() bool {
	return len(l.Nodes) == 0
}

// XRange returns the horizontal range covering every node with half a slot of margin.
func (l Layout) XRange() (float64, float64) {
	return -0.5, float64(len(l.Nodes)) - 0.5
}

// Build places normalized phases at equally spaced positions. Spacing follows
// the index, not elapsed time; even indexes sit above the bar, odd below.
func Build(operationName string, phases []domain.Phase) Layout {
	if operationName == "" {
		operationName = "Opération"
	}
	layout := Layout{Title: "Timeline - " + operationName}
	if len(phases) == 0 {
		layout.Message = EmptyMessage
		return layout
	}

	layout.Start = phases[0].Start
	layout.End = phases[0].End
	for _, p := range phases[1:] {
		if p.Start.Before(layout.Start) {
			layout.Start = p.Start
		}
		if p.End.After(layout.End) {
			layout.End = p.End
		}
	}

	for i := 0; i < len(phases)-1; i++ {
		up := i%2 == 0
		markerY := markerOffset
		if !up {
			markerY = -markerOffset
		}
		layout.Segments = append(layout.Segments, Segment{
			From:     i,
			To:       i + 1,
			Color:    Palette[i%len(Palette)],
			Midpoint: float64(i) + 0.5,
			MarkerY:  markerY,
			MarkerUp: up,
		})
	}

	layout.Nodes = make([]Node, 0, len(phases))
	for i, p := range phases {
		above := i%2 == 0
		sign := 1.0
		if !above {
			sign = -1.0
		}
		layout.Nodes = append(layout.Nodes, Node{
			Index:       i,
			X:           i,
			Above:       above,
			CircleY:     sign * circleOffset,
			ConnectorY:  sign * markerOffset,
			TitleY:      sign * titleOffset,
			DescY:       sign * descOffset,
			Color:       Palette[i%len(Palette)],
			StatusColor: StatusColor(p.Status),
			Label:       fmt.Sprintf("PHASE %02d", i+1),
			DateBadge:   p.Start.Format("01/06"),
			Hover:       fmt.Sprintf("Phase %d - %s - Date: %s", i+1, p.Name, p.Start.Format("02/01/2006")),
			Phase:       p,
		})
	}
	return layout
}
