// Package timeline turns raw phase records into validated phases and lays them
// out on an equally spaced horizontal timeline.
package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// PhaseSpanDays is the default length of a phase and the cadence used to chain
// phases that carry no dates.
const PhaseSpanDays = 30

// Raw phase record keys.
const (
	KeyName        = "nom"
	KeyStart       = "date_debut_prevue"
	KeyEnd         = "date_fin_prevue"
	KeyStatus      = "statut"
	KeyResponsible = "responsable"
	KeyCritical    = "critique"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// ParseDate parses the date formats found in fixture files.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize validates raw phase records against anchor.
//
// Entries that are not JSON objects are dropped. A missing or unparseable start
// becomes anchor + index*30 days, a missing end becomes start + 30 days, and an
// end before its start is moved to start + 30 days. index is the entry's
// position in raw.
func Normalize(raw []any, anchor time.Time) []domain.Phase {
	phases := make([]domain.Phase, 0, len(raw))
	for i, entry := range raw {
		record, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		start, ok := dateField(record, KeyStart)
		if !ok {
			start = anchor.AddDate(0, 0, i*PhaseSpanDays)
		}
		end, ok := dateField(record, KeyEnd)
		if !ok || end.Before(start) {
			end = start.AddDate(0, 0, PhaseSpanDays)
		}

		status := domain.PhaseStatus(stringField(record, KeyStatus))
		if status == "" {
			status = domain.PhaseStatusNonDemarree
		}
		name := stringField(record, KeyName)
		if name == "" {
			name = fmt.Sprintf("Phase %d", i+1)
		}

		phases = append(phases, domain.Phase{
			Name:        name,
			Start:       start,
			End:         end,
			Status:      status,
			Responsible: stringField(record, KeyResponsible),
			Critical:    boolField(record, KeyCritical),
		})
	}
	return phases
}

func dateField(record map[string]any, key string) (time.Time, bool) {
	return ParseDate(stringField(record, key))
}

func stringField(record map[string]any, key string) string {
	val, ok := record[key].(string)
	if !ok {
		return ""
	}
	return val
}

func boolField(record map[string]any, key string) bool {
	switch v := record[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || strings.EqualFold(v, "oui")
	default:
		return false
	}
}
