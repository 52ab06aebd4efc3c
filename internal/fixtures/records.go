package fixtures

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// recordDecoder decodes a document section by section. A record whose fields
// do not match the expected shape is dropped; its siblings are kept.
type recordDecoder struct {
	file    string
	logger  *zap.Logger
	skipped int
}

func (d *recordDecoder) drop(path string, err error) {
	d.skipped++
	d.logger.Warn("malformed fixture record skipped",
		zap.String("file", d.file),
		zap.String("path", path),
		zap.Error(err))
}

func decodeDemo(d *recordDecoder, sections map[string]json.RawMessage) *DemoData {
	doc := &DemoData{
		Operations:      decodeList[OperationRecord](d, "operations_demo", sections["operations_demo"]),
		Phases:          decodeGroups[any](d, "phases_demo", sections["phases_demo"]),
		MonthlyActivity: decodeList[domain.ActivityPoint](d, "activite_mensuelle", sections["activite_mensuelle"]),
		Alerts:          decodeList[domain.Alert](d, "alertes", sections["alertes"]),
		REM:             decodeGroups[domain.REMEntry](d, "rem_demo", sections["rem_demo"]),
		Amendments:      decodeGroups[domain.Amendment](d, "avenants_demo", sections["avenants_demo"]),
		Notices:         decodeGroups[domain.FormalNotice](d, "med_demo", sections["med_demo"]),
		Settlements:     decodeKeyed[domain.Settlement](d, "dgd_demo", sections["dgd_demo"]),
		Claims:          decodeGroups[domain.WarrantyClaim](d, "gpa_demo", sections["gpa_demo"]),
		Utilities:       map[string]map[string]domain.UtilityWorkflow{},
	}
	doc.KPIs, _ = decodeValue[domain.KPIs](d, "kpis_aco", sections["kpis_aco"])

	var byOperation map[string]json.RawMessage
	if raw := sections["concessionnaires_demo"]; len(raw) > 0 {
		if err := json.Unmarshal(raw, &byOperation); err != nil {
			d.drop("concessionnaires_demo", err)
		}
	}
	for key, raw := range byOperation {
		doc.Utilities[key] = decodeKeyed[domain.UtilityWorkflow](d, "concessionnaires_demo."+key, raw)
	}

	doc.Skipped = d.skipped
	doc.ensureMaps()
	return doc
}

func decodeValue[T any](d *recordDecoder, path string, raw json.RawMessage) (T, bool) {
	var v T
	if len(raw) == 0 {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		d.drop(path, err)
		var zero T
		return zero, false
	}
	return v, true
}

func decodeList[T any](d *recordDecoder, path string, raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.drop(path, err)
		return nil
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		if v, ok := decodeValue[T](d, fmt.Sprintf("%s[%d]", path, i), item); ok {
			out = append(out, v)
		}
	}
	return out
}

func decodeGroups[T any](d *recordDecoder, path string, raw json.RawMessage) map[string][]T {
	out := map[string][]T{}
	if len(raw) == 0 {
		return out
	}
	var groups map[string]json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil {
		d.drop(path, err)
		return out
	}
	for key, group := range groups {
		out[key] = decodeList[T](d, path+"."+key, group)
	}
	return out
}

func decodeKeyed[T any](d *recordDecoder, path string, raw json.RawMessage) map[string]T {
	out := map[string]T{}
	if len(raw) == 0 {
		return out
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		d.drop(path, err)
		return out
	}
	for key, entry := range entries {
		if v, ok := decodeValue[T](d, path+"."+key, entry); ok {
			out[key] = v
		}
	}
	return out
}
