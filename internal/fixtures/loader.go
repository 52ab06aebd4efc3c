// Package fixtures loads the demo data and phase template documents. Loading
// never fails: a missing or malformed document is replaced by built-in sample
// data so every screen has something to render.
package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// OperationRecord is an operation as written in the demo data file.
type OperationRecord struct {
	ID           json.Number `json:"id"`
	Name         string      `json:"nom"`
	Type         string      `json:"type"`
	Municipality string      `json:"commune"`
	Status       string      `json:"statut"`
	Progress     float64     `json:"avancement"`
	Budget       float64     `json:"budget_total"`
	Units        int         `json:"nb_logements"`
	CreatedAt    string      `json:"date_creation"`
	StartDate    string      `json:"date_debut"`
	EndDate      string      `json:"date_fin_prevue"`
	Blockers     int         `json:"freins_actifs"`
	ACO          string      `json:"aco"`
}

// DemoData is the parsed demo data document.
type DemoData struct {
	Operations      []OperationRecord                            `json:"operations_demo"`
	Phases          map[string][]any                             `json:"phases_demo"`
	KPIs            domain.KPIs                                  `json:"kpis_aco"`
	MonthlyActivity []domain.ActivityPoint                       `json:"activite_mensuelle"`
	Alerts          []domain.Alert                               `json:"alertes"`
	REM             map[string][]domain.REMEntry                 `json:"rem_demo"`
	Amendments      map[string][]domain.Amendment                `json:"avenants_demo"`
	Notices         map[string][]domain.FormalNotice             `json:"med_demo"`
	Utilities       map[string]map[string]domain.UtilityWorkflow `json:"concessionnaires_demo"`
	Settlements     map[string]domain.Settlement                 `json:"dgd_demo"`
	Claims          map[string][]domain.WarrantyClaim            `json:"gpa_demo"`

	// Notice is set when the document could not be read and fallback data is served.
	Notice string `json:"-"`
	// Skipped counts records dropped because their fields had the wrong shape.
	Skipped int `json:"-"`
}

// TemplatePhase is one phase of an operation-type template.
type TemplatePhase struct {
	Name        string `json:"nom"`
	Months      int    `json:"duree_mois"`
	Responsible string `json:"responsable"`
	Critical    bool   `json:"critique"`
}

// PhaseTemplate lists the phases instantiated for an operation type.
type PhaseTemplate struct {
	Label  string          `json:"libelle"`
	Phases []TemplatePhase `json:"phases"`
}

// PhaseTemplates maps an operation type to its template.
type PhaseTemplates struct {
	Types  map[string]PhaseTemplate
	Notice string
}

// Loader reads fixture documents from a directory and caches them.
type Loader struct {
	dir           string
	demoFile      string
	templatesFile string
	logger        *zap.Logger

	mu        sync.Mutex
	demo      *DemoData
	templates *PhaseTemplates
}

// NewLoader builds a loader rooted at dir.
func NewLoader(dir, demoFile, templatesFile string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, demoFile: demoFile, templatesFile: templatesFile, logger: logger}
}

// Demo returns the demo data document, or the built-in fallback.
func (l *Loader) Demo() *DemoData {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.demo != nil {
		return l.demo
	}

	var sections map[string]json.RawMessage
	if err := l.readJSON(l.demoFile, &sections); err != nil {
		l.logger.Warn("demo data unavailable; using fallback", zap.String("file", l.demoFile), zap.Error(err))
		fb := FallbackDemoData()
		fb.Notice = noticeFor(l.demoFile, err)
		l.demo = fb
		return fb
	}
	l.demo = decodeDemo(&recordDecoder{file: l.demoFile, logger: l.logger}, sections)
	return l.demo
}

// Templates returns the phase templates document, or the built-in fallback.
func (l *Loader) Templates() *PhaseTemplates {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.templates != nil {
		return l.templates
	}

	var sections map[string]json.RawMessage
	if err := l.readJSON(l.templatesFile, &sections); err != nil {
		l.logger.Warn("phase templates unavailable; using fallback", zap.String("file", l.templatesFile), zap.Error(err))
		fb := FallbackTemplates()
		fb.Notice = noticeFor(l.templatesFile, err)
		l.templates = fb
		return fb
	}
	dec := &recordDecoder{file: l.templatesFile, logger: l.logger}
	types := make(map[string]PhaseTemplate, len(sections))
	for key, raw := range sections {
		if tpl, ok := decodeValue[PhaseTemplate](dec, key, raw); ok {
			types[key] = tpl
		}
	}
	l.templates = &PhaseTemplates{Types: types}
	return l.templates
}

// Document returns a fixture document as a generic nested mapping. Only
// .json files directly inside the data directory are served.
func (l *Loader) Document(name string) (map[string]any, string) {
	switch name {
	case l.demoFile:
		return toMap(l.Demo()), l.Demo().Notice
	case l.templatesFile:
		t := l.Templates()
		return toMap(t.Types), t.Notice
	}
	if filepath.Base(name) != name || filepath.Ext(name) != ".json" {
		return map[string]any{}, noticeFor(name, fs.ErrNotExist)
	}
	var doc map[string]any
	if err := l.readJSON(name, &doc); err != nil {
		return map[string]any{}, noticeFor(name, err)
	}
	return doc, ""
}

// Reload drops cached documents so the next access reads the files again.
func (l *Loader) Reload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.demo = nil
	l.templates = nil
}

func (l *Loader) readJSON(name string, dst any) error {
	content, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Template returns the phases for an operation type, falling back to the
// generic template.
func (t *PhaseTemplates) Template(opType string) PhaseTemplate {
	if tpl, ok := t.Types[opType]; ok && len(tpl.Phases) > 0 {
		return tpl
	}
	if tpl, ok := t.Types[DefaultTemplateKey]; ok {
		return tpl
	}
	return genericTemplate()
}

func (d *DemoData) ensureMaps() {
	if d.Phases == nil {
		d.Phases = map[string][]any{}
	}
	if d.REM == nil {
		d.REM = map[string][]domain.REMEntry{}
	}
	if d.Amendments == nil {
		d.Amendments = map[string][]domain.Amendment{}
	}
	if d.Notices == nil {
		d.Notices = map[string][]domain.FormalNotice{}
	}
	if d.Utilities == nil {
		d.Utilities = map[string]map[string]domain.UtilityWorkflow{}
	}
	if d.Settlements == nil {
		d.Settlements = map[string]domain.Settlement{}
	}
	if d.Claims == nil {
		d.Claims = map[string][]domain.WarrantyClaim{}
	}
}

func noticeFor(name string, err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("Fichier %s non trouvé, données d'exemple affichées", name)
	}
	return fmt.Sprintf("Erreur format JSON dans %s, données d'exemple affichées", name)
}

func toMap(v any) map[string]any {
	content, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(content, &out); err != nil {
		return map[string]any{}
	}
	return out
}
