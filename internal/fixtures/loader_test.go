package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/opcopilot/opcopilot/internal/domain"
)

const (
	demoName      = "demo_data.json"
	templatesName = "templates_phases.json"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestDemoMissingFileServesFallback(t *testing.T) {
	l := NewLoader(t.TempDir(), demoName, templatesName, nil)

	d := l.Demo()
	require.Len(t, d.Operations, 3)
	assert.Len(t, d.Alerts, 3)
	assert.NotEmpty(t, d.MonthlyActivity)
	assert.Equal(t, 23, d.KPIs.ActiveOperations)
	assert.Len(t, d.Phases, 1)
	assert.NotEmpty(t, d.Phases[domain.OperationKey("1")])
	assert.Contains(t, d.Notice, "non trouvé")
	assert.NotNil(t, d.REM)
}

func TestDemoMalformedFileServesFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, demoName, `{"operations_demo": [`)
	l := NewLoader(dir, demoName, templatesName, nil)

	d := l.Demo()
	assert.Len(t, d.Operations, 3)
	assert.Contains(t, d.Notice, "Erreur format JSON")
}

func TestDemoReadsAndCachesDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, demoName, `{
		"operations_demo": [{"id": 9, "nom": "Test", "type": "opp", "statut": "etudes", "date_debut": "2024-02-01", "aco": "aco1"}],
		"rem_demo": {"operation_9": [{"trimestre": "T1", "ecart_rem": 100}]}
	}`)
	l := NewLoader(dir, demoName, templatesName, nil)

	d := l.Demo()
	require.Len(t, d.Operations, 1)
	assert.Empty(t, d.Notice)
	assert.Len(t, d.REM["operation_9"], 1)
	assert.NotNil(t, d.Claims)

	op := d.Operations[0].ToDomain()
	assert.Equal(t, "9", op.ID)
	assert.Equal(t, domain.OperationTypeOPP, op.Type)
	assert.Equal(t, domain.OperationStatusEtudes, op.Status)
	require.NotNil(t, op.StartDate)
	assert.Nil(t, op.EndDate)

	require.NoError(t, os.Remove(filepath.Join(dir, demoName)))
	assert.Same(t, d, l.Demo())

	l.Reload()
	assert.Len(t, l.Demo().Operations, 3)
}

func TestTemplates(t *testing.T) {
	t.Run("fallback provides generic template", func(t *testing.T) {
		l := NewLoader(t.TempDir(), demoName, templatesName, nil)
		tpl := l.Templates()
		assert.NotEmpty(t, tpl.Notice)
		assert.Len(t, tpl.Template("OPP").Phases, 5)
	})

	t.Run("known type and unknown type", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, templatesName, `{"AMO": {"libelle": "AMO", "phases": [{"nom": "Diagnostic", "duree_mois": 2}]}}`)
		l := NewLoader(dir, demoName, templatesName, nil)

		assert.Len(t, l.Templates().Template("AMO").Phases, 1)
		assert.Len(t, l.Templates().Template("XYZ").Phases, 5)
	})
}

func TestDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra.json", `{"a": [1, 2]}`)
	l := NewLoader(dir, demoName, templatesName, nil)

	doc, notice := l.Document("extra.json")
	assert.Empty(t, notice)
	assert.Len(t, doc["a"], 2)

	doc, notice = l.Document(demoName)
	assert.NotEmpty(t, notice)
	assert.Len(t, doc["operations_demo"], 3)

	doc, notice = l.Document("missing.json")
	assert.Empty(t, doc)
	assert.NotEmpty(t, notice)

	for _, name := range []string{"../extra.json", "extra.txt"} {
		doc, notice = l.Document(name)
		assert.Empty(t, doc, name)
		assert.NotEmpty(t, notice, name)
	}
}

func TestShippedFixturesParse(t *testing.T) {
	l := NewLoader(filepath.Join("..", "..", "data"), demoName, templatesName, nil)

	d := l.Demo()
	assert.Empty(t, d.Notice)
	assert.GreaterOrEqual(t, len(d.Operations), 3)

	tpl := l.Templates()
	assert.Empty(t, tpl.Notice)
	for _, typ := range domain.OperationTypes {
		assert.NotEmpty(t, tpl.Template(string(typ)).Phases, typ)
	}
}

func TestDemoDropsMalformedRecordsOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, demoName, `{
		"operations_demo": [
			{"id": 1, "nom": "Les Flamboyants", "nb_logements": 40, "aco": "aco1"},
			{"id": 2, "nom": "Anse Bertrand", "nb_logements": "24", "aco": "aco1"},
			{"id": 3, "nom": "Morne Caruel", "nb_logements": 18, "aco": "aco2"}
		],
		"kpis_aco": {"operations_actives": "beaucoup"},
		"gpa_demo": {"operation_1": [{"logement": "A12"}, "pas un objet"]},
		"dgd_demo": []
	}`)
	core, logs := observer.New(zap.WarnLevel)
	l := NewLoader(dir, demoName, templatesName, zap.New(core))

	d := l.Demo()
	require.Len(t, d.Operations, 2)
	assert.Equal(t, "Les Flamboyants", d.Operations[0].Name)
	assert.Equal(t, "Morne Caruel", d.Operations[1].Name)
	assert.Empty(t, d.Notice)
	assert.Zero(t, d.KPIs.ActiveOperations)
	assert.Len(t, d.Claims["operation_1"], 1)
	assert.NotNil(t, d.Settlements)
	assert.Equal(t, 4, d.Skipped)
	assert.Equal(t, 4, logs.FilterMessage("malformed fixture record skipped").Len())
}

func TestTemplatesDropMalformedType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, templatesName, `{
		"AMO": {"libelle": "AMO", "phases": [{"nom": "Diagnostic", "duree_mois": 2}]},
		"VEFA": {"libelle": "VEFA", "phases": [{"nom": "Réservation", "duree_mois": "deux"}]}
	}`)
	l := NewLoader(dir, demoName, templatesName, nil)

	tpl := l.Templates()
	assert.Empty(t, tpl.Notice)
	assert.Contains(t, tpl.Types, "AMO")
	assert.NotContains(t, tpl.Types, "VEFA")
}
