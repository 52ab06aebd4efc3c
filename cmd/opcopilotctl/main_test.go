package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opcopilot/opcopilot/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func dataDir() string {
	return filepath.Join("..", "..", "data")
}

func TestCheckShippedFixtures(t *testing.T) {
	out, err := run(t, "check", "--data", dataDir())
	require.NoError(t, err)
	assert.Contains(t, out, "operations: 4")
	assert.Contains(t, out, "template OPP:")
	assert.NotContains(t, out, "fallback:")
}

func TestCheckReportsFallback(t *testing.T) {
	out, err := run(t, "check", "--data", t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, out, "fallback:")
}

func TestCheckReportsSkippedRecords(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo_data.json"),
		[]byte(`{"operations_demo": [{"id": 1, "nom": "A", "aco": "aco1"}, {"id": 2, "nom": "B", "budget_total": "cher"}]}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates_phases.json"),
		[]byte(`{"AMO": {"libelle": "AMO", "phases": [{"nom": "Diagnostic", "duree_mois": 2}]}}`), 0o600))

	out, err := run(t, "check", "--data", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "operations: 1")
	assert.Contains(t, out, "skipped records: 1")
	assert.NotContains(t, out, "fallback:")
}

func TestTimelineCommand(t *testing.T) {
	out, err := run(t, "timeline", "1", "--data", dataDir(), "--anchor", "2024-01-01")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Timeline - ZAC Bellevue\n"))
	assert.Contains(t, out, "PHASE 01")

	out, err = run(t, "timeline", "404", "--data", dataDir())
	require.NoError(t, err)
	assert.Contains(t, out, "Aucune phase disponible")

	_, err = run(t, "timeline", "1", "--data", dataDir(), "--anchor", "hier")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "hash-password", "secret", "--cost", "4")
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(strings.TrimSpace(out), "secret"))
}
