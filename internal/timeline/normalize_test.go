package timeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opcopilot/opcopilot/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func decode(t *testing.T, raw string) []any {
	t.Helper()
	var out []any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestNormalizeCorrectsInvertedDates(t *testing.T) {
	raw := decode(t, `[{"nom":"A"},{"nom":"B","date_debut_prevue":"2024-01-10","date_fin_prevue":"2024-01-01"}]`)

	phases := Normalize(raw, day("2024-01-01"))
	require.Len(t, phases, 2)

	assert.Equal(t, "A", phases[0].Name)
	assert.Equal(t, day("2024-01-01"), phases[0].Start)
	assert.Equal(t, day("2024-01-31"), phases[0].End)

	assert.Equal(t, "B", phases[1].Name)
	assert.Equal(t, day("2024-01-10"), phases[1].Start)
	assert.Equal(t, day("2024-02-09"), phases[1].End)
}

func TestNormalizeChainsMissingDates(t *testing.T) {
	anchor := day("2025-03-01")
	raw := []any{map[string]any{}, map[string]any{}, map[string]any{}, map[string]any{}}

	phases := Normalize(raw, anchor)
	require.Len(t, phases, 4)
	for i, p := range phases {
		wantStart := anchor.AddDate(0, 0, 30*i)
		assert.Equal(t, wantStart, p.Start, "phase %d start", i)
		assert.Equal(t, wantStart.AddDate(0, 0, 30), p.End, "phase %d end", i)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	raw := []any{map[string]any{"responsable": "MOE", "critique": true}}

	phases := Normalize(raw, day("2024-06-01"))
	require.Len(t, phases, 1)
	assert.Equal(t, "Phase 1", phases[0].Name)
	assert.Equal(t, domain.PhaseStatusNonDemarree, phases[0].Status)
	assert.Equal(t, "MOE", phases[0].Responsible)
	assert.True(t, phases[0].Critical)
}

func TestNormalizeDropsNonRecordsAndKeepsOrder(t *testing.T) {
	raw := decode(t, `["junk",{"nom":"first"},42,null,{"nom":"second"},[1,2]]`)

	phases := Normalize(raw, day("2024-01-01"))
	require.Len(t, phases, 2)
	assert.Equal(t, "first", phases[0].Name)
	assert.Equal(t, "second", phases[1].Name)
	// index follows the raw position
	assert.Equal(t, day("2024-01-01").AddDate(0, 0, 30*4), phases[1].Start)
}

func TestNormalizeMalformedDatesAreSubstituted(t *testing.T) {
	raw := decode(t, `[{"nom":"x","date_debut_prevue":"not a date","date_fin_prevue":"2024-13-45"},{"nom":"y","date_debut_prevue":12}]`)

	phases := Normalize(raw, day("2024-01-01"))
	require.Len(t, phases, 2)
	assert.Equal(t, day("2024-01-01"), phases[0].Start)
	assert.Equal(t, day("2024-01-31"), phases[0].End)
	assert.Equal(t, day("2024-01-31"), phases[1].Start)
}

func TestNormalizeEndNeverBeforeStart(t *testing.T) {
	raw := decode(t, `[
		{"date_debut_prevue":"2024-05-01","date_fin_prevue":"2024-04-01"},
		{"date_fin_prevue":"2020-01-01"},
		{"date_debut_prevue":"2024-05-01T10:00:00Z","date_fin_prevue":"2024-05-01T09:00:00Z"},
		{"date_debut_prevue":"01/02/2024","date_fin_prevue":"15/02/2024"}
	]`)

	phases := Normalize(raw, day("2024-01-01"))
	require.Len(t, phases, 4)
	for _, p := range phases {
		assert.False(t, p.End.Before(p.Start), "%s: end %s before start %s", p.Name, p.End, p.Start)
	}
	assert.Equal(t, day("2024-02-15"), phases[3].End)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil, time.Now()))
}

func TestParseDate(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-07-14", day("2024-07-14"), true},
		{" 2024-07-14 ", day("2024-07-14"), true},
		{"14/07/2024", day("2024-07-14"), true},
		{"2024-07-14 00:00:00", day("2024-07-14"), true},
		{"", time.Time{}, false},
		{"juillet", time.Time{}, false},
	} {
		got, ok := ParseDate(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.True(t, tc.want.Equal(got), tc.in)
	}
}
