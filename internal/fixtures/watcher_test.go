package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, demoName, `{"operations_demo": [{"id": 1, "nom": "Avant", "aco": "aco1"}]}`)
	l := NewLoader(dir, demoName, templatesName, nil)
	require.Equal(t, "Avant", l.Demo().Operations[0].Name)

	w, err := NewWatcher(l, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, dir, "notes.json", `{}`)
	writeFile(t, dir, demoName, `{"operations_demo": [{"id": 1, "nom": "Après", "aco": "aco1"}]}`)

	select {
	case <-w.Reloaded():
	case <-time.After(5 * time.Second):
		t.Fatal("fixtures were not reloaded")
	}
	assert.Equal(t, "Après", l.Demo().Operations[0].Name)

	cancel()
	require.NoError(t, <-done)
}

func TestNewWatcherMissingDir(t *testing.T) {
	l := NewLoader("/does/not/exist", demoName, templatesName, nil)
	_, err := NewWatcher(l, 0)
	assert.Error(t, err)
}
