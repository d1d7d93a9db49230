// Package clitest builds command contexts backed by a throwaway SQLite store.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/config"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/service"
	"github.com/julianstephens/pokrok/internal/storage/sqlite"
)

// Now is the fixed clock used by test contexts: Wednesday 2024-03-06.
var Now = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

// NewContext returns an initialised context whose output is captured in the
// returned buffer. Confirmation prompts answer yes.
func NewContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pokrok.db")
	store := sqlite.New(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	cfg.Database.Path = dbPath
	cfg.Timezone = "UTC"

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config: cfg,
		Store:  store,
		Service: service.New(store, scheduler.New(),
			service.WithClock(func() time.Time { return Now }),
			service.WithTimezone("UTC"),
		),
		Out:     out,
		Confirm: func(string, string) (bool, error) { return true, nil },
	}
	return ctx, out
}
