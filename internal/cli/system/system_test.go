package system

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/pokrok/internal/cache"
	"github.com/julianstephens/pokrok/internal/cli/clitest"
	"github.com/julianstephens/pokrok/internal/config"
	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
	if !strings.Contains(out.String(), "Initialized pokrok storage at:") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	if _, err := ctx.Service.CreateArea(models.Area{Name: "Home"}); err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing database") {
		t.Errorf("expected delete notice, got %q", out.String())
	}
	areas, err := ctx.Service.ListAreas()
	if err != nil {
		t.Fatalf("ListAreas failed: %v", err)
	}
	if len(areas) != 0 {
		t.Errorf("expected a fresh database, found %d areas", len(areas))
	}
}

func TestInitCmd_WritesConfig(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	ctx.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := os.Stat(ctx.ConfigPath); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	cfg, err := config.Load(ctx.ConfigPath)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Database.Path != ctx.Config.Database.Path {
		t.Errorf("database path = %q, want %q", cfg.Database.Path, ctx.Config.Database.Path)
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database is up to date") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestDoctorCmd_Passes(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	if err := (&DoctorCmd{SkipServer: true}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out.String())
	}
	got := out.String()
	for _, want := range []string{"Database reachable: OK", "Schema version: OK", "Backups present: WARNING", "All diagnostics passed!"} {
		if !strings.Contains(got, want) {
			t.Errorf("doctor output missing %q:\n%s", want, got)
		}
	}
}

func TestDoctorCmd_ServerDownIsWarning(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	ctx.Config.Client.ServerURL = "http://127.0.0.1:1"

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("an unreachable server must not fail diagnostics: %v", err)
	}
	if !strings.Contains(out.String(), "API server: WARNING") {
		t.Errorf("expected server warning:\n%s", out.String())
	}
}

func TestValidateCmd(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Fatalf("validate on empty store failed: %v", err)
	}
	if !strings.Contains(out.String(), "No conflicts detected.") {
		t.Errorf("unexpected output: %q", out.String())
	}

	for range 2 {
		if _, err := ctx.Service.CreateHabit(models.Habit{Name: "Read", Frequency: constants.FrequencyDaily}); err != nil {
			t.Fatalf("CreateHabit failed: %v", err)
		}
	}
	out.Reset()
	if err := (&ValidateCmd{}).Run(ctx); err == nil {
		t.Fatal("expected duplicate habit names to fail validation")
	}
	if !strings.Contains(out.String(), "Duplicate habit name") {
		t.Errorf("report missing duplicate conflict:\n%s", out.String())
	}

	out.Reset()
	if err := (&DoctorCmd{SkipServer: true}).Run(ctx); err == nil {
		t.Error("expected doctor to fail on conflicts")
	}
	if !strings.Contains(out.String(), "Data validation: FAIL") {
		t.Errorf("expected validation failure in doctor output:\n%s", out.String())
	}
}

func TestTuiCmd_ServerDown(t *testing.T) {
	ctx, _ := clitest.NewContext(t)

	err := (&TuiCmd{Server: "http://127.0.0.1:1"}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("expected unreachable server error, got %v", err)
	}
}

func TestResponseCacheFallsBackToMemory(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, ok := responseCache(context.Background(), cfg).(*cache.Memory); !ok {
		t.Error("expected in-process cache without redis")
	}

	cfg.Server.RedisAddr = "127.0.0.1:1"
	c := responseCache(context.Background(), cfg)
	defer c.Close()
	if _, ok := c.(*cache.Memory); !ok {
		t.Error("expected fallback to the in-process cache when redis is unreachable")
	}
}

func TestKeyringCommands(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := clitest.NewContext(t)

	if err := (&KeyringSetCmd{ConnectionString: "not a dsn"}).Run(ctx); err == nil {
		t.Error("expected non-postgres string to be rejected")
	}
	if err := (&KeyringSetCmd{ConnectionString: "postgres://pokrok@localhost:5432/pokrok"}).Run(ctx); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	out.Reset()
	if err := (&KeyringStatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out.String(), "Connection string is stored in keyring") {
		t.Errorf("unexpected status: %q", out.String())
	}

	if err := (&KeyringDeleteCmd{}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := (&KeyringDeleteCmd{}).Run(ctx); err == nil {
		t.Error("expected second delete to report a missing entry")
	}
}
