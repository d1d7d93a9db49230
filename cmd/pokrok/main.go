package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/cli/backups"
	"github.com/julianstephens/pokrok/internal/cli/habits"
	"github.com/julianstephens/pokrok/internal/cli/planning"
	"github.com/julianstephens/pokrok/internal/cli/settings"
	"github.com/julianstephens/pokrok/internal/cli/steps"
	"github.com/julianstephens/pokrok/internal/cli/system"
	"github.com/julianstephens/pokrok/internal/config"
	"github.com/julianstephens/pokrok/internal/constants"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/keyring"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/service"
	"github.com/julianstephens/pokrok/internal/storage"
	"github.com/julianstephens/pokrok/internal/storage/postgres"
	"github.com/julianstephens/pokrok/internal/storage/sqlite"
)

const connectionEnv = "POKROK_DB_CONNECTION"

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config_file}"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize pokrok storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd   `cmd:"" help:"Check stored habits and steps for conflicts."`
	Serve    system.ServeCmd      `cmd:"" help:"Run the HTTP API server."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and habit tracking."`
	Step     steps.StepCmd        `cmd:"" help:"Manage steps."`
	Area     planning.AreaCmd     `cmd:"" help:"Manage areas."`
	Goal     planning.GoalCmd     `cmd:"" help:"Manage goals."`
	Agenda   planning.AgendaCmd   `cmd:"" help:"Show habits and steps for a day."`
	Review   planning.ReviewCmd   `cmd:"" help:"Record the daily review."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

// Commands that manage their own storage or do not touch it.
var skipLoad = map[string]bool{"init": true, "keyring": true, "tui": true}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habits, recurring steps and streaks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version, "config_file": constants.DefaultConfigFile},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Logging.Debug = true
	}

	command := ctx.Selected()
	if err := logger.Init(logger.Config{
		Debug:     cfg.Logging.Debug,
		ConfigDir: cfg.ConfigDir(),
		Console:   command != nil && command.Name == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
		logger.InitWriter(os.Stderr, cfg.Logging.Debug)
	}

	store, err := openStore(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Config:     cfg,
		ConfigPath: CLI.Config,
		Store:      store,
		Service:    service.New(store, scheduler.New(), service.WithTimezone(cfg.Timezone)),
	}

	if command == nil || !skipLoad[command.Name] {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// openStore picks PostgreSQL when the config names a connection and SQLite
// otherwise. The configured connection must not carry a password; one from
// POKROK_DB_CONNECTION or the keyring may.
func openStore(cfg *config.Config) (storage.Provider, error) {
	if !cfg.UsesPostgres() {
		return sqlite.New(config.ExpandPath(cfg.Database.Path)), nil
	}

	if _, err := postgres.ValidateConnString(cfg.Database.Connection); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("%w\n  store the full connection string with 'pokrok keyring set' or export %s, or use a .pgpass file", err, connectionEnv)
		}
		return nil, err
	}

	connStr := cfg.Database.Connection
	if v := os.Getenv(connectionEnv); v != "" {
		connStr = v
	} else if v, err := keyring.GetConnectionString(); err == nil {
		connStr = v
	} else if !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("Keyring lookup failed", "error", err)
	}
	return postgres.New(connStr), nil
}
