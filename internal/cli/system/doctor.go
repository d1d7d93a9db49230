package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/pokrok/internal/backup"
	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/client"
	"github.com/julianstephens/pokrok/internal/storage"
	"github.com/julianstephens/pokrok/internal/utils"
)

const serverProbeTimeout = 2 * time.Second

type DoctorCmd struct {
	SkipServer bool `help:"Do not probe the configured API server."`
}

type check struct {
	name string
	// warn marks checks whose failure does not fail the run.
	warn bool
	run  func(*cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", run: checkSchemaVersion},
		{name: "Backups present", warn: true, run: checkBackupsPresent},
		{name: "Data validation", run: checkValidation},
		{name: "Timezone", run: checkTimezone},
	}
	if !cmd.SkipServer {
		checks = append(checks, check{name: "API server", warn: true, run: checkServer})
	}

	hasError := false
	dbReachable := true
	for _, c := range checks {
		if !dbReachable && (c.name == "Schema version" || c.name == "Data validation") {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Println(cli.Success(c.name + ": OK"))
		case c.warn:
			ctx.Println(cli.Warning(c.name + ": WARNING"))
			ctx.Printf("   %v\n", err)
		default:
			ctx.Println(cli.Failure(c.name + ": FAIL"))
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return ctx.Store.Ping()
}

func checkSchemaVersion(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := migrator.SchemaVersion()
	if err != nil {
		return err
	}
	switch {
	case current > latest:
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	case current < latest:
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'pokrok migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Config != nil && ctx.Config.UsesPostgres() {
		return nil
	}
	list, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(list) == 0 {
		return errors.New("no backups found - consider creating one with 'pokrok backup create'")
	}
	return nil
}

// checkValidation runs the cross-record validator over everything stored.
func checkValidation(ctx *cli.Context) error {
	result, err := validateStore(ctx)
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found - run 'pokrok validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	settings, err := ctx.Service.GetSettings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("stored timezone %q is not recognised", settings.Timezone)
	}
	today, err := ctx.Service.Today()
	if err != nil {
		return err
	}
	ctx.Printf("   Today is %s\n", utils.FormatDate(today))
	return nil
}

func checkServer(ctx *cli.Context) error {
	if ctx.Config == nil || ctx.Config.Client.ServerURL == "" {
		return errors.New("no server URL configured")
	}
	probe, cancel := context.WithTimeout(context.Background(), serverProbeTimeout)
	defer cancel()
	if err := client.New(ctx.Config.Client.ServerURL).Health(probe); err != nil {
		return fmt.Errorf("%s is not answering (start it with 'pokrok serve'): %w", ctx.Config.Client.ServerURL, err)
	}
	return nil
}
