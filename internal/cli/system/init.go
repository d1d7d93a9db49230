package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/config"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	usesPostgres := ctx.Config != nil && ctx.Config.UsesPostgres()
	if c.Force && !usesPostgres {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized pokrok storage at: %s\n", ctx.Store.GetConfigPath())

	if ctx.ConfigPath == "" || ctx.Config == nil {
		return nil
	}
	path := config.ExpandPath(ctx.ConfigPath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := ctx.Config.Save(path); err != nil {
			return err
		}
		ctx.Printf("Wrote default configuration to: %s\n", path)
	}
	return nil
}
