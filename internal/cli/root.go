package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/pokrok/internal/backup"
	"github.com/julianstephens/pokrok/internal/config"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/service"
	"github.com/julianstephens/pokrok/internal/storage"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(title, description string) (bool, error)

type Context struct {
	Config     *config.Config
	ConfigPath string
	Store      storage.Provider
	Service    *service.Service

	// Out receives command output. Nil means stdout.
	Out io.Writer
	// Confirm prompts before destructive changes. Nil means an interactive huh form.
	Confirm ConfirmFunc
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Ask runs the configured confirmation prompt.
func (c *Context) Ask(title, description string) (bool, error) {
	if c.Confirm != nil {
		return c.Confirm(title, description)
	}
	return HuhConfirm(title, description)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if c.Config != nil && c.Config.UsesPostgres() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}
