package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pokrok/internal/board"
	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/client"
	"github.com/julianstephens/pokrok/internal/config"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/notifier"
	"github.com/julianstephens/pokrok/internal/optimistic"
	"github.com/julianstephens/pokrok/internal/poller"
	"github.com/julianstephens/pokrok/internal/tui"
	"github.com/julianstephens/pokrok/internal/utils"
	"github.com/julianstephens/pokrok/internal/viewstate"
)

// TuiCmd opens the dashboard against a running pokrok server.
type TuiCmd struct {
	Server string `help:"Server URL (default from config)."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	url := c.Server
	if url == "" {
		url = ctx.Config.Client.ServerURL
	}
	api := client.New(url)

	healthCtx, cancel := context.WithTimeout(context.Background(), serverProbeTimeout)
	err := api.Health(healthCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("pokrok server at %s is not reachable (start it with 'pokrok serve'): %w", url, err)
	}

	today, err := utils.TodayDate(ctx.Config.Timezone)
	if err != nil {
		return err
	}

	var state viewstate.Store
	file, err := viewstate.OpenFile(config.ExpandPath(ctx.Config.Client.ViewStatePath))
	if err != nil {
		logger.Warn("View state unavailable, starting fresh", "error", err)
		state = viewstate.NewMemory()
	} else {
		state = file
	}

	b := board.New(api, optimistic.NewSyncer(notifier.Default()))
	feed := tui.NewFeed()

	// runCtx ends with the program; it bounds polling and every request.
	runCtx, stop := context.WithCancel(context.Background())
	polled := make(chan struct{})
	go func() {
		defer close(polled)
		poller.New(api, ctx.Config.PollInterval(), feed.Deliver).Run(runCtx)
	}()
	defer func() {
		stop()
		<-polled
	}()

	p := tea.NewProgram(tui.NewModel(runCtx, b, state, feed, today), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
