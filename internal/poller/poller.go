// Package poller re-fetches pending workflows on a fixed interval.
package poller

import (
	"context"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/models"
)

type Fetcher interface {
	PendingWorkflows(ctx context.Context) ([]models.Workflow, error)
}

type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	deliver  func([]models.Workflow)
}

// New builds a poller. A non-positive interval uses the default of one minute.
func New(fetcher Fetcher, interval time.Duration, deliver func([]models.Workflow)) *Poller {
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	return &Poller{fetcher: fetcher, interval: interval, deliver: deliver}
}

// Run fetches once immediately and then on every tick until ctx is done.
// Fetch errors are logged and polling continues.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	workflows, err := p.fetcher.PendingWorkflows(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn("Failed to fetch pending workflows", "error", err)
		return
	}
	if p.deliver != nil {
		p.deliver(workflows)
	}
}
