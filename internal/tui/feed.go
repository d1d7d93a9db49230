package tui

import "github.com/julianstephens/pokrok/internal/models"

// Feed hands poll results to the dashboard. Only the newest batch is kept, so
// a slow UI never blocks the poller.
type Feed struct {
	ch chan []models.Workflow
}

func NewFeed() *Feed {
	return &Feed{ch: make(chan []models.Workflow, 1)}
}

// Deliver replaces any batch the dashboard has not picked up yet.
func (f *Feed) Deliver(workflows []models.Workflow) {
	for {
		select {
		case f.ch <- workflows:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f *Feed) C() <-chan []models.Workflow { return f.ch }
