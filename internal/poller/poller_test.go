package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	errs  []error
}

func (f *fakeFetcher) PendingWorkflows(context.Context) ([]models.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return []models.Workflow{{Type: constants.WorkflowDailyReview, Date: "2024-03-06"}}, nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestFetchesImmediately(t *testing.T) {
	fetcher := &fakeFetcher{}
	delivered := make(chan []models.Workflow, 1)
	p := New(fetcher, time.Hour, func(w []models.Workflow) { delivered <- w })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case w := <-delivered:
		if len(w) != 1 || w[0].Type != constants.WorkflowDailyReview {
			t.Errorf("unexpected workflows: %+v", w)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate fetch")
	}
	cancel()
	<-done
}

func TestPollsOnIntervalAndSurvivesErrors(t *testing.T) {
	fetcher := &fakeFetcher{errs: []error{errors.New("offline"), nil}}
	var mu sync.Mutex
	deliveries := 0
	p := New(fetcher, 10*time.Millisecond, func([]models.Workflow) {
		mu.Lock()
		deliveries++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for fetcher.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated fetches, got %d", fetcher.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if deliveries < 2 {
		t.Errorf("expected deliveries after the failed fetch, got %d", deliveries)
	}
}

func TestStopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := New(fetcher, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	calls := fetcher.count()
	time.Sleep(20 * time.Millisecond)
	if fetcher.count() != calls {
		t.Error("fetches continued after Run returned")
	}
}

func TestDefaultInterval(t *testing.T) {
	p := New(&fakeFetcher{}, 0, nil)
	if p.interval != constants.DefaultPollInterval {
		t.Errorf("expected default interval, got %v", p.interval)
	}
}
