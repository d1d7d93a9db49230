package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, _, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func TestGuard(t *testing.T) {
	g := NewGuard()
	if !g.TryAcquire("a") {
		t.Fatal("first acquire should succeed")
	}
	if g.TryAcquire("a") {
		t.Fatal("second acquire should fail")
	}
	if !g.InFlight("a") || g.Len() != 1 {
		t.Errorf("expected a in flight, len=%d", g.Len())
	}
	g.Release("a")
	if g.InFlight("a") || g.Len() != 0 {
		t.Error("expected empty guard after release")
	}
}

func TestKey(t *testing.T) {
	if got := Key("h1", "2024-03-04"); got != "h1-2024-03-04" {
		t.Errorf("Key() = %q", got)
	}
}

func TestExecute_CommitsOnSuccess(t *testing.T) {
	s := NewSyncer(nil)
	state := false
	var committed bool

	got, err := Execute(context.Background(), s, Mutation[bool]{
		Kind:    "toggle",
		Key:     "k",
		Apply:   func() bool { prev := state; state = !state; return prev },
		Request: func(context.Context) (bool, error) { return true, nil },
		Commit:  func(v bool) { committed = true; state = v },
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !got || !state || !committed {
		t.Errorf("got=%v state=%v committed=%v", got, state, committed)
	}
	if s.Guard().Len() != 0 {
		t.Error("guard should be released")
	}
}

func TestExecute_RollsBackOnFailure(t *testing.T) {
	n := &recordingNotifier{}
	s := NewSyncer(n)
	state := map[string]bool{}

	_, err := Execute(context.Background(), s, Mutation[bool]{
		Kind: "toggle",
		Key:  Key("h1", "2024-03-04"),
		Apply: func() bool {
			prev := state["2024-03-04"]
			state["2024-03-04"] = !prev
			return prev
		},
		Request:        func(context.Context) (bool, error) { return false, errors.New("server down") },
		Rollback:       func(prev bool) { state["2024-03-04"] = prev },
		FailureMessage: "Could not update habit",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if state["2024-03-04"] {
		t.Error("state should be restored to pre-toggle value")
	}
	if n.count() != 1 || n.messages[0] != "Could not update habit" {
		t.Errorf("notifications = %v", n.messages)
	}
	if s.Guard().InFlight(Key("h1", "2024-03-04")) {
		t.Error("guard should be released after failure")
	}
}

func TestStart_DropsDuplicateWhilePending(t *testing.T) {
	s := NewSyncer(nil)
	calls := 0
	m := Mutation[int]{
		Kind:    "toggle",
		Key:     "h1-2024-03-04",
		Request: func(context.Context) (int, error) { calls++; return calls, nil },
	}

	first, err := Start(s, m)
	if err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if _, err := Start(s, m); !errors.Is(err, ErrInFlight) {
		t.Fatalf("second Start err = %v, want ErrInFlight", err)
	}
	if _, err := first.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("request issued %d times, want 1", calls)
	}

	// Once settled the key is usable again.
	if _, err := Execute(context.Background(), s, m); err != nil {
		t.Fatalf("Execute after settle failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExecute_ConcurrentSameKey(t *testing.T) {
	s := NewSyncer(nil)
	release := make(chan struct{})
	started := make(chan struct{})
	var (
		mu    sync.Mutex
		calls int
	)
	m := Mutation[struct{}]{
		Kind: "toggle",
		Key:  "k",
		Request: func(context.Context) (struct{}, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			close(started)
			<-release
			return struct{}{}, nil
		},
	}

	done := make(chan error, 1)
	go func() {
		_, err := Execute(context.Background(), s, m)
		done <- err
	}()
	<-started

	if _, err := Execute(context.Background(), s, m); !errors.Is(err, ErrInFlight) {
		t.Errorf("concurrent Execute err = %v, want ErrInFlight", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestResolve_OnlyOnce(t *testing.T) {
	s := NewSyncer(nil)
	calls := 0
	p, err := Start(s, Mutation[int]{
		Key:     "k",
		Request: func(context.Context) (int, error) { calls++; return calls, nil },
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	p.Resolve(context.Background())
	p.Resolve(context.Background())
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStart_RequiresRequest(t *testing.T) {
	s := NewSyncer(nil)
	if _, err := Start(s, Mutation[int]{Key: "k"}); err == nil {
		t.Fatal("expected error for mutation without request")
	}
	if s.Guard().Len() != 0 {
		t.Error("guard should be untouched")
	}
}
