package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/pokrok/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func withProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func TestGetTrayAppConfigDir(t *testing.T) {
	base := withConfigDir(t)
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)

	dir, err := GetTrayAppConfigDir()
	if err != nil || dir != trayDir {
		t.Fatalf("default dir = %q, %v", dir, err)
	}

	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	custom := filepath.Join(base, "custom")
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, custom)
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	dir, err = GetTrayAppConfigDir()
	if err != nil || dir != custom {
		t.Errorf("custom dir = %q, %v", dir, err)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		executable string
		wantErr    string
	}{
		{"valid", "8080|123|secret", "pokrok-tray", ""},
		{"malformed", "8080|123", "pokrok-tray", "malformed"},
		{"empty port", "|123|secret", "pokrok-tray", "port in lockfile is empty"},
		{"bad port", "abc|123|secret", "pokrok-tray", "invalid port"},
		{"port range", "70000|123|secret", "pokrok-tray", "outside valid range"},
		{"bad pid", "8080|abc|secret", "pokrok-tray", "invalid process ID"},
		{"empty secret", "8080|123| ", "pokrok-tray", "secret in lockfile is empty"},
		{"no process", "8080|123|secret", "", "not running"},
		{"wrong process", "8080|123|secret", "bash", "is not pokrok-tray"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withProcess(t, tt.executable)
			path := filepath.Join(t.TempDir(), constants.NotifierLockfileName)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			port, secret, err := findAndValidateTrayProcess(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if port != "8080" || secret != "secret" {
					t.Errorf("got port=%q secret=%q", port, secret)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFindAndValidateTrayProcess_NoLockfile(t *testing.T) {
	_, _, err := findAndValidateTrayProcess(filepath.Join(t.TempDir(), "missing.lock"))
	if !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("err = %v, want ErrTrayNotRunning", err)
	}
}

func TestTrayNotify(t *testing.T) {
	var got WebhookPayload
	var gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Pokrok-Secret")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	base := withConfigDir(t)
	withProcess(t, "pokrok-tray")
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lock := fmt.Sprintf("%s|42|s3cret", u.Port())
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(lock), 0600); err != nil {
		t.Fatal(err)
	}

	if err := NewTray().Notify(context.Background(), "Pokrok", "Could not update habit"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if gotSecret != "s3cret" {
		t.Errorf("secret header = %q", gotSecret)
	}
	if got.Text != "Pokrok: Could not update habit" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", got)
	}
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) Notify(context.Context, string, string) error {
	s.calls++
	return s.err
}

func TestFallback(t *testing.T) {
	primary := &stubNotifier{err: ErrTrayNotRunning}
	secondary := &stubNotifier{}
	f := Fallback{Primary: primary, Secondary: secondary}

	if err := f.Notify(context.Background(), "t", "m"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d", primary.calls, secondary.calls)
	}

	primary.err = nil
	if err := f.Notify(context.Background(), "t", "m"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if secondary.calls != 1 {
		t.Error("secondary should not be used when primary succeeds")
	}
}
