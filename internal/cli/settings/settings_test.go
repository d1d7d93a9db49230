package settings

import (
	"strings"
	"testing"

	"github.com/julianstephens/pokrok/internal/cli/clitest"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
)

func TestSettingsUpdate(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	tz := "Europe/Prague"
	off := false
	if err := (&SettingsCmd{Timezone: &tz, DailyReview: &off}).Run(ctx); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	out.Reset()
	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Europe/Prague") || !strings.Contains(got, "Daily Review Enabled:  false") {
		t.Errorf("unexpected settings listing:\n%s", got)
	}
}

func TestSettingsRejectsUnknownTimezone(t *testing.T) {
	ctx, _ := clitest.NewContext(t)

	tz := "Mars/Olympus"
	if err := (&SettingsCmd{Timezone: &tz}).Run(ctx); !apperrors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
