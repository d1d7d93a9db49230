package utils

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain date", "2024-03-04", "2024-03-04", false},
		{"padded", "  2024-03-04 ", "2024-03-04", false},
		{"rfc3339 utc", "2024-03-04T23:30:00Z", "2024-03-04", false},
		{"rfc3339 offset keeps written date", "2024-03-04T00:30:00+02:00", "2024-03-04", false},
		{"rfc3339 nano", "2024-03-04T10:00:00.123456Z", "2024-03-04", false},
		{"js iso millis without zone", "2024-03-04T10:00:00.000", "2024-03-04", false},
		{"space separated", "2024-03-04 10:00:00", "2024-03-04", false},
		{"empty", "", "", true},
		{"garbage", "next monday", "", true},
		{"impossible day", "2024-02-30", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeOptionalDate(t *testing.T) {
	got, err := NormalizeOptionalDate("   ")
	if err != nil || got != "" {
		t.Errorf("expected empty passthrough, got %q, %v", got, err)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2024, time.March, 4, 1, 0, 0, 0, loc) // still March 3rd in UTC
	got := DateOf(ts)
	if FormatDate(got) != "2024-03-04" {
		t.Errorf("expected local calendar date 2024-03-04, got %s", FormatDate(got))
	}
	if got.Location() != time.UTC || got.Hour() != 0 {
		t.Errorf("expected midnight UTC, got %v", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := map[string]int{
		"2024-02-10": 29,
		"2023-02-10": 28,
		"2024-04-01": 30,
		"2024-12-31": 31,
	}
	for date, want := range tests {
		if got := DaysInMonth(MustParseDate(date)); got != want {
			t.Errorf("DaysInMonth(%s) = %d, want %d", date, got, want)
		}
	}
}

func TestValidateTimezone(t *testing.T) {
	if !ValidateTimezone("Local") || !ValidateTimezone("") {
		t.Error("Local and empty timezone should be valid")
	}
	if !ValidateTimezone("UTC") {
		t.Error("UTC should be valid")
	}
	if ValidateTimezone("Mars/Olympus_Mons") {
		t.Error("unknown timezone should be invalid")
	}
}
