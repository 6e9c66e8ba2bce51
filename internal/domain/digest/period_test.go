package digest

import (
	"errors"
	"testing"
	"time"

	"emailsummary/internal/shared/apperr"
)

func TestResolveWindow(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	now := time.Date(2024, 3, 10, 1, 30, 0, 0, loc)

	tests := []struct {
		name       string
		period     string
		dateString string
		wantStart  string
		wantEnd    string
		subject    string
	}{
		{
			name:      "daily defaults to yesterday",
			period:    "daily",
			wantStart: "2024-03-09",
			wantEnd:   "2024-03-09",
			subject:   "Daily Financial Summary, 2024-03-09",
		},
		{
			name:       "daily override",
			period:     "daily",
			dateString: "2023-12-31",
			wantStart:  "2023-12-31",
			wantEnd:    "2023-12-31",
			subject:    "Daily Financial Summary, 2023-12-31",
		},
		{
			name:       "weekly spans seven days",
			period:     "weekly",
			dateString: "2024-03-09",
			wantStart:  "2024-03-03",
			wantEnd:    "2024-03-09",
			subject:    "Weekly Financial Summary, 2024-03-03 - 2024-03-09",
		},
		{
			name:       "monthly mid-month",
			period:     "monthly",
			dateString: "2024-01-15",
			wantStart:  "2023-12-16",
			wantEnd:    "2024-01-15",
			subject:    "Monthly Financial Summary, 2023-12-16 - 2024-01-15",
		},
		{
			name:       "monthly end of month clamps",
			period:     "monthly",
			dateString: "2024-03-31",
			wantStart:  "2024-03-01",
			wantEnd:    "2024-03-31",
			subject:    "Monthly Financial Summary, 2024-03-01 - 2024-03-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ResolveWindow(tt.period, tt.dateString, now)
			if err != nil {
				t.Fatalf("ResolveWindow() error = %v", err)
			}
			if w.StartDate() != tt.wantStart || w.EndDate() != tt.wantEnd {
				t.Errorf("window = %s..%s, want %s..%s", w.StartDate(), w.EndDate(), tt.wantStart, tt.wantEnd)
			}
			if w.Subject() != tt.subject {
				t.Errorf("Subject() = %q, want %q", w.Subject(), tt.subject)
			}
		})
	}
}

func TestResolveWindow_Rejects(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		period     string
		dateString string
	}{
		{"yearly", "yearly", ""},
		{"empty period", "", ""},
		{"capitalized", "Daily", ""},
		{"bad date", "daily", "03/09/2024"},
		{"impossible date", "daily", "2024-02-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWindow(tt.period, tt.dateString, now)
			if !errors.Is(err, apperr.ErrBadRequest) {
				t.Errorf("ResolveWindow(%q, %q) error = %v, want ErrBadRequest", tt.period, tt.dateString, err)
			}
		})
	}
}
