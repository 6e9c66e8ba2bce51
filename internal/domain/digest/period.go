package digest

import (
	"fmt"
	"strings"
	"time"

	"emailsummary/internal/domain/subscription"
	"emailsummary/internal/shared/apperr"
)

const dateLayout = "2006-01-02"

// Window is the inclusive date range a digest covers.
type Window struct {
	Cadence subscription.Cadence
	Start   time.Time
	End     time.Time
}

func (w Window) StartDate() string { return w.Start.Format(dateLayout) }
func (w Window) EndDate() string   { return w.End.Format(dateLayout) }

// Label is the date line: a single day for daily digests, a range otherwise.
func (w Window) Label() string {
	if w.Cadence == subscription.CadenceDaily {
		return w.EndDate()
	}
	return w.StartDate() + " - " + w.EndDate()
}

// Title is "Daily Financial Summary" and so on.
func (w Window) Title() string {
	name := string(w.Cadence)
	return strings.ToUpper(name[:1]) + name[1:] + " Financial Summary"
}

// Subject is the email subject line.
func (w Window) Subject() string {
	return w.Title() + ", " + w.Label()
}

// ResolveWindow turns a period name and optional YYYY-MM-DD override into a window.
// Without an override the window ends yesterday in now's location.
func ResolveWindow(period, dateString string, now time.Time) (Window, error) {
	cadence := subscription.Cadence(period)
	if _, ok := cadence.Column(); !ok {
		return Window{}, apperr.BadRequest(fmt.Sprintf("unsupported period %q", period))
	}

	loc := now.Location()
	var end time.Time
	if dateString != "" {
		parsed, err := time.ParseInLocation(dateLayout, dateString, loc)
		if err != nil {
			return Window{}, apperr.BadRequest(fmt.Sprintf("invalid dateString %q", dateString))
		}
		end = parsed
	} else {
		y, m, d := now.AddDate(0, 0, -1).Date()
		end = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}

	start := end
	switch cadence {
	case subscription.CadenceWeekly:
		start = end.AddDate(0, 0, -6)
	case subscription.CadenceMonthly:
		start = previousMonthClamped(end).AddDate(0, 0, 1)
	}

	return Window{Cadence: cadence, Start: start, End: end}, nil
}

// previousMonthClamped returns the same day one month earlier, clamped to
// that month's last day (Mar 31 -> Feb 29 in a leap year).
func previousMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	firstOfPrev := time.Date(y, m-1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfPrev.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfPrev.Year(), firstOfPrev.Month(), d, 0, 0, 0, 0, t.Location())
}
