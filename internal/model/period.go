package model

import (
	"fmt"
	"strings"
	"time"
)

type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

const (
	MaxDayMarker  = 31
	MaxWeekMarker = 53
)

func (c Cadence) IsValid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly:
		return true
	default:
		return false
	}
}

func (c Cadence) Suffix() string {
	switch c {
	case CadenceDaily:
		return "D"
	case CadenceWeekly:
		return "W"
	default:
		return "?"
	}
}

func ParseCadence(raw string) (Cadence, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "daily", "day", "d":
		return CadenceDaily, nil
	case "weekly", "week", "w":
		return CadenceWeekly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCadence, raw)
	}
}

// Period is the recurrence tag of a task together with its marker: the last
// day of month (daily) or ISO week (weekly) the task's done flag was
// validated for. The cadence of a period is fixed at construction.
type Period struct {
	cadence Cadence
	marker  uint8
}

func Daily(marker uint8) Period  { return Period{cadence: CadenceDaily, marker: marker} }
func Weekly(marker uint8) Period { return Period{cadence: CadenceWeekly, marker: marker} }

func NewPeriod(cadence Cadence, marker uint8) (Period, error) {
	p := Period{cadence: cadence, marker: marker}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodAt seeds a period of the given cadence from now.
func PeriodAt(cadence Cadence, now time.Time) Period {
	return Period{cadence: cadence, marker: Current(cadence, now)}
}

func (p Period) Cadence() Cadence { return p.cadence }
func (p Period) Marker() uint8    { return p.marker }
func (p Period) IsDaily() bool    { return p.cadence == CadenceDaily }

func (p Period) Validate() error {
	var max uint8
	switch p.cadence {
	case CadenceDaily:
		max = MaxDayMarker
	case CadenceWeekly:
		max = MaxWeekMarker
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCadence, p.cadence)
	}
	if p.marker < 1 || p.marker > max {
		return fmt.Errorf("%w: %s marker %d outside 1..%d", ErrInvalidMarker, p.cadence, p.marker, max)
	}
	return nil
}

func (p Period) String() string {
	switch p.cadence {
	case CadenceDaily:
		return fmt.Sprintf("Daily(%d)", p.marker)
	case CadenceWeekly:
		return fmt.Sprintf("Weekly(%d)", p.marker)
	default:
		return fmt.Sprintf("Period(%q, %d)", p.cadence, p.marker)
	}
}

// Current returns the period value of now for a cadence: the day of month
// for daily, the ISO week of year for weekly.
func Current(cadence Cadence, now time.Time) uint8 {
	if cadence == CadenceWeekly {
		_, week := now.ISOWeek()
		return uint8(week)
	}
	return uint8(now.Day())
}

// Stale reports whether the marker has fallen behind now. The comparison is
// a plain numeric one, so a month or year boundary (31 -> 1, 52 -> 1) is not
// seen as a rollover.
func (p Period) Stale(now time.Time) bool {
	return p.marker < Current(p.cadence, now)
}

// Refresh resets Done and advances the marker when the task's period has
// rolled over. It reports whether the task changed.
func (t *Task) Refresh(now time.Time) bool {
	if !t.Period.Stale(now) {
		return false
	}
	t.Done = false
	t.Period.marker = Current(t.Period.cadence, now)
	return true
}
