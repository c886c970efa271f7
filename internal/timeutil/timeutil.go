// Package timeutil provides wall-clock helpers for the fixed UTC+7 (WIB)
// offset the owner lives in. The offset is fixed on purpose: no DST and no
// timezone database dependency.
package timeutil

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// WIB is the fixed UTC+7 offset used for all user-facing times.
var WIB = time.FixedZone("WIB", 7*60*60)

// MinuteOfDayWIB returns the minute of day (0..1439) of t in UTC+7,
// computed from the wall-clock UTC hour and minute.
func MinuteOfDayWIB(t time.Time) int {
	utc := t.UTC()
	return ((utc.Hour()+7)*60 + utc.Minute()) % minutesPerDay
}

// FormatWIB renders t as "HH:MM WIB".
func FormatWIB(t time.Time) string {
	m := MinuteOfDayWIB(t)
	return fmt.Sprintf("%02d:%02d WIB", m/60, m%60)
}

// Window is a daily time range in minutes of day, evaluated in UTC+7.
// When Start > End the window wraps midnight (e.g. 21:00 through 05:00).
type Window struct {
	Start int
	End   int
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	m := MinuteOfDayWIB(t)
	if w.Start == w.End {
		return false
	}
	if w.Start < w.End {
		return m >= w.Start && m < w.End
	}
	return m >= w.Start || m < w.End
}
