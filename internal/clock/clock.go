// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package clock supplies the current time and time-of-day conversions
// between a user's time zone and the scheduler's reference zone.
//
// Handlers take a Clock rather than calling time.Now so ticks can be
// replayed in tests with a Fixed clock.
package clock

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Fixed is a settable clock for tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now returns the frozen time.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// ParseTimeOfDay parses "HH:MM" (or "HH:MM:SS") into hour and minute.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// LoadLocation resolves a time zone name. Besides IANA names it accepts
// fixed offsets written as "UTC+5", "UTC-03:30" or "+05:00".
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	if loc, ok := parseOffsetZone(name); ok {
		return loc, nil
	}
	return time.LoadLocation(name)
}

func parseOffsetZone(name string) (*time.Location, bool) {
	s := strings.TrimPrefix(strings.TrimPrefix(strings.ToUpper(name), "UTC"), "GMT")
	if s == "" || (s[0] != '+' && s[0] != '-') {
		return nil, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	s = s[1:]

	var hours, minutes int
	var err error
	if h, m, found := strings.Cut(s, ":"); found {
		if hours, err = strconv.Atoi(h); err != nil {
			return nil, false
		}
		if minutes, err = strconv.Atoi(m); err != nil {
			return nil, false
		}
	} else if hours, err = strconv.Atoi(s); err != nil {
		return nil, false
	}
	if hours > 14 || minutes > 59 {
		return nil, false
	}
	offset := sign * (hours*3600 + minutes*60)
	return time.FixedZone(name, offset), true
}

// ReferenceHour converts a user's local time of day into the hour it falls
// on in the reference zone, on the calendar day of now.
//
// A user at 09:00 in UTC+5 maps to reference hour 4 when the reference
// zone is UTC.
func ReferenceHour(timeOfDay, userZone string, now time.Time, ref *time.Location) (int, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return 0, err
	}
	loc, err := LoadLocation(userZone)
	if err != nil {
		return 0, fmt.Errorf("invalid time zone %q: %w", userZone, err)
	}
	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	return at.In(ref).Hour(), nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// IsWeekend reports whether t falls on Saturday or Sunday in loc.
func IsWeekend(t time.Time, loc *time.Location) bool {
	switch t.In(loc).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}
