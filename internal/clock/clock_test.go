// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package clock

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	c := NewFixed(start)
	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}
	c.Advance(90 * time.Minute)
	if want := start.Add(90 * time.Minute); !c.Now().Equal(want) {
		t.Errorf("after Advance, Now() = %v, want %v", c.Now(), want)
	}
	c.Set(start)
	if !c.Now().Equal(start) {
		t.Errorf("after Set, Now() = %v", c.Now())
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input     string
		hour, min int
		wantErr   bool
	}{
		{"09:00", 9, 0, false},
		{"23:59", 23, 59, false},
		{"07:30:00", 7, 30, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"9", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h, m, err := ParseTimeOfDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && (h != tt.hour || m != tt.min) {
				t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d", tt.input, h, m, tt.hour, tt.min)
			}
		})
	}
}

func TestLoadLocationOffsets(t *testing.T) {
	tests := []struct {
		name       string
		wantOffset int
	}{
		{"UTC+5", 5 * 3600},
		{"UTC-03:30", -(3*3600 + 30*60)},
		{"+05:45", 5*3600 + 45*60},
		{"GMT-8", -8 * 3600},
		{"", 0},
		{"UTC", 0},
	}

	ref := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.name)
			if err != nil {
				t.Fatalf("LoadLocation(%q) error = %v", tt.name, err)
			}
			if _, off := ref.In(loc).Zone(); off != tt.wantOffset {
				t.Errorf("offset = %d, want %d", off, tt.wantOffset)
			}
		})
	}

	if _, err := LoadLocation("Not/AZone"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestReferenceHour(t *testing.T) {
	now := time.Date(2026, 6, 10, 4, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		timeOfDay string
		zone      string
		ref       *time.Location
		want      int
	}{
		{"utc plus five at nine is four utc", "09:00", "UTC+5", time.UTC, 4},
		{"same zone", "09:00", "UTC", time.UTC, 9},
		{"negative offset wraps forward", "20:00", "UTC-8", time.UTC, 4},
		{"minutes are truncated to the hour", "09:45", "UTC+5", time.UTC, 4},
		{"reference zone not utc", "09:00", "UTC", time.FixedZone("R", 2*3600), 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReferenceHour(tt.timeOfDay, tt.zone, now, tt.ref)
			if err != nil {
				t.Fatalf("ReferenceHour() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReferenceHour() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := ReferenceHour("bad", "UTC", now, time.UTC); err == nil {
		t.Error("expected error for malformed time of day")
	}
	if _, err := ReferenceHour("09:00", "Nowhere/Land", now, time.UTC); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestIsWeekend(t *testing.T) {
	sat := time.Date(2026, 6, 13, 12, 0, 0, 0, time.UTC)
	mon := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	if !IsWeekend(sat, time.UTC) {
		t.Error("2026-06-13 is a Saturday")
	}
	if IsWeekend(mon, time.UTC) {
		t.Error("2026-06-15 is a Monday")
	}
	// Sunday 23:00 UTC is already Monday in UTC+5.
	sunLate := time.Date(2026, 6, 14, 23, 0, 0, 0, time.UTC)
	if IsWeekend(sunLate, time.FixedZone("UTC+5", 5*3600)) {
		t.Error("expected Monday in UTC+5")
	}
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 6, 14, 23, 30, 0, 0, time.UTC)
	got := StartOfDay(ts, time.UTC)
	if want := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}
