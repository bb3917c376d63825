package services

import (
	"testing"
	"time"

	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

func TestNextRunAt_Daily(t *testing.T) {
	// Wednesday 2025-06-11, 08:00 local.
	now := time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		time string
		want time.Time
	}{
		{name: "later_today", time: "09:30", want: time.Date(2025, 6, 11, 9, 30, 0, 0, time.UTC)},
		{name: "already_passed_rolls_to_tomorrow", time: "07:00", want: time.Date(2025, 6, 12, 7, 0, 0, 0, time.UTC)},
		{name: "exact_now_rolls_to_tomorrow", time: "08:00", want: time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextRunAt(types.FrequencyDaily, nil, nil, tc.time, now)
			if !got.Equal(tc.want) {
				t.Fatalf("NextRunAt=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestNextRunAt_WeeklyOnWednesdayTargetsFollowingMonday(t *testing.T) {
	// Created on a Wednesday; Monday 09:00 must be the *following* Monday.
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC) // Wednesday
	monday := 1

	got := NextRunAt(types.FrequencyWeekly, &monday, nil, "09:00", now)

	want := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextRunAt=%v, want %v", got, want)
	}
	if got.Weekday() != time.Monday {
		t.Fatalf("expected a Monday, got %v", got.Weekday())
	}
	if !got.After(now) {
		t.Fatalf("next run must be strictly after now")
	}
}

func TestNextRunAt_WeeklySameDayTimeNotPassed(t *testing.T) {
	now := time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC) // Wednesday
	wednesday := 3

	got := NextRunAt(types.FrequencyWeekly, &wednesday, nil, "09:00", now)

	want := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextRunAt=%v, want today at 09:00 (%v)", got, want)
	}
}

func TestNextRunAt_WeeklySameDayTimePassedAdvancesFullWeek(t *testing.T) {
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC) // Wednesday
	wednesday := 3

	got := NextRunAt(types.FrequencyWeekly, &wednesday, nil, "09:00", now)

	want := time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextRunAt=%v, want next Wednesday (%v)", got, want)
	}
}

func TestNextRunAt_MonthlySkipsShortMonths(t *testing.T) {
	// Day 31 requested at the end of January: February has no 31st, so the
	// next occurrence is March 31.
	now := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	day := 31

	got := NextRunAt(types.FrequencyMonthly, nil, &day, "09:00", now)

	want := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextRunAt=%v, want %v", got, want)
	}
}

func TestNextRunAt_MonthlySameDayTimeNotPassed(t *testing.T) {
	now := time.Date(2025, 4, 15, 8, 0, 0, 0, time.UTC)
	day := 15

	got := NextRunAt(types.FrequencyMonthly, nil, &day, "09:00", now)

	want := time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextRunAt=%v, want %v", got, want)
	}
}

func TestNextRunAt_AlwaysStrictlyFuture(t *testing.T) {
	now := time.Date(2025, 6, 11, 23, 59, 0, 0, time.UTC)
	day := 11
	dow := 3

	for _, freq := range []types.Frequency{types.FrequencyDaily, types.FrequencyWeekly, types.FrequencyMonthly} {
		got := NextRunAt(freq, &dow, &day, "00:00", now)
		if !got.After(now) {
			t.Fatalf("freq %s: NextRunAt=%v not after now=%v", freq, got, now)
		}
	}
}
