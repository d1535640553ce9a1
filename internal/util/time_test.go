package util

import (
	"testing"
	"time"
)

func TestFormatCountdown(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		seconds  int64
		expected string
	}{
		"under a minute": {
			seconds:  59,
			expected: "less than a minute",
		},
		"negative": {
			seconds:  -10,
			expected: "less than a minute",
		},
		"single units": {
			seconds:  86400 + 3600 + 60,
			expected: "1 day 1 hour 1 minute",
		},
		"plural units": {
			seconds:  2*86400 + 5*3600 + 30*60,
			expected: "2 days 5 hours 30 minutes",
		},
		"skips zero hours": {
			seconds:  3*86400 + 15*60,
			expected: "3 days 15 minutes",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := FormatCountdown(tc.seconds); got != tc.expected {
				t.Fatalf("FormatCountdown(%d) = %q, expected %q", tc.seconds, got, tc.expected)
			}
		})
	}
}

func TestDiscordTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0)
	if got := FormatAirDate(ts); got != "<t:1700000000:F>" {
		t.Fatalf("FormatAirDate() = %q", got)
	}
	if got := FormatRelative(ts); got != "<t:1700000000:R>" {
		t.Fatalf("FormatRelative() = %q", got)
	}
	if got := FormatCompactDateTime(ts); got != "<t:1700000000:f>" {
		t.Fatalf("FormatCompactDateTime() = %q", got)
	}
}

func TestCurrentSeason(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		month      time.Month
		season     string
		yearOffset int
	}{
		"january":   {month: time.January, season: "WINTER"},
		"march":     {month: time.March, season: "SPRING"},
		"july":      {month: time.July, season: "SUMMER"},
		"october":   {month: time.October, season: "FALL"},
		"december":  {month: time.December, season: "WINTER", yearOffset: 1},
		"september": {month: time.September, season: "FALL"},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			season, year := CurrentSeason(time.Date(2025, tc.month, 15, 0, 0, 0, 0, time.UTC))
			if season != tc.season || year != 2025+tc.yearOffset {
				t.Fatalf("CurrentSeason(%s) = %s %d, expected %s %d", tc.month, season, year, tc.season, 2025+tc.yearOffset)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"RELEASING":        "Releasing",
		"NOT_YET_RELEASED": "Not Yet Released",
		"TV_SHORT":         "Tv Short",
		"":                 "",
	}
	for in, expected := range cases {
		if got := TitleCase(in); got != expected {
			t.Fatalf("TitleCase(%q) = %q, expected %q", in, got, expected)
		}
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := TruncateString("short", 10); got != "short" {
		t.Fatalf("TruncateString() = %q", got)
	}
	if got := TruncateString("abcdefghij", 8); got != "abcde..." {
		t.Fatalf("TruncateString() = %q", got)
	}
}
