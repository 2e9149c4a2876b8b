package report_test

import (
	"testing"

	"github.com/maerty1/asterisk-stats-sub000/internal/report"
)

func TestNumbersMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"84951112233", "84951112233", true},
		{"+7 (495) 111-22-33", "84951112233", true}, // last 10 digits agree
		{"+7912345678", "8912345678", true},         // trunk prefix variance, last 9 agree
		{"84951112233", "84951112234", false},
		{"", "84951112233", false},
		{"84951112233", "", false},
		{"101", "101", true},   // short internal numbers only match exactly
		{"101", "102", false},
		{"101", "2101", false}, // below suffix length, no fuzzy match
	}

	for _, tc := range cases {
		if got := report.NumbersMatch(tc.a, tc.b); got != tc.want {
			t.Errorf("NumbersMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
		// Matching is symmetric.
		if got := report.NumbersMatch(tc.b, tc.a); got != tc.want {
			t.Errorf("NumbersMatch(%q, %q) = %v, want %v", tc.b, tc.a, got, tc.want)
		}
	}
}

func TestLastDigits(t *testing.T) {
	cases := []struct {
		number string
		n      int
		want   string
	}{
		{"+7 (495) 111-22-33", 9, "951112233"},
		{"101", 9, "101"},
		{"", 9, ""},
		{"abc", 9, ""},
	}

	for _, tc := range cases {
		if got := report.LastDigits(tc.number, tc.n); got != tc.want {
			t.Errorf("LastDigits(%q, %d) = %q, want %q", tc.number, tc.n, got, tc.want)
		}
	}
}
