package api

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeRangeDefaultsToLast24h(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/queues/1001/stats", nil)

	from, to, err := timeRange(r)
	if err != nil {
		t.Fatalf("timeRange: %v", err)
	}
	if got := to.Sub(from); got != 24*time.Hour {
		t.Errorf("range span = %v, want 24h", got)
	}
}

func TestTimeRangeParsesExplicitBounds(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/queues/1001/stats?start_date=2025-03-10T09:00:00Z&end_date=2025-03-10T17:00:00Z", nil)

	from, to, err := timeRange(r)
	if err != nil {
		t.Fatalf("timeRange: %v", err)
	}
	if !from.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", from)
	}
	if !to.Equal(time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("to = %v", to)
	}
}

func TestTimeRangeRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"bad start", "?start_date=yesterday"},
		{"bad end", "?end_date=2025-13-45"},
		{"inverted range", "?start_date=2025-03-10T17:00:00Z&end_date=2025-03-10T09:00:00Z"},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/v1/ranking"+tc.query, nil)
		if _, _, err := timeRange(r); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}
