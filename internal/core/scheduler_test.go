package core

import (
	"testing"
	"time"
)

func TestStartOfDayKeepsLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2026, 3, 14, 20, 0, 0, 0, est), time.Date(2026, 3, 14, 0, 0, 0, 0, est)},
		{time.Date(2026, 3, 14, 0, 0, 0, 0, est), time.Date(2026, 3, 14, 0, 0, 0, 0, est)},
		{time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := startOfDay(tt.in); !got.Equal(tt.want) {
			t.Errorf("startOfDay(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
