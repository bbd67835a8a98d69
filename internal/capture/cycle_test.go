package capture

import (
	"testing"
	"time"
)

func TestWeeklyCycle(t *testing.T) {
	tests := []struct {
		name      string
		at        time.Time
		wantKey   string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid-week sunday",
			at:        time.Date(2025, 12, 28, 12, 34, 56, 0, time.UTC),
			wantKey:   "2025-12-22",
			wantStart: time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monday midnight starts new cycle",
			at:        time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
			wantKey:   "2025-12-29",
			wantStart: time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monday late evening",
			at:        time.Date(2025, 6, 2, 23, 59, 59, 0, time.UTC),
			wantKey:   "2025-06-02",
			wantStart: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "non-utc input normalized",
			at:        time.Date(2025, 12, 29, 5, 0, 0, 0, time.FixedZone("UTC+6", 6*3600)),
			wantKey:   "2025-12-22",
			wantStart: time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeeklyCycle(tt.at)
			if got.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", got.Key, tt.wantKey)
			}
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", got.End, tt.wantEnd)
			}
		})
	}
}

func TestWeeklyCycleContains(t *testing.T) {
	w := WeeklyCycle(time.Date(2025, 12, 24, 10, 0, 0, 0, time.UTC))

	if !w.Contains(w.Start) {
		t.Error("window should contain its own start")
	}
	if w.Contains(w.End) {
		t.Error("window end is exclusive")
	}
}
