package capture

import (
	"math"
	"testing"
	"time"

	"github.com/runterra/territory-backend/internal/models"
	"github.com/runterra/territory-backend/internal/spatial"
)

var testStart = time.Date(2025, 7, 7, 8, 0, 0, 0, time.UTC)

func pt(lat, lng float64, offsetSec int) models.GPSPoint {
	return models.GPSPoint{Lat: lat, Lng: lng, Time: testStart.Add(time.Duration(offsetSec) * time.Second)}
}

// equatorTrace builds points heading due east along the equator, spaced
// stepMeters apart and stepSec seconds apart.
func equatorTrace(n int, stepMeters float64, stepSec int) []models.GPSPoint {
	points := make([]models.GPSPoint, n)
	lat, lng := 0.0, 10.0
	for i := 0; i < n; i++ {
		points[i] = pt(lat, lng, i*stepSec)
		lat, lng = spatial.DestinationPoint(lat, lng, 90, stepMeters)
	}
	return points
}

func TestCalculateMetricsFewPoints(t *testing.T) {
	for _, points := range [][]models.GPSPoint{nil, {pt(0, 10, 0)}} {
		m := CalculateMetrics(points)
		if m != (models.RunMetrics{}) {
			t.Errorf("expected zero metrics for %d points, got %+v", len(points), m)
		}
	}
}

func TestCalculateMetricsSortsInput(t *testing.T) {
	// Same trace, shuffled. Metrics must not depend on caller ordering.
	ordered := equatorTrace(5, 100, 60)
	shuffled := []models.GPSPoint{ordered[3], ordered[0], ordered[4], ordered[2], ordered[1]}

	a := CalculateMetrics(ordered)
	b := CalculateMetrics(shuffled)
	if a != b {
		t.Errorf("metrics differ by input order: %+v vs %+v", a, b)
	}
}

func TestCalculateMetricsDuration(t *testing.T) {
	// A long GPS dropout in the middle must not inflate duration beyond
	// wall clock between first and last samples.
	points := []models.GPSPoint{
		pt(0, 10.000, 0),
		pt(0, 10.002, 100),
		pt(0, 10.004, 1200),
	}
	m := CalculateMetrics(points)
	if m.DurationS != 1200 {
		t.Errorf("duration = %f, want 1200", m.DurationS)
	}
}

func TestCalculateMetricsMaxSpeed(t *testing.T) {
	// ~1 km segment covered in 1 second.
	points := []models.GPSPoint{
		pt(0, 10.000, 0),
		pt(0, 10.009, 1),
	}
	m := CalculateMetrics(points)
	if m.MaxSpeedMS < 900 || m.MaxSpeedMS > 1100 {
		t.Errorf("max speed = %f, want ~1000", m.MaxSpeedMS)
	}
}

func TestCalculateMetricsSkipsZeroElapsed(t *testing.T) {
	// Duplicate timestamps still contribute distance but must not
	// produce an infinite speed.
	points := []models.GPSPoint{
		pt(0, 10.000, 0),
		pt(0, 10.001, 0),
		pt(0, 10.002, 60),
	}
	m := CalculateMetrics(points)
	if math.IsInf(m.MaxSpeedMS, 1) || math.IsNaN(m.MaxSpeedMS) {
		t.Fatalf("max speed not finite: %f", m.MaxSpeedMS)
	}
	if m.DistanceM < 200 {
		t.Errorf("distance = %f, expected both segments counted", m.DistanceM)
	}
}

func TestCalculateMetricsPace(t *testing.T) {
	m := CalculateMetrics(equatorTrace(11, 100, 30))
	// 1000 m in 300 s -> 300 s/km.
	if math.Abs(m.AvgPaceSPerKm-300) > 5 {
		t.Errorf("pace = %f, want ~300", m.AvgPaceSPerKm)
	}

	zero := CalculateMetrics([]models.GPSPoint{pt(0, 10, 0), pt(0, 10, 60)})
	if zero.AvgPaceSPerKm != 0 {
		t.Errorf("pace for zero distance = %f, want 0", zero.AvgPaceSPerKm)
	}
}

func TestValidateRun(t *testing.T) {
	tests := []struct {
		name       string
		metrics    models.RunMetrics
		wantValid  bool
		wantReason models.RejectReason
	}{
		{
			name:       "valid run",
			metrics:    models.RunMetrics{DistanceM: 2200, DurationS: 1200, MaxSpeedMS: 3.2},
			wantValid:  true,
			wantReason: models.RejectNone,
		},
		{
			name:       "too short",
			metrics:    models.RunMetrics{DistanceM: 299.9, DurationS: 600, MaxSpeedMS: 2},
			wantValid:  false,
			wantReason: models.RejectInsufficientDistance,
		},
		{
			name:       "too quick",
			metrics:    models.RunMetrics{DistanceM: 500, DurationS: 119, MaxSpeedMS: 5},
			wantValid:  false,
			wantReason: models.RejectInsufficientDuration,
		},
		{
			name:       "implausible speed",
			metrics:    models.RunMetrics{DistanceM: 1000, DurationS: 300, MaxSpeedMS: 1000},
			wantValid:  false,
			wantReason: models.RejectUnrealisticSpeed,
		},
		{
			name:       "one km over five minutes passes",
			metrics:    models.RunMetrics{DistanceM: 1000, DurationS: 300, MaxSpeedMS: 1000.0 / 300.0},
			wantValid:  true,
			wantReason: models.RejectNone,
		},
		{
			name:       "distance check wins over speed check",
			metrics:    models.RunMetrics{DistanceM: 100, DurationS: 60, MaxSpeedMS: 50},
			wantValid:  false,
			wantReason: models.RejectInsufficientDistance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, reason := ValidateRun(tt.metrics)
			if valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", valid, tt.wantValid)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}
