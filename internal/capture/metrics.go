package capture

import (
	"sort"

	"github.com/runterra/territory-backend/internal/models"
	"github.com/runterra/territory-backend/internal/spatial"
)

// Validation thresholds. A sustained speed above 6.5 m/s (~23 km/h) is
// implausible for a runner and treated as cheating.
const (
	MinRunDistanceM = 300.0
	MinRunDurationS = 120.0
	MaxRunSpeedMS   = 6.5
)

// sortByTime returns a copy of points in ascending time order. Caller
// ordering is never trusted; the stable sort keeps duplicate-timestamp
// samples deterministic.
func sortByTime(points []models.GPSPoint) []models.GPSPoint {
	sorted := make([]models.GPSPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

// CalculateMetrics derives the authoritative metrics for a raw trace.
// Fewer than two points yields all-zero metrics.
func CalculateMetrics(points []models.GPSPoint) models.RunMetrics {
	if len(points) < 2 {
		return models.RunMetrics{}
	}

	pts := sortByTime(points)

	var totalDistance, maxSpeed float64
	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		segDist := spatial.HaversineDistance(prev.Lat, prev.Lng, cur.Lat, cur.Lng)
		totalDistance += segDist

		// Zero or negative elapsed time would make the instantaneous
		// speed meaningless, so those segments only count for distance.
		elapsed := cur.Time.Sub(prev.Time).Seconds()
		if elapsed > 0 {
			if speed := segDist / elapsed; speed > maxSpeed {
				maxSpeed = speed
			}
		}
	}

	// Wall-clock duration, not the sum of segment gaps, so GPS dropouts
	// don't inflate it.
	duration := pts[len(pts)-1].Time.Sub(pts[0].Time).Seconds()

	var pace float64
	if totalDistance > 0 {
		pace = duration / (totalDistance / 1000)
	}

	return models.RunMetrics{
		DistanceM:     totalDistance,
		DurationS:     duration,
		AvgPaceSPerKm: pace,
		MaxSpeedMS:    maxSpeed,
	}
}

// ValidateRun applies the anti-cheat checks in fixed order; the first
// failing check determines the reject reason.
func ValidateRun(metrics models.RunMetrics) (bool, models.RejectReason) {
	if metrics.DistanceM < MinRunDistanceM {
		return false, models.RejectInsufficientDistance
	}
	if metrics.DurationS < MinRunDurationS {
		return false, models.RejectInsufficientDuration
	}
	if metrics.MaxSpeedMS > MaxRunSpeedMS {
		return false, models.RejectUnrealisticSpeed
	}
	return true, models.RejectNone
}
