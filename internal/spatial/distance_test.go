package spatial

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 51.5, lon1: -0.1, lat2: 51.5, lon2: -0.1,
			want: 0, tolerance: 0.001,
		},
		{
			name: "one degree of longitude at the equator",
			lat1: 0, lon1: 0, lat2: 0, lon2: 1,
			want: 111195, tolerance: 100,
		},
		{
			name: "paris to london",
			lat1: 48.8566, lon1: 2.3522, lat2: 51.5074, lon2: -0.1278,
			want: 343500, tolerance: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("distance = %f, want %f ± %f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDestinationPointRoundTrip(t *testing.T) {
	lat, lon := 40.0, -73.0
	destLat, destLon := DestinationPoint(lat, lon, 90, 5000)

	back := HaversineDistance(lat, lon, destLat, destLon)
	if math.Abs(back-5000) > 1 {
		t.Errorf("round-trip distance = %f, want 5000", back)
	}

	if b := Bearing(lat, lon, destLat, destLon); math.Abs(b-90) > 1 {
		t.Errorf("bearing = %f, want ~90", b)
	}
}
