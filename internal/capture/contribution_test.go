package capture

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/runterra/territory-backend/internal/models"
	"github.com/runterra/territory-backend/internal/spatial"
)

func TestComputeContributionsEmpty(t *testing.T) {
	for _, points := range [][]models.GPSPoint{nil, {pt(0, 10, 0)}} {
		got, err := ComputeContributions(points, 9, testStart, &fakeIndexer{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Cells) != 0 {
			t.Errorf("expected no contributions for %d points, got %v", len(points), got.Cells)
		}
		if got.Cycle.Key == "" {
			t.Error("cycle window must still be resolved")
		}
	}
}

func TestComputeContributionsConservation(t *testing.T) {
	// For a single segment the attributed shares must sum to the
	// segment's haversine distance no matter how many cells it spans.
	a := pt(0, 10.0005, 0)
	b := pt(0, 10.0048, 300)
	want := spatial.HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)

	got, err := ComputeContributions([]models.GPSPoint{a, b}, 9, b.Time, &fakeIndexer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Cells) < 2 {
		t.Fatalf("expected segment to span multiple cells, got %d", len(got.Cells))
	}

	var sum float64
	for _, c := range got.Cells {
		if c.DistanceM < 0 {
			t.Errorf("negative contribution for %s: %f", c.Cell, c.DistanceM)
		}
		sum += c.DistanceM
	}
	if math.Abs(sum-want) > 1e-6 {
		t.Errorf("attributed %f m, segment is %f m", sum, want)
	}
}

func TestComputeContributionsSingleCell(t *testing.T) {
	a := pt(0, 10.0001, 0)
	b := pt(0, 10.0008, 60)

	got, err := ComputeContributions([]models.GPSPoint{a, b}, 9, b.Time, &fakeIndexer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Cells) != 1 {
		t.Fatalf("expected one cell, got %v", got.Cells)
	}
	want := spatial.HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)
	if math.Abs(got.Cells[0].DistanceM-want) > 1e-9 {
		t.Errorf("distance = %f, want %f", got.Cells[0].DistanceM, want)
	}
	if !got.Cells[0].FirstAt.Equal(a.Time) {
		t.Errorf("firstAt = %v, want segment start %v", got.Cells[0].FirstAt, a.Time)
	}
}

func TestComputeContributionsEarliestFirstAt(t *testing.T) {
	// Out-and-back: the runner re-enters the first cell later. firstAt
	// must stay at the earliest entry.
	points := []models.GPSPoint{
		pt(0, 10.0005, 0),
		pt(0, 10.0015, 100),
		pt(0, 10.0005, 200),
	}
	got, err := ComputeContributions(points, 9, testStart, &fakeIndexer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, c := range got.Cells {
		if c.Cell == latticeCell(10000) {
			if !c.FirstAt.Equal(testStart) {
				t.Errorf("firstAt = %v, want earliest entry %v", c.FirstAt, testStart)
			}
			return
		}
	}
	t.Fatalf("cell %s missing from %v", latticeCell(10000), got.Cells)
}

func TestComputeContributionsSortedAndDeterministic(t *testing.T) {
	points := []models.GPSPoint{
		pt(0, 10.0035, 0),
		pt(0, 10.0005, 120),
		pt(0, 10.0025, 240),
	}

	first, err := ComputeContributions(points, 9, testStart, &fakeIndexer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sort.SliceIsSorted(first.Cells, func(i, j int) bool {
		return first.Cells[i].Cell < first.Cells[j].Cell
	}) {
		t.Errorf("cells not sorted: %v", first.Cells)
	}

	for i := 0; i < 5; i++ {
		again, err := ComputeContributions(points, 9, testStart, &fakeIndexer{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestComputeContributionsCycleFromEndTime(t *testing.T) {
	endOfRun := time.Date(2025, 12, 28, 12, 0, 0, 0, time.UTC)
	points := []models.GPSPoint{
		{Lat: 0, Lng: 10.0005, Time: endOfRun.Add(-10 * time.Minute)},
		{Lat: 0, Lng: 10.0015, Time: endOfRun},
	}

	got, err := ComputeContributions(points, 9, endOfRun, &fakeIndexer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cycle.Key != "2025-12-22" {
		t.Errorf("cycle key = %q, want 2025-12-22", got.Cycle.Key)
	}
}

func TestComputeContributionsPathFailure(t *testing.T) {
	idx := &fakeIndexer{failFrom: latticeCell(10000), failTo: latticeCell(10003)}
	points := []models.GPSPoint{
		pt(0, 10.0005, 0),
		pt(0, 10.0035, 120),
	}
	_, err := ComputeContributions(points, 9, testStart, idx)
	if !errors.Is(err, errNoPath) {
		t.Errorf("expected path failure to propagate, got %v", err)
	}
}
