package capture

import (
	"time"

	"github.com/runterra/territory-backend/internal/models"
)

// CycleKeyFormat is the date layout used for cycle keys.
const CycleKeyFormat = "2006-01-02"

// WeeklyCycle returns the 7-day ownership window containing at. Windows
// run Monday 00:00:00 UTC to the following Monday (exclusive); an
// instant exactly at Monday midnight belongs to the cycle it begins.
func WeeklyCycle(at time.Time) models.CycleWindow {
	utc := at.UTC()
	day := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)

	// Weekday has Sunday=0, so Monday maps to 0 days back.
	daysSinceMonday := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -daysSinceMonday)
	end := start.AddDate(0, 0, 7)

	return models.CycleWindow{
		Key:   start.Format(CycleKeyFormat),
		Start: start,
		End:   end,
	}
}
