package booking

import (
	"slices"
	"time"

	"github.com/Ammara9/GymBooking/models"
)

// Upcoming keeps the classes starting strictly after now, earliest first.
// A class starting exactly at now is neither upcoming nor past.
func Upcoming(classes []models.GymClass, now time.Time) []models.GymClass {
	out := []models.GymClass{}
	for _, c := range classes {
		if c.StartTime.After(now) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b models.GymClass) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return out
}

// Past keeps the classes that started strictly before now, most recent first.
func Past(classes []models.GymClass, now time.Time) []models.GymClass {
	out := []models.GymClass{}
	for _, c := range classes {
		if c.StartTime.Before(now) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b models.GymClass) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return out
}
