package service

import (
	"fmt"
	"sort"
	"time"

	"evcharge/internal/models"
)

// clockMinutes parses an "HH:mm" 24-hour time into minutes since midnight.
func clockMinutes(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, NewError(CodeInvalidTimeFormat, fmt.Sprintf("invalid time format: %q, use HH:mm (24h)", hhmm))
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateSchedule checks a station's weekly operating windows: times
// parse as HH:mm, capacity is non-negative, each window ends after it
// starts, and windows on the same day do not overlap. Windows on
// different days never conflict. Pure; called before any schedule is
// persisted.
func ValidateSchedule(windows []models.ScheduleWindow) error {
	type span struct{ start, end int }
	byDay := make(map[int][]span)

	for _, w := range windows {
		if w.SlotCount < 0 {
			return NewError(CodeInvalidCapacity, "slot count must be >= 0")
		}
		start, err := clockMinutes(w.StartTime)
		if err != nil {
			return err
		}
		end, err := clockMinutes(w.EndTime)
		if err != nil {
			return err
		}
		if end <= start {
			return NewError(CodeInvalidWindowOrder, "end time must be after start time")
		}
		byDay[w.DayOfWeek] = append(byDay[w.DayOfWeek], span{start, end})
	}

	for _, spans := range byDay {
		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
		for i := 1; i < len(spans); i++ {
			if spans[i].start < spans[i-1].end {
				return NewError(CodeOverlappingWindow, "schedule windows must not overlap for the same day")
			}
		}
	}
	return nil
}

// windowCovers reports whether the window is open at the given UTC
// instant: matching day-of-week, start <= time-of-day < end, and a
// positive advertised capacity.
func windowCovers(w models.ScheduleWindow, at time.Time) bool {
	if w.SlotCount <= 0 {
		return false
	}
	at = at.UTC()
	if int(at.Weekday()) != w.DayOfWeek {
		return false
	}
	start, err := clockMinutes(w.StartTime)
	if err != nil {
		return false
	}
	end, err := clockMinutes(w.EndTime)
	if err != nil {
		return false
	}
	minutes := at.Hour()*60 + at.Minute()
	return start <= minutes && minutes < end
}
