package allocator

import (
	"slices"
	"time"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// Defaults for block generation
const (
	DefaultInterval       = 30 * time.Minute
	DefaultDailyStartHour = 8
	DefaultDailyEndHour   = 23
)

// GenerateBlocks walks [start, end) in steps of interval and groups consecutive
// steps with the same set of available interviewers into one block.
//
// An interviewer is unavailable for a step when one of their occupied timeslots
// overlaps it (half-open: a timeslot ending exactly at the step start does not count).
// Blocks where nobody is available are dropped since no interview can be held in them.
func GenerateBlocks(
	positionID int64,
	interviewers []model.UserID,
	start, end time.Time,
	unavailability []model.OccupiedTimeslot,
	interval time.Duration,
) []*TimeBlock {
	if interval <= 0 {
		interval = DefaultInterval
	}

	interviewers = sortedUserIDs(interviewers)
	byUser := groupByUser(unavailability)

	var blocks []*TimeBlock
	var current *TimeBlock

	for stepStart := start; stepStart.Before(end); stepStart = stepStart.Add(interval) {
		stepEnd := stepStart.Add(interval)
		if stepEnd.After(end) {
			stepEnd = end
		}

		available := availableDuring(interviewers, byUser, stepStart, stepEnd)

		// Same set as the previous step: extend instead of fragmenting
		if current != nil && slices.Equal(current.AvailableInterviewers, available) {
			current.End = stepEnd
			continue
		}

		current = &TimeBlock{
			PositionID:            positionID,
			Start:                 stepStart,
			End:                   stepEnd,
			AvailableInterviewers: available,
		}
		blocks = append(blocks, current)
	}

	return slices.DeleteFunc(blocks, func(b *TimeBlock) bool {
		return b.AvailableCount() == 0
	})
}

// availableDuring returns the interviewers without an occupied timeslot overlapping [start, end)
func availableDuring(
	interviewers []model.UserID,
	byUser map[model.UserID][]model.OccupiedTimeslot,
	start, end time.Time,
) []model.UserID {
	available := make([]model.UserID, 0, len(interviewers))
	for _, user := range interviewers {
		busy := false
		for _, slot := range byUser[user] {
			if slot.Overlaps(start, end) {
				busy = true
				break
			}
		}
		if !busy {
			available = append(available, user)
		}
	}
	return available
}

// BlockWindow describes the date range and daily hours blocks are generated for
type BlockWindow struct {
	PositionID     int64
	Interviewers   []model.UserID
	Unavailability []model.OccupiedTimeslot

	// From and Until bound the generated blocks
	From  time.Time
	Until time.Time

	// DailyStartHour and DailyEndHour give the interview hours of each day,
	// interpreted in Location
	DailyStartHour int
	DailyEndHour   int
	Location       *time.Location

	Interval time.Duration

	// ExcludeDay skips whole days (e.g. configured blackout days). Optional.
	ExcludeDay func(day time.Time) bool
}

// GenerateRecruitmentBlocks generates blocks for every calendar day between
// From and Until, restricted to the daily interview hours, in date order.
func GenerateRecruitmentBlocks(window BlockWindow) []*TimeBlock {
	loc := window.Location
	if loc == nil {
		loc = time.Local
	}
	interval := window.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	if !window.From.Before(window.Until) {
		return nil
	}

	from := window.From.In(loc)
	until := window.Until.In(loc)

	var blocks []*TimeBlock
	for day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc); day.Before(until); day = day.AddDate(0, 0, 1) {
		if window.ExcludeDay != nil && window.ExcludeDay(day) {
			continue
		}

		dayStart := time.Date(day.Year(), day.Month(), day.Day(), window.DailyStartHour, 0, 0, 0, loc)
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(), window.DailyEndHour, 0, 0, 0, loc)

		start := alignUp(dayStart, from, interval)
		end := dayEnd
		if until.Before(end) {
			end = until
		}
		if !start.Before(end) {
			continue
		}

		blocks = append(blocks, GenerateBlocks(
			window.PositionID,
			window.Interviewers,
			start,
			end,
			window.Unavailability,
			interval,
		)...)
	}

	return blocks
}

// alignUp returns the first point on the grid anchor + n*interval (n >= 0) that is not before t
func alignUp(anchor, t time.Time, interval time.Duration) time.Time {
	if !t.After(anchor) {
		return anchor
	}
	steps := (t.Sub(anchor) + interval - 1) / interval
	return anchor.Add(steps * interval)
}
