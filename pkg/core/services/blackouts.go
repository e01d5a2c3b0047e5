package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

const dateLayout = "2006-01-02"

// blackoutDays expands the configured blackout rrules over the recruitment
// window and returns a matcher for the days they cover.
// Rules without their own DTSTART are anchored at the start of the window.
func blackoutDays(
	blackouts []config.Blackout,
	recruitment model.Recruitment,
	loc *time.Location,
	logger *zap.Logger,
) (func(day time.Time) bool, error) {
	if len(blackouts) == 0 {
		return nil, nil
	}

	from := recruitment.VisibleFrom.In(loc)
	windowStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	windowEnd := recruitment.ApplicationDeadline.In(loc).AddDate(0, 0, 1)

	days := make(map[string]string)
	for i, blackout := range blackouts {
		rule, err := rrule.StrToRRule(blackout.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for blackout %d: %w", i, err)
		}
		if !strings.Contains(strings.ToUpper(blackout.RRule), "DTSTART") {
			rule.DTStart(windowStart)
		}

		for _, occurrence := range rule.Between(windowStart, windowEnd, true) {
			days[occurrence.In(loc).Format(dateLayout)] = blackout.Reason
		}

		logger.Debug("Expanded blackout",
			zap.Int("index", i),
			zap.String("rrule", blackout.RRule),
			zap.String("reason", blackout.Reason),
			zap.Int("days", len(days)))
	}

	return func(day time.Time) bool {
		_, found := days[day.In(loc).Format(dateLayout)]
		return found
	}, nil
}
