package sheetsclient

import (
	"fmt"
	"strings"
	"time"
)

const (
	scheduleTimeFormat = "Mon Jan 02 2006 15:04"
	maxTabTitleLength  = 100
)

// ScheduleRow is one interview in a published schedule
type ScheduleRow struct {
	Time         time.Time
	Location     string
	Interviewers []string // Display names
	Applicants   []string // Display names, empty for an unused slot
}

// Schedule is the interview schedule of one position
type Schedule struct {
	RecruitmentName string
	PositionName    string
	Rows            []ScheduleRow
}

// TabTitle returns "<recruitment> - <position>", cut to the Sheets title limit
func (s *Schedule) TabTitle() string {
	title := strings.TrimSpace(fmt.Sprintf("%s - %s", s.RecruitmentName, s.PositionName))
	// Sheets rejects ' in unquoted A1 ranges
	title = strings.ReplaceAll(title, "'", "")
	if runes := []rune(title); len(runes) > maxTabTitleLength {
		title = string(runes[:maxTabTitleLength])
	}
	return title
}

// PublishSchedule writes the schedule to its own tab, creating the tab on first
// publish and replacing its contents afterwards
func (c *Client) PublishSchedule(spreadsheetID string, schedule *Schedule) error {
	tabTitle := schedule.TabTitle()

	exists, err := c.SheetExists(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	if exists {
		if err := c.ClearValues(spreadsheetID, fmt.Sprintf("'%s'!A1:ZZ", tabTitle)); err != nil {
			return fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	if err := c.UpdateValues(spreadsheetID, fmt.Sprintf("'%s'!A1", tabTitle), scheduleValues(schedule)); err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}

	return nil
}

// scheduleValues lays out the schedule as rows: a header, then one row per
// interview with one column per interviewer
func scheduleValues(schedule *Schedule) [][]interface{} {
	maxInterviewers := 0
	for _, row := range schedule.Rows {
		maxInterviewers = max(maxInterviewers, len(row.Interviewers))
	}

	header := []interface{}{"Time", "Location", "Applicant"}
	for i := 0; i < maxInterviewers; i++ {
		header = append(header, fmt.Sprintf("Interviewer %d", i+1))
	}

	values := make([][]interface{}, 0, len(schedule.Rows)+1)
	values = append(values, header)

	for _, row := range schedule.Rows {
		sheetRow := []interface{}{
			row.Time.Format(scheduleTimeFormat),
			row.Location,
			strings.Join(row.Applicants, ", "),
		}
		for i := 0; i < maxInterviewers; i++ {
			if i < len(row.Interviewers) {
				sheetRow = append(sheetRow, row.Interviewers[i])
			} else {
				sheetRow = append(sheetRow, "")
			}
		}
		values = append(values, sheetRow)
	}

	return values
}
