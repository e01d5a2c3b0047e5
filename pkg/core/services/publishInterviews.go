package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/clients/sheetsclient"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

// SchedulePublisher writes a schedule to a spreadsheet
type SchedulePublisher interface {
	PublishSchedule(spreadsheetID string, schedule *sheetsclient.Schedule) error
}

// PublishInterviewsStore defines the database operations needed to publish a schedule
type PublishInterviewsStore interface {
	db.PositionStore
	db.ApplicationStore
	db.InterviewStore
	db.UserStore
}

// PublishInterviews builds the interview schedule of a position and writes it to the
// configured spreadsheet. Interviews shared with other positions in the group are
// included when one of the position's applicants attends them.
func PublishInterviews(
	ctx context.Context,
	database PublishInterviewsStore,
	publisher SchedulePublisher,
	cfg *config.Config,
	logger *zap.Logger,
	positionID int64,
) (*sheetsclient.Schedule, error) {
	if cfg.ScheduleSheetID == "" {
		return nil, fmt.Errorf("scheduleSheetID is not configured")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	schedule, err := buildSchedule(ctx, database, logger, positionID)
	if err != nil {
		return nil, err
	}
	for i := range schedule.Rows {
		schedule.Rows[i].Time = schedule.Rows[i].Time.In(loc)
	}

	logger.Info("Publishing schedule",
		zap.String("tab", schedule.TabTitle()),
		zap.Int("interviews", len(schedule.Rows)))

	if err := publisher.PublishSchedule(cfg.ScheduleSheetID, schedule); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	logger.Info("Schedule published", zap.String("spreadsheet_id", cfg.ScheduleSheetID))

	return schedule, nil
}

func buildSchedule(
	ctx context.Context,
	database PublishInterviewsStore,
	logger *zap.Logger,
	positionID int64,
) (*sheetsclient.Schedule, error) {
	position, err := database.GetPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch position %d: %w", positionID, err)
	}

	var (
		recruitment *model.Recruitment
		apps        []model.Application
		interviews  []model.Interview
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recruitment, err = database.GetRecruitmentWindow(gctx, positionID)
		if err != nil {
			return fmt.Errorf("failed to fetch recruitment: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		apps, err = database.ApplicationsForPosition(gctx, positionID)
		if err != nil {
			return fmt.Errorf("failed to fetch applications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		interviews, err = database.InterviewsForPosition(gctx, positionID)
		if err != nil {
			return fmt.Errorf("failed to fetch interviews: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	linked := linkedApplications(apps)

	// Shared interviews created for another position in the group
	if position.HasSharedInterviews() {
		shared, err := sharedInterviews(ctx, database, recruitment.ID, interviews, linked)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, shared...)
	}

	slices.SortStableFunc(interviews, func(a, b model.Interview) int {
		return a.Time.Compare(b.Time)
	})

	var userIDs []model.UserID
	for _, iv := range interviews {
		userIDs = append(userIDs, iv.Interviewers...)
	}
	for _, app := range apps {
		userIDs = append(userIDs, app.ApplicantID)
	}

	users, err := database.GetUsers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	names := displayNames(users)

	schedule := &sheetsclient.Schedule{
		RecruitmentName: recruitment.Name,
		PositionName:    position.Name,
		Rows:            make([]sheetsclient.ScheduleRow, 0, len(interviews)),
	}
	for _, iv := range interviews {
		row := sheetsclient.ScheduleRow{
			Time:     iv.Time,
			Location: iv.Location,
		}
		for _, id := range iv.Interviewers {
			row.Interviewers = append(row.Interviewers, nameOf(names, id))
		}
		for _, app := range linked[iv.ID] {
			row.Applicants = append(row.Applicants, nameOf(names, app.ApplicantID))
		}
		schedule.Rows = append(schedule.Rows, row)
	}

	logger.Debug("Built schedule",
		zap.Int64("position_id", positionID),
		zap.Int("rows", len(schedule.Rows)),
		zap.Int("applications", len(apps)))

	return schedule, nil
}

// sharedInterviews returns the linked interviews missing from own
func sharedInterviews(
	ctx context.Context,
	database PublishInterviewsStore,
	recruitmentID int64,
	own []model.Interview,
	linked map[string][]model.Application,
) ([]model.Interview, error) {
	missing := false
	for id := range linked {
		if !slices.ContainsFunc(own, func(iv model.Interview) bool { return iv.ID == id }) {
			missing = true
			break
		}
	}
	if !missing {
		return nil, nil
	}

	all, err := database.ExistingForRecruitment(ctx, recruitmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recruitment interviews: %w", err)
	}

	var shared []model.Interview
	for _, iv := range all {
		if _, ok := linked[iv.ID]; !ok {
			continue
		}
		if slices.ContainsFunc(own, func(o model.Interview) bool { return o.ID == iv.ID }) {
			continue
		}
		shared = append(shared, iv)
	}
	return shared, nil
}
