package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

// Mailer sends plain text emails
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// NotifyApplicantsStore defines the database operations needed to notify applicants
type NotifyApplicantsStore interface {
	db.PositionStore
	db.ApplicationStore
	db.InterviewStore
	db.UserStore
}

// SentNotification is an applicant who was emailed their interview time
type SentNotification struct {
	ApplicationID int64
	Name          string
	Email         string
	Time          time.Time
}

// FailedNotification is an applicant who could not be emailed
type FailedNotification struct {
	ApplicationID int64
	Name          string
	Email         string
	Error         string
}

// NotifyApplicants emails every applicant of the position whose application has an
// interview but has not been notified yet, then marks the application as notified.
// With dryRun set nothing is sent or marked; the would-be recipients are returned as sent.
func NotifyApplicants(
	ctx context.Context,
	database NotifyApplicantsStore,
	mailer Mailer,
	cfg *config.Config,
	logger *zap.Logger,
	positionID int64,
	dryRun bool,
) ([]SentNotification, []FailedNotification, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	position, err := database.GetPosition(ctx, positionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch position %d: %w", positionID, err)
	}

	var (
		apps       []model.Application
		interviews []model.Interview
	)

	g, gctx := errgroup.WithContext(ctx)
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
		interviews, err = database.ExistingForRecruitment(gctx, position.RecruitmentID)
		if err != nil {
			return fmt.Errorf("failed to fetch interviews: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byID := make(map[string]model.Interview, len(interviews))
	for _, iv := range interviews {
		byID[iv.ID] = iv
	}

	toNotify := unnotified(apps)
	logger.Info("Found applicants to notify", zap.Int64("position_id", positionID), zap.Int("count", len(toNotify)))
	if len(toNotify) == 0 {
		return nil, nil, nil
	}

	applicantIDs := make([]model.UserID, 0, len(toNotify))
	for _, app := range toNotify {
		applicantIDs = append(applicantIDs, app.ApplicantID)
	}
	users, err := database.GetUsers(ctx, applicantIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch applicants: %w", err)
	}

	var sent []SentNotification
	var failed []FailedNotification

	for _, app := range toNotify {
		user, found := users[app.ApplicantID]
		interview, hasInterview := byID[*app.InterviewID]

		fail := func(reason string) {
			logger.Warn("Failed to notify applicant",
				zap.Int64("application_id", app.ID),
				zap.String("email", user.Email),
				zap.String("reason", reason))
			failed = append(failed, FailedNotification{
				ApplicationID: app.ID,
				Name:          user.FullName(),
				Email:         user.Email,
				Error:         reason,
			})
		}

		switch {
		case !found:
			fail(fmt.Sprintf("applicant %d not found", app.ApplicantID))
			continue
		case user.Email == "":
			fail("applicant has no email address")
			continue
		case !hasInterview:
			fail(fmt.Sprintf("interview %s not found", *app.InterviewID))
			continue
		}

		notification := SentNotification{
			ApplicationID: app.ID,
			Name:          user.FullName(),
			Email:         user.Email,
			Time:          interview.Time.In(loc),
		}

		if dryRun {
			sent = append(sent, notification)
			continue
		}

		subject, body := interviewEmail(user, *position, interview, loc)
		if err := mailer.SendEmail(user.Email, subject, body); err != nil {
			fail(err.Error())
			continue
		}

		// The email is out, a failure here would resend on the next run
		if err := database.MarkNotified(ctx, app.ID); err != nil {
			return sent, failed, fmt.Errorf("failed to mark application %d as notified: %w", app.ID, err)
		}

		logger.Debug("Notified applicant", zap.Int64("application_id", app.ID), zap.String("email", user.Email))
		sent = append(sent, notification)
	}

	logger.Info("Notification finished", zap.Int("sent", len(sent)), zap.Int("failed", len(failed)))

	return sent, failed, nil
}

// unnotified keeps live applications with an interview that have not been notified
func unnotified(apps []model.Application) []model.Application {
	var result []model.Application
	for _, app := range apps {
		if app.Withdrawn || app.InterviewID == nil || app.Notified {
			continue
		}
		result = append(result, app)
	}
	return result
}

// interviewEmail renders the notification sent to an applicant
func interviewEmail(applicant model.User, position model.Position, interview model.Interview, loc *time.Location) (string, string) {
	start := interview.Time.In(loc)
	end := interview.End().In(loc)

	subject := fmt.Sprintf("Interview for %s", position.Name)

	var b strings.Builder
	greeting := applicant.FirstName
	if greeting == "" {
		greeting = applicant.FullName()
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", greeting)
	fmt.Fprintf(&b, "You have been scheduled for an interview for %s.\n\n", position.Name)
	fmt.Fprintf(&b, "Time: %s, %s-%s\n", start.Format("Monday 2 January 2006"), start.Format("15:04"), end.Format("15:04"))
	if interview.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", interview.Location)
	}
	b.WriteString("\nIf the time does not suit you, reply to this email and we will find another slot.\n")

	return subject, b.String()
}
