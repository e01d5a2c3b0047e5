package db

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// DryRun wraps a Database and keeps every write in memory.
// Reads see the underlying data merged with the pending writes, so an
// allocation run behaves exactly as it would against the real store.
type DryRun struct {
	Database

	mu         sync.Mutex
	interviews []model.Interview

	// links maps application ID to interview ID
	links    map[int64]string
	notified map[int64]bool
}

// NewDryRun creates a dry-run view over db
func NewDryRun(db Database) *DryRun {
	return &DryRun{
		Database: db,
		links:    make(map[int64]string),
		notified: make(map[int64]bool),
	}
}

// Created returns the interviews that would have been written
func (d *DryRun) Created() []model.Interview {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.interviews)
}

// Links returns the application to interview links that would have been written
func (d *DryRun) Links() map[int64]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	links := make(map[int64]string, len(d.links))
	for k, v := range d.links {
		links[k] = v
	}
	return links
}

func (d *DryRun) Create(ctx context.Context, interview model.NewInterview) (*model.Interview, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	created := model.Interview{
		ID:            uuid.NewString(),
		RecruitmentID: interview.RecruitmentID,
		PositionID:    interview.PositionID,
		Time:          interview.Time,
		Location:      interview.Location,
		Interviewers:  slices.Clone(interview.Interviewers),
	}
	d.interviews = append(d.interviews, created)
	return &created, nil
}

func (d *DryRun) LinkInterview(ctx context.Context, applicationID int64, interviewID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.links[applicationID] = interviewID
	return nil
}

func (d *DryRun) MarkNotified(ctx context.Context, applicationID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notified[applicationID] = true
	return nil
}

// overlay applies pending links and notifications to applications read from the store
func (d *DryRun) overlay(apps []model.Application) []model.Application {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Application, 0, len(apps))
	for _, app := range apps {
		if id, ok := d.links[app.ID]; ok {
			app.InterviewID = &id
		}
		if d.notified[app.ID] {
			app.Notified = true
		}
		out = append(out, app)
	}
	return out
}

// pending keeps the applications still pending after the overlay
func pending(apps []model.Application) []model.Application {
	return slices.DeleteFunc(apps, func(app model.Application) bool {
		return !app.Pending()
	})
}

// created returns the pending interviews matching keep
func (d *DryRun) created(keep func(model.Interview) bool) []model.Interview {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []model.Interview
	for _, iv := range d.interviews {
		if keep(iv) {
			result = append(result, iv)
		}
	}
	return result
}

// findInterview looks in pending writes first, then in the store
func (d *DryRun) findInterview(ctx context.Context, id string, recruitmentID int64) (*model.Interview, error) {
	if found := d.created(func(iv model.Interview) bool { return iv.ID == id }); len(found) > 0 {
		return &found[0], nil
	}
	existing, err := d.Database.ExistingForRecruitment(ctx, recruitmentID)
	if err != nil {
		return nil, err
	}
	for _, iv := range existing {
		if iv.ID == id {
			return &iv, nil
		}
	}
	return nil, nil
}

func (d *DryRun) ApplicationsForPosition(ctx context.Context, positionID int64) ([]model.Application, error) {
	apps, err := d.Database.ApplicationsForPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	return d.overlay(apps), nil
}

func (d *DryRun) PendingForPosition(ctx context.Context, positionID int64) ([]model.Application, error) {
	apps, err := d.Database.PendingForPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	return pending(d.overlay(apps)), nil
}

func (d *DryRun) PendingForApplicantInGroup(ctx context.Context, applicantID model.UserID, groupID int64) ([]model.Application, error) {
	apps, err := d.Database.PendingForApplicantInGroup(ctx, applicantID, groupID)
	if err != nil {
		return nil, err
	}
	return pending(d.overlay(apps)), nil
}

func (d *DryRun) SharedGroupInterview(ctx context.Context, applicantID model.UserID, groupID int64) (*model.Interview, error) {
	interview, err := d.Database.SharedGroupInterview(ctx, applicantID, groupID)
	if err != nil || interview != nil {
		return interview, err
	}

	// A pending link to a new interview for another position in the group
	apps, err := d.Database.PendingForApplicantInGroup(ctx, applicantID, groupID)
	if err != nil {
		return nil, err
	}
	for _, app := range d.overlay(apps) {
		if app.InterviewID == nil {
			continue
		}
		if found := d.created(func(iv model.Interview) bool { return iv.ID == *app.InterviewID }); len(found) > 0 {
			return &found[0], nil
		}
	}
	return nil, nil
}

func (d *DryRun) ExistingForRecruitment(ctx context.Context, recruitmentID int64) ([]model.Interview, error) {
	existing, err := d.Database.ExistingForRecruitment(ctx, recruitmentID)
	if err != nil {
		return nil, err
	}
	return append(existing, d.created(func(iv model.Interview) bool {
		return iv.RecruitmentID == recruitmentID
	})...), nil
}

func (d *DryRun) InterviewsForPosition(ctx context.Context, positionID int64) ([]model.Interview, error) {
	existing, err := d.Database.InterviewsForPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	result := append(existing, d.created(func(iv model.Interview) bool {
		return iv.PositionID == positionID
	})...)
	slices.SortStableFunc(result, func(a, b model.Interview) int {
		return a.Time.Compare(b.Time)
	})
	return result, nil
}

func (d *DryRun) HasConflict(ctx context.Context, applicantID model.UserID, recruitmentID int64, start, end time.Time) (bool, error) {
	conflict, err := d.Database.HasConflict(ctx, applicantID, recruitmentID, start, end)
	if err != nil || conflict {
		return conflict, err
	}

	d.mu.Lock()
	links := make([]string, 0, len(d.links))
	for _, interviewID := range d.links {
		links = append(links, interviewID)
	}
	d.mu.Unlock()
	if len(links) == 0 {
		return false, nil
	}

	// Only pending links of this applicant can add a conflict
	positions, err := d.Database.ListPositions(ctx, recruitmentID)
	if err != nil {
		return false, err
	}
	for _, position := range positions {
		apps, err := d.ApplicationsForPosition(ctx, position.ID)
		if err != nil {
			return false, err
		}
		for _, app := range apps {
			if app.ApplicantID != applicantID || app.Withdrawn || app.InterviewID == nil {
				continue
			}
			if !slices.Contains(links, *app.InterviewID) {
				continue
			}
			iv, err := d.findInterview(ctx, *app.InterviewID, recruitmentID)
			if err != nil {
				return false, err
			}
			if iv != nil && model.Overlaps(iv.Time, iv.End(), start, end) {
				return true, nil
			}
		}
	}
	return false, nil
}
