package allocator

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// DefaultNoticePeriod is the minimum time between an allocation run and the interviews it creates
const DefaultNoticePeriod = 24 * time.Hour

// AllocationConfig contains the configuration for an allocation run
type AllocationConfig struct {
	// PositionID is the position to allocate interviews for
	PositionID int64

	// Stores gives access to positions, applications, interviews and occupied timeslots
	Stores Stores

	// Criteria used to rate blocks (see criteria.Default)
	Criteria []BlockCriterion

	// Interval is the step used when generating blocks (default 30 minutes)
	Interval time.Duration

	// Daily interview hours in Location (default 08:00-23:00)
	DailyStartHour int
	DailyEndHour   int
	Location       *time.Location

	// NoticePeriod is how far in the future the earliest interview may be (default 24 hours)
	NoticePeriod time.Duration

	// ExcludeDay skips whole days when generating blocks. Optional.
	ExcludeDay func(day time.Time) bool

	// LimitToFirstApplicant stops the run after the first interview is created
	LimitToFirstApplicant bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// LocationLabel builds the placeholder location of a new interview. Optional.
	LocationLabel func(position model.Position) string
}

func (cfg AllocationConfig) withDefaults() AllocationConfig {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.DailyStartHour == 0 && cfg.DailyEndHour == 0 {
		cfg.DailyStartHour = DefaultDailyStartHour
		cfg.DailyEndHour = DefaultDailyEndHour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.NoticePeriod <= 0 {
		cfg.NoticePeriod = DefaultNoticePeriod
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.LocationLabel == nil {
		cfg.LocationLabel = func(position model.Position) string {
			return fmt.Sprintf("%s interview", position.Name)
		}
	}
	return cfg
}

// Allocator holds the state of a single allocation run
type Allocator struct {
	cfg     AllocationConfig
	now     time.Time
	profile *PositionProfile

	// applicantBusy holds the occupied timeslots of every user in the recruitment
	applicantBusy map[model.UserID][]model.OccupiedTimeslot

	// availability tracks interviewer commitments, seeded from existing interviews
	availability *InterviewerAvailability

	// takenStarts contains the start times (unix nanos) of interviews in the recruitment
	takenStarts map[int64]bool

	outcome *AllocationOutcome

	allocatedApplications int
	sawApplicantConflict  bool
	sawNoInterviewers     bool
}

// CollectBlocks loads the position and returns its blocks rated and sorted in
// the order the allocator tries them
func CollectBlocks(ctx context.Context, cfg AllocationConfig) (*PositionProfile, []*TimeBlock, error) {
	cfg = cfg.withDefaults()
	profile, occupied, err := loadProfile(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	blocks := generateRankedBlocks(cfg, profile, occupied, cfg.Now())
	return profile, blocks, nil
}

// Allocate greedily assigns interview slots to the pending applications of a position.
//
// Blocks are tried in rank order and split into 30 minute sub-slots. Each sub-slot
// goes to the first pending applicant (in list order) without a conflicting
// interview or occupied timeslot, interviewed by every block interviewer not
// already committed elsewhere. Committed interviews are never revisited.
//
// Interviews are written as they are created and never rolled back. The returned
// outcome is non-nil whenever the position could be loaded, including when an
// error is returned, so partial results can be reported.
func Allocate(ctx context.Context, cfg AllocationConfig) (*AllocationOutcome, error) {
	cfg = cfg.withDefaults()

	// COLLECT_BLOCKS
	profile, occupied, err := loadProfile(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &Allocator{
		cfg:           cfg,
		now:           cfg.Now(),
		profile:       profile,
		applicantBusy: groupByUser(occupied),
		takenStarts:   make(map[int64]bool),
		outcome: &AllocationOutcome{
			Profile: profile,
		},
	}
	a.outcome.Floor = roundUp(a.now.Add(cfg.NoticePeriod), model.InterviewDuration)

	blocks := generateRankedBlocks(cfg, profile, occupied, a.now)

	// VALIDATE_PRECONDITIONS
	if len(blocks) == 0 {
		return a.outcome, newAllocationError(ErrNoTimeBlocksAvailable, cfg.PositionID, 0, 0)
	}

	pending, err := cfg.Stores.PendingForPosition(ctx, cfg.PositionID)
	if err != nil {
		return a.outcome, fmt.Errorf("failed to fetch pending applications: %w", err)
	}
	if len(pending) == 0 {
		return a.outcome, newAllocationError(ErrNoApplicationsWithoutInterviews, cfg.PositionID, 0, 0)
	}

	pending, err = a.reuseSharedInterviews(ctx, pending)
	if err != nil {
		a.outcome.Pending = pending
		return a.outcome, err
	}
	if len(pending) == 0 {
		return a.outcome, nil
	}

	futureBlocks := make([]*TimeBlock, 0, len(blocks))
	for _, block := range blocks {
		if block.End.After(a.outcome.Floor) {
			futureBlocks = append(futureBlocks, block)
		}
	}
	if len(futureBlocks) == 0 {
		a.outcome.Pending = pending
		return a.outcome, newAllocationError(ErrNoFutureTimeSlots, cfg.PositionID, 0, len(pending))
	}

	existing, err := cfg.Stores.ExistingForRecruitment(ctx, profile.Recruitment.ID)
	if err != nil {
		a.outcome.Pending = pending
		return a.outcome, fmt.Errorf("failed to fetch existing interviews: %w", err)
	}
	a.availability = NewInterviewerAvailability(existing)
	for _, interview := range existing {
		a.takenStarts[interview.Time.UnixNano()] = true
	}

	// ALLOCATE_LOOP
	pending, err = a.allocateLoop(ctx, futureBlocks, pending)
	a.outcome.Pending = pending
	if err != nil {
		return a.outcome, err
	}

	if cfg.LimitToFirstApplicant && a.outcome.Count() > 0 {
		return a.outcome, nil
	}

	return a.outcome, a.failure(len(pending))
}

// allocateLoop walks the blocks in rank order and returns the applications left unallocated
func (a *Allocator) allocateLoop(ctx context.Context, blocks []*TimeBlock, pending []model.Application) ([]model.Application, error) {
	for _, block := range blocks {
		if len(pending) == 0 {
			break
		}

		slotStart := block.Start
		if a.outcome.Floor.After(slotStart) {
			slotStart = a.outcome.Floor
		}

		for ; !slotStart.Add(model.InterviewDuration).After(block.End); slotStart = slotStart.Add(model.InterviewDuration) {
			if len(pending) == 0 {
				break
			}
			slotEnd := slotStart.Add(model.InterviewDuration)

			// Another interview in the recruitment already starts here
			if a.takenStarts[slotStart.UnixNano()] {
				continue
			}

			interviewers := a.availability.Available(block.AvailableInterviewers, slotStart, slotEnd)
			if len(interviewers) == 0 {
				a.sawNoInterviewers = true
				continue
			}

			idx, err := a.findApplicant(ctx, pending, slotStart, slotEnd)
			if err != nil {
				return pending, err
			}
			if idx < 0 {
				a.sawApplicantConflict = true
				continue
			}

			if err := a.commit(ctx, pending[idx], slotStart, interviewers); err != nil {
				return pending, err
			}
			pending = slices.Delete(pending, idx, idx+1)

			if a.cfg.LimitToFirstApplicant {
				return pending, nil
			}
		}
	}

	return pending, nil
}

// findApplicant returns the index of the first pending application whose
// applicant is free during [start, end), or -1
func (a *Allocator) findApplicant(ctx context.Context, pending []model.Application, start, end time.Time) (int, error) {
	for i, app := range pending {
		if a.applicantOccupied(app.ApplicantID, start, end) {
			continue
		}

		conflict, err := a.cfg.Stores.HasConflict(ctx, app.ApplicantID, a.profile.Recruitment.ID, start, end)
		if err != nil {
			return -1, fmt.Errorf("failed to check interview conflicts for applicant %d: %w", app.ApplicantID, err)
		}
		if conflict {
			continue
		}

		return i, nil
	}
	return -1, nil
}

func (a *Allocator) applicantOccupied(applicant model.UserID, start, end time.Time) bool {
	for _, slot := range a.applicantBusy[applicant] {
		if slot.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// commit creates the interview, links the application (and the applicant's
// other applications in a shared interview group) and books the interviewers
func (a *Allocator) commit(ctx context.Context, app model.Application, start time.Time, interviewers []model.UserID) error {
	interview, err := a.cfg.Stores.Create(ctx, model.NewInterview{
		RecruitmentID: a.profile.Recruitment.ID,
		PositionID:    a.profile.Position.ID,
		Time:          start,
		Location:      a.cfg.LocationLabel(a.profile.Position),
		Interviewers:  interviewers,
	})
	if err != nil {
		return fmt.Errorf("failed to create interview at %s: %w", start.Format(time.RFC3339), err)
	}

	a.availability.MarkUnavailable(interviewers, interview.Time, interview.End())
	a.takenStarts[interview.Time.UnixNano()] = true

	linked, err := a.link(ctx, app, interview)
	if len(linked) > 0 {
		a.outcome.Created = append(a.outcome.Created, AllocatedInterview{
			Interview:    *interview,
			Applications: linked,
		})
		a.allocatedApplications++
	}
	return err
}

// link attaches the interview to the application and to the applicant's other
// pending applications in the same shared interview group
func (a *Allocator) link(ctx context.Context, app model.Application, interview *model.Interview) ([]model.Application, error) {
	if err := a.cfg.Stores.LinkInterview(ctx, app.ID, interview.ID); err != nil {
		return nil, fmt.Errorf("failed to link application %d to interview: %w", app.ID, err)
	}
	app.InterviewID = &interview.ID
	linked := []model.Application{app}

	groupID := a.profile.Position.SharedInterviewGroupID
	if groupID == nil {
		return linked, nil
	}

	others, err := a.cfg.Stores.PendingForApplicantInGroup(ctx, app.ApplicantID, *groupID)
	if err != nil {
		return linked, fmt.Errorf("failed to fetch shared group applications for applicant %d: %w", app.ApplicantID, err)
	}
	for _, other := range others {
		if other.ID == app.ID {
			continue
		}
		if err := a.cfg.Stores.LinkInterview(ctx, other.ID, interview.ID); err != nil {
			return linked, fmt.Errorf("failed to link shared group application %d: %w", other.ID, err)
		}
		other.InterviewID = &interview.ID
		linked = append(linked, other)
	}

	return linked, nil
}

// reuseSharedInterviews links pending applications to an interview the applicant
// already has for another position in the same shared interview group.
// Returns the applications that still need a slot.
func (a *Allocator) reuseSharedInterviews(ctx context.Context, pending []model.Application) ([]model.Application, error) {
	groupID := a.profile.Position.SharedInterviewGroupID
	if groupID == nil {
		return pending, nil
	}

	remaining := make([]model.Application, 0, len(pending))
	for i, app := range pending {
		interview, err := a.cfg.Stores.SharedGroupInterview(ctx, app.ApplicantID, *groupID)
		if err != nil {
			return append(remaining, pending[i:]...), fmt.Errorf("failed to look up shared interview for applicant %d: %w", app.ApplicantID, err)
		}
		if interview == nil {
			remaining = append(remaining, app)
			continue
		}

		if err := a.cfg.Stores.LinkInterview(ctx, app.ID, interview.ID); err != nil {
			return append(remaining, pending[i:]...), fmt.Errorf("failed to link application %d to shared interview: %w", app.ID, err)
		}
		app.InterviewID = &interview.ID
		a.outcome.Reused = append(a.outcome.Reused, AllocatedInterview{
			Interview:    *interview,
			Applications: []model.Application{app},
		})
		a.allocatedApplications++
	}

	return remaining, nil
}

// failure maps the end state of the loop onto the error taxonomy
func (a *Allocator) failure(remaining int) error {
	positionID := a.cfg.PositionID
	created := a.outcome.Count()

	switch {
	case remaining == 0:
		return nil
	case a.allocatedApplications > 0:
		return newAllocationError(ErrInsufficientTimeBlocks, positionID, created, remaining)
	case a.sawApplicantConflict:
		return newAllocationError(ErrAllApplicantsUnavailable, positionID, 0, remaining)
	case a.sawNoInterviewers:
		return newAllocationError(ErrNoAvailableInterviewers, positionID, 0, remaining)
	default:
		// Every sub-slot was already taken by another interview
		return newAllocationError(ErrInsufficientTimeBlocks, positionID, 0, remaining)
	}
}

// roundUp rounds t up to a multiple of d since the zero time
func roundUp(t time.Time, d time.Duration) time.Time {
	rounded := t.Truncate(d)
	if rounded.Before(t) {
		rounded = rounded.Add(d)
	}
	return rounded
}

// loadProfile front-loads the position data and every occupied timeslot of the recruitment
func loadProfile(ctx context.Context, cfg AllocationConfig) (*PositionProfile, []model.OccupiedTimeslot, error) {
	stores := cfg.Stores

	position, err := stores.GetPosition(ctx, cfg.PositionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch position %d: %w", cfg.PositionID, err)
	}

	recruitment, err := stores.GetRecruitmentWindow(ctx, cfg.PositionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch recruitment window: %w", err)
	}

	interviewers, err := stores.GetEligibleInterviewers(ctx, cfg.PositionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch interviewers: %w", err)
	}

	sections, err := stores.GetSectionGroups(ctx, cfg.PositionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch section groups: %w", err)
	}

	occupied, err := ResolveUnavailability(ctx, stores, recruitment.ID)
	if err != nil {
		return nil, nil, err
	}

	profile := &PositionProfile{
		Position:     *position,
		Recruitment:  *recruitment,
		Interviewers: sortedUserIDs(interviewers),
		Sections:     sections,
	}

	return profile, occupied, nil
}

// generateRankedBlocks generates the blocks for the remaining recruitment window and ranks them
func generateRankedBlocks(cfg AllocationConfig, profile *PositionProfile, occupied []model.OccupiedTimeslot, now time.Time) []*TimeBlock {
	if len(profile.Interviewers) == 0 {
		return nil
	}

	from := profile.Recruitment.VisibleFrom
	if now.After(from) {
		from = now
	}

	blocks := GenerateRecruitmentBlocks(BlockWindow{
		PositionID:     profile.Position.ID,
		Interviewers:   profile.Interviewers,
		Unavailability: occupied,
		From:           from,
		Until:          profile.Recruitment.ApplicationDeadline,
		DailyStartHour: cfg.DailyStartHour,
		DailyEndHour:   cfg.DailyEndHour,
		Location:       cfg.Location,
		Interval:       cfg.Interval,
		ExcludeDay:     cfg.ExcludeDay,
	})

	RankBlocks(blocks, profile, cfg.Criteria)
	return blocks
}
