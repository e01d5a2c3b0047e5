package db

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// MemoryDB is an in-memory Database used for local runs and tests
type MemoryDB struct {
	mu sync.Mutex

	users        map[model.UserID]model.User
	recruitments map[int64]model.Recruitment
	positions    map[int64]model.Position

	// interviewers of each position, in insertion order
	interviewers map[int64][]model.UserID
	sections     map[model.UserID]model.SectionID

	applications []model.Application
	interviews   []model.Interview
	occupied     []model.OccupiedTimeslot

	locks           map[int64]bool
	nextApplication int64
}

// NewMemoryDB creates an empty in-memory database
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:        make(map[model.UserID]model.User),
		recruitments: make(map[int64]model.Recruitment),
		positions:    make(map[int64]model.Position),
		interviewers: make(map[int64][]model.UserID),
		sections:     make(map[model.UserID]model.SectionID),
		locks:        make(map[int64]bool),
	}
}

// AddUser inserts or replaces a user
func (m *MemoryDB) AddUser(user model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// AddRecruitment inserts or replaces a recruitment
func (m *MemoryDB) AddRecruitment(recruitment model.Recruitment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recruitments[recruitment.ID] = recruitment
}

// AddPosition inserts or replaces a position
func (m *MemoryDB) AddPosition(position model.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[position.ID] = position
}

// AddInterviewer makes the user an interviewer for the position and records
// the section they belong to
func (m *MemoryDB) AddInterviewer(positionID int64, user model.UserID, section model.SectionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.interviewers[positionID], user) {
		m.interviewers[positionID] = append(m.interviewers[positionID], user)
	}
	m.sections[user] = section
}

// AddApplication appends an application. A zero ID is replaced with the next free one.
func (m *MemoryDB) AddApplication(app model.Application) model.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	if app.ID == 0 {
		m.nextApplication++
		app.ID = m.nextApplication
	} else if app.ID > m.nextApplication {
		m.nextApplication = app.ID
	}
	m.applications = append(m.applications, app)
	return app
}

// AddInterview inserts an existing interview, e.g. from an earlier run
func (m *MemoryDB) AddInterview(interview model.Interview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviews = append(m.interviews, interview)
}

// AddOccupiedTimeslot records that the user is unavailable during the slot
func (m *MemoryDB) AddOccupiedTimeslot(slot model.OccupiedTimeslot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.occupied = append(m.occupied, slot)
}

// Interviews returns a copy of every stored interview
func (m *MemoryDB) Interviews() []model.Interview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.interviews)
}

// Applications returns a copy of every stored application
func (m *MemoryDB) Applications() []model.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.applications)
}

func (m *MemoryDB) GetPosition(ctx context.Context, positionID int64) (*model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	position, ok := m.positions[positionID]
	if !ok {
		return nil, fmt.Errorf("position %d: %w", positionID, ErrNotFound)
	}
	return &position, nil
}

func (m *MemoryDB) ListPositions(ctx context.Context, recruitmentID int64) ([]model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var positions []model.Position
	for _, position := range m.positions {
		if position.RecruitmentID == recruitmentID {
			positions = append(positions, position)
		}
	}
	slices.SortFunc(positions, func(a, b model.Position) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return positions, nil
}

func (m *MemoryDB) GetEligibleInterviewers(ctx context.Context, positionID int64) ([]model.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eligibleInterviewers(positionID)
}

// eligibleInterviewers covers every position of the shared interview group. Caller holds mu.
func (m *MemoryDB) eligibleInterviewers(positionID int64) ([]model.UserID, error) {
	position, ok := m.positions[positionID]
	if !ok {
		return nil, fmt.Errorf("position %d: %w", positionID, ErrNotFound)
	}

	var result []model.UserID
	for _, id := range m.groupPositions(position) {
		for _, user := range m.interviewers[id] {
			if !slices.Contains(result, user) {
				result = append(result, user)
			}
		}
	}
	return result, nil
}

// groupPositions returns the position IDs sharing interviews with position,
// including itself. Caller holds mu.
func (m *MemoryDB) groupPositions(position model.Position) []int64 {
	if position.SharedInterviewGroupID == nil {
		return []int64{position.ID}
	}
	return m.positionsInGroup(*position.SharedInterviewGroupID)
}

// positionsInGroup returns the IDs of every position in the group sorted. Caller holds mu.
func (m *MemoryDB) positionsInGroup(groupID int64) []int64 {
	var ids []int64
	for id, p := range m.positions {
		if p.SharedInterviewGroupID != nil && *p.SharedInterviewGroupID == groupID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (m *MemoryDB) GetRecruitmentWindow(ctx context.Context, positionID int64) (*model.Recruitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	position, ok := m.positions[positionID]
	if !ok {
		return nil, fmt.Errorf("position %d: %w", positionID, ErrNotFound)
	}
	recruitment, ok := m.recruitments[position.RecruitmentID]
	if !ok {
		return nil, fmt.Errorf("recruitment %d: %w", position.RecruitmentID, ErrNotFound)
	}
	return &recruitment, nil
}

func (m *MemoryDB) GetSectionGroups(ctx context.Context, positionID int64) (map[model.SectionID][]model.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	interviewers, err := m.eligibleInterviewers(positionID)
	if err != nil {
		return nil, err
	}

	groups := make(map[model.SectionID][]model.UserID)
	for _, user := range interviewers {
		section, ok := m.sections[user]
		if !ok {
			continue
		}
		groups[section] = append(groups[section], user)
	}
	return groups, nil
}

func (m *MemoryDB) ApplicationsForPosition(ctx context.Context, positionID int64) ([]model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Application
	for _, app := range m.applications {
		if app.PositionID == positionID {
			result = append(result, app)
		}
	}
	return result, nil
}

func (m *MemoryDB) PendingForPosition(ctx context.Context, positionID int64) ([]model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Application
	for _, app := range m.applications {
		if app.PositionID == positionID && app.Pending() {
			result = append(result, app)
		}
	}
	return result, nil
}

func (m *MemoryDB) PendingForApplicantInGroup(ctx context.Context, applicantID model.UserID, groupID int64) ([]model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	positions := m.positionsInGroup(groupID)
	var result []model.Application
	for _, app := range m.applications {
		if app.ApplicantID == applicantID && app.Pending() && slices.Contains(positions, app.PositionID) {
			result = append(result, app)
		}
	}
	return result, nil
}

func (m *MemoryDB) SharedGroupInterview(ctx context.Context, applicantID model.UserID, groupID int64) (*model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	positions := m.positionsInGroup(groupID)
	for _, app := range m.applications {
		if app.ApplicantID != applicantID || app.Withdrawn || app.InterviewID == nil {
			continue
		}
		if !slices.Contains(positions, app.PositionID) {
			continue
		}
		if interview, ok := m.interview(*app.InterviewID); ok {
			return &interview, nil
		}
	}
	return nil, nil
}

// interview looks up an interview by ID. Caller holds mu.
func (m *MemoryDB) interview(id string) (model.Interview, bool) {
	for _, iv := range m.interviews {
		if iv.ID == id {
			return iv, true
		}
	}
	return model.Interview{}, false
}

func (m *MemoryDB) LinkInterview(ctx context.Context, applicationID int64, interviewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.interview(interviewID); !ok {
		return fmt.Errorf("interview %s: %w", interviewID, ErrNotFound)
	}
	for i := range m.applications {
		if m.applications[i].ID == applicationID {
			id := interviewID
			m.applications[i].InterviewID = &id
			return nil
		}
	}
	return fmt.Errorf("application %d: %w", applicationID, ErrNotFound)
}

func (m *MemoryDB) MarkNotified(ctx context.Context, applicationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.applications {
		if m.applications[i].ID == applicationID {
			m.applications[i].Notified = true
			return nil
		}
	}
	return fmt.Errorf("application %d: %w", applicationID, ErrNotFound)
}

func (m *MemoryDB) ExistingForRecruitment(ctx context.Context, recruitmentID int64) ([]model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Interview
	for _, iv := range m.interviews {
		if iv.RecruitmentID == recruitmentID {
			result = append(result, iv)
		}
	}
	return result, nil
}

func (m *MemoryDB) InterviewsForPosition(ctx context.Context, positionID int64) ([]model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Interview
	for _, iv := range m.interviews {
		if iv.PositionID == positionID {
			result = append(result, iv)
		}
	}
	slices.SortStableFunc(result, func(a, b model.Interview) int {
		return a.Time.Compare(b.Time)
	})
	return result, nil
}

func (m *MemoryDB) Create(ctx context.Context, interview model.NewInterview) (*model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := model.Interview{
		ID:            uuid.NewString(),
		RecruitmentID: interview.RecruitmentID,
		PositionID:    interview.PositionID,
		Time:          interview.Time,
		Location:      interview.Location,
		Interviewers:  slices.Clone(interview.Interviewers),
	}
	m.interviews = append(m.interviews, created)
	return &created, nil
}

func (m *MemoryDB) HasConflict(ctx context.Context, applicantID model.UserID, recruitmentID int64, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.applications {
		if app.ApplicantID != applicantID || app.Withdrawn || app.InterviewID == nil {
			continue
		}
		iv, ok := m.interview(*app.InterviewID)
		if !ok || iv.RecruitmentID != recruitmentID {
			continue
		}
		if model.Overlaps(iv.Time, iv.End(), start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryDB) ForRecruitment(ctx context.Context, recruitmentID int64) ([]model.OccupiedTimeslot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.OccupiedTimeslot
	for _, slot := range m.occupied {
		if slot.RecruitmentID == recruitmentID {
			result = append(result, slot)
		}
	}
	return result, nil
}

func (m *MemoryDB) GetUsers(ctx context.Context, ids []model.UserID) (map[model.UserID]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make(map[model.UserID]model.User, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			users[id] = user
		}
	}
	return users, nil
}

func (m *MemoryDB) LockPosition(ctx context.Context, positionID int64) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[positionID] {
		return nil, fmt.Errorf("position %d: %w", positionID, ErrPositionLocked)
	}
	m.locks[positionID] = true
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.locks, positionID)
	}, nil
}
