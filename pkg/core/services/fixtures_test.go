package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/clients/sheetsclient"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

// at returns a time in March 2024 (UTC)
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

// testNow is 24 hours before the first interview day opens
var testNow = at(4, 8, 0)

func fixedNow() time.Time {
	return testNow
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:     "postgres://localhost/test",
		Timezone:        "UTC",
		InterviewHours:  config.InterviewHours{Start: 9, End: 10},
		NoticeHours:     24,
		LocationFormat:  "Room for %s",
		ScheduleSheetID: "sheet-1",
	}
}

// newServiceDB creates recruitment 1 (Tuesday 5 March until the deadline) with
// position 10 "Treasurer" interviewed by Ida (100)
func newServiceDB(deadline time.Time) *db.MemoryDB {
	m := db.NewMemoryDB()
	m.AddRecruitment(model.Recruitment{
		ID:                  1,
		Name:                "Spring 2024",
		VisibleFrom:         at(5, 0, 0),
		ApplicationDeadline: deadline,
	})
	m.AddPosition(model.Position{ID: 10, RecruitmentID: 1, Name: "Treasurer"})
	m.AddUser(model.User{ID: 100, FirstName: "Ida", LastName: "Berg", Email: "ida@example.org"})
	m.AddInterviewer(10, 100, 1)
	return m
}

func addApplicant(m *db.MemoryDB, positionID int64, user model.User) model.Application {
	m.AddUser(user)
	return m.AddApplication(model.Application{PositionID: positionID, ApplicantID: user.ID})
}

var (
	kari = model.User{ID: 200, FirstName: "Kari", LastName: "Nordmann", Email: "kari@example.org"}
	ola  = model.User{ID: 201, FirstName: "Ola", LastName: "Hansen", Email: "ola@example.org"}
)

// mockPublisher records published schedules
type mockPublisher struct {
	spreadsheetID string
	published     []*sheetsclient.Schedule
	err           error
}

func (m *mockPublisher) PublishSchedule(spreadsheetID string, schedule *sheetsclient.Schedule) error {
	if m.err != nil {
		return m.err
	}
	m.spreadsheetID = spreadsheetID
	m.published = append(m.published, schedule)
	return nil
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

// mockMailer records sent emails and fails for addresses in failFor
type mockMailer struct {
	mu      sync.Mutex
	sent    []sentEmail
	failFor map[string]bool
}

func (m *mockMailer) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[to] {
		return fmt.Errorf("mailbox unavailable")
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}
