package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/core/allocator"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

func testApp(database db.Database) *AppContext {
	return &AppContext{
		Env: "test",
		Cfg: &config.Config{
			DatabaseURL:    "postgres://localhost/test",
			Timezone:       "UTC",
			InterviewHours: config.InterviewHours{Start: 9, End: 17},
		},
		Database: database,
		Logger:   zap.NewNop(),
		Ctx:      context.Background(),
	}
}

type fakeMigrator struct {
	applied []string
	err     error
}

func (f *fakeMigrator) RunMigrations(ctx context.Context) ([]string, error) {
	return f.applied, f.err
}

func TestAvailabilityColor(t *testing.T) {
	tests := []struct {
		name      string
		available int
		total     int
		expected  string
	}{
		{"all available", 4, 4, "green"},
		{"half available", 2, 4, "yellow"},
		{"more than half", 3, 4, "yellow"},
		{"less than half", 1, 4, "orange"},
		{"single interviewer", 1, 1, "green"},
		{"odd total rounds down", 1, 3, "orange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, availabilityColor(tt.available, tt.total, "green", "yellow", "orange"))
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("position_id", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, arg := range []string{"abc", "0", "-3", ""} {
		_, err := parseID("position_id", arg)
		assert.Error(t, err, arg)
		assert.Contains(t, err.Error(), "position_id must be a positive integer")
	}
}

func TestDescribeAllocationError(t *testing.T) {
	insufficient := &allocator.AllocationError{
		Kind:       allocator.ErrInsufficientTimeBlocks,
		PositionID: 10,
		Allocated:  2,
		Remaining:  3,
	}
	assert.Equal(t, "Ran out of slots: 2 interviews created, 3 applications still pending", describeAllocationError(insufficient))

	unavailable := &allocator.AllocationError{Kind: allocator.ErrAllApplicantsUnavailable, PositionID: 10}
	assert.Equal(t, "Every applicant is busy in every free slot", describeAllocationError(unavailable))

	other := errors.New("connection refused")
	assert.Equal(t, "connection refused", describeAllocationError(other))
}

func TestAllocateInterviewsCmd_RequiresPositionOrRecruitment(t *testing.T) {
	app := testApp(db.NewMemoryDB())

	tests := []struct {
		name string
		args []string
	}{
		{"neither", []string{}},
		{"both", []string{"10", "--recruitment", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := AllocateInterviewsCmd(app)
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "either a position_id or --recruitment")
		})
	}
}

func TestAllocateInterviewsCmd_UnknownPosition(t *testing.T) {
	app := testApp(db.NewMemoryDB())

	cmd := AllocateInterviewsCmd(app)
	cmd.SetArgs([]string{"99", "--dry-run"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestMigrateCmd(t *testing.T) {
	app := testApp(db.NewMemoryDB())
	app.Migrator = &fakeMigrator{applied: []string{"001_init.sql"}}

	cmd := MigrateCmd(app)
	cmd.SetArgs([]string{})
	assert.NoError(t, cmd.Execute())
}

func TestMigrateCmd_Error(t *testing.T) {
	app := testApp(db.NewMemoryDB())
	app.Migrator = &fakeMigrator{err: fmt.Errorf("failed to apply migration 001_init.sql: boom")}

	cmd := MigrateCmd(app)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMigrateCmd_NoMigrator(t *testing.T) {
	app := testApp(db.NewMemoryDB())

	cmd := MigrateCmd(app)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

// sessionCommands returns an echo command that records its args and flag value
func sessionCommands(calls *[]string) map[string]*cobra.Command {
	echo := &cobra.Command{
		Use:   "echo <word>",
		Short: "Echo a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loud, _ := cmd.Flags().GetBool("loud")
			word := args[0]
			if loud {
				word = strings.ToUpper(word)
			}
			*calls = append(*calls, word)
			return nil
		},
	}
	echo.Flags().Bool("loud", false, "Shout")

	fail := &cobra.Command{
		Use:   "fail",
		Short: "Always fails",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("it broke")
		},
	}

	return map[string]*cobra.Command{"echo": echo, "fail": fail}
}

func TestRunSession(t *testing.T) {
	var calls []string
	in := strings.NewReader("echo hi --loud\n\necho there\nexit\necho never\n")
	var out bytes.Buffer

	err := runSession(in, &out, sessionCommands(&calls))
	require.NoError(t, err)

	// --loud does not leak into the second run
	assert.Equal(t, []string{"HI", "there"}, calls)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRunSession_ReportsErrorsAndContinues(t *testing.T) {
	var calls []string
	in := strings.NewReader("bogus\nfail\necho\nhelp\necho ok\n")
	var out bytes.Buffer

	err := runSession(in, &out, sessionCommands(&calls))
	require.NoError(t, err)

	assert.Equal(t, []string{"ok"}, calls)
	assert.Contains(t, out.String(), "Unknown command: bogus")
	assert.Contains(t, out.String(), "Error: it broke")
	assert.Contains(t, out.String(), "accepts 1 arg(s), received 0")
	assert.Contains(t, out.String(), "Available commands:")
	assert.Contains(t, out.String(), "echo <word>")
}
