package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/pkg/core/allocator"
	"github.com/jakechorley/interview-allocator/pkg/core/services"
)

// AllocateInterviewsCmd creates the allocateInterviews command
func AllocateInterviewsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocateInterviews [position_id]",
		Short: "Allocate interview slots to pending applications",
		Long: `Allocate interview slots to the pending applications of a position.
With --recruitment every position of the recruitment is allocated, one after the other.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recruitmentID, _ := cmd.Flags().GetInt64("recruitment")
			firstOnly, _ := cmd.Flags().GetBool("first-only")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			if (len(args) == 0) == (recruitmentID == 0) {
				return fmt.Errorf("give either a position_id or --recruitment")
			}

			opts := services.AllocateOptions{
				LimitToFirstApplicant: firstOnly,
				DryRun:                dryRun,
			}

			app.Logger.Debug("allocateInterviews command",
				zap.Strings("args", args),
				zap.Int64("recruitment", recruitmentID),
				zap.Bool("first_only", firstOnly),
				zap.Bool("dry_run", dryRun))

			var result *services.AllocationResult
			var err error
			if recruitmentID != 0 {
				result, err = services.AllocateRecruitment(app.Ctx, app.Database, app.Cfg, app.Logger, recruitmentID, opts)
			} else {
				positionID, parseErr := parseID("position_id", args[0])
				if parseErr != nil {
					return parseErr
				}
				result, err = services.AllocateInterviews(app.Ctx, app.Database, app.Cfg, app.Logger, positionID, opts)
			}
			if err != nil {
				return err
			}

			printAllocation(result)

			for _, p := range result.Positions {
				if len(p.Violations) > 0 {
					return fmt.Errorf("position %d: allocation broke %d invariants", p.PositionID, len(p.Violations))
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64("recruitment", 0, "Allocate every position of this recruitment")
	cmd.Flags().Bool("first-only", false, "Stop each position after its first interview")
	cmd.Flags().Bool("dry-run", false, "Show the allocation without saving it")

	return cmd
}

func printAllocation(result *services.AllocationResult) {
	if result.DryRun {
		fmt.Printf("\nDRY RUN: nothing was saved\n")
	}

	for _, p := range result.Positions {
		name := fmt.Sprintf("Position %d", p.PositionID)
		if p.Outcome != nil {
			name = fmt.Sprintf("%s (%d)", p.Outcome.Profile.Position.Name, p.PositionID)
		}
		fmt.Printf("\n%s\n", name)

		if p.Outcome != nil {
			for _, created := range p.Outcome.Created {
				iv := created.Interview
				fmt.Printf("  ✓ %s  %d applicant(s), interviewers %v\n",
					iv.Time.Format("Mon Jan 02 15:04"), len(created.Applications), iv.Interviewers)
			}
			for _, reused := range p.Outcome.Reused {
				fmt.Printf("  ↺ %s  joined shared interview\n", reused.Interview.Time.Format("Mon Jan 02 15:04"))
			}
		}

		switch {
		case p.Err != nil:
			fmt.Printf("  ⚠️  %s\n", describeAllocationError(p.Err))
		case len(p.Outcome.Pending) > 0:
			fmt.Printf("  %d applications still pending\n", len(p.Outcome.Pending))
		default:
			fmt.Printf("  All applications have an interview\n")
		}

		for _, v := range p.Violations {
			fmt.Printf("  ✗ %s\n", v.String())
		}
	}

	fmt.Printf("\nInterviews created: %d\n\n", result.Created())
}

// describeAllocationError turns taxonomy errors into advice for the recruiter
func describeAllocationError(err error) string {
	var allocErr *allocator.AllocationError
	errors.As(err, &allocErr)

	switch {
	case errors.Is(err, allocator.ErrNoTimeBlocksAvailable):
		return "No time blocks: the position has no interviewers or the recruitment window has passed"
	case errors.Is(err, allocator.ErrNoApplicationsWithoutInterviews):
		return "Nothing to do: every application already has an interview"
	case errors.Is(err, allocator.ErrNoFutureTimeSlots):
		return "Every remaining slot is within the notice period"
	case errors.Is(err, allocator.ErrAllApplicantsUnavailable):
		return "Every applicant is busy in every free slot"
	case errors.Is(err, allocator.ErrNoAvailableInterviewers):
		return "No interviewer is free in any remaining slot"
	case errors.Is(err, allocator.ErrInsufficientTimeBlocks) && allocErr != nil:
		return fmt.Sprintf("Ran out of slots: %d interviews created, %d applications still pending", allocErr.Allocated, allocErr.Remaining)
	default:
		return err.Error()
	}
}
