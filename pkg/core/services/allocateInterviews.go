package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/core/allocator"
	"github.com/jakechorley/interview-allocator/pkg/core/allocator/criteria"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

// AllocateOptions controls an allocation run
type AllocateOptions struct {
	// LimitToFirstApplicant stops each position after its first interview
	LimitToFirstApplicant bool

	// DryRun keeps every write in memory
	DryRun bool

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// PositionAllocation is the result of allocating one position
type PositionAllocation struct {
	PositionID int64
	Outcome    *allocator.AllocationOutcome

	// Err is the allocation failure, if any. Only taxonomy errors end up here;
	// anything else aborts the run.
	Err error

	// Violations lists broken allocation invariants. Expected to be empty.
	Violations []allocator.InterviewValidationError
}

// AllocationResult is the result of an allocation run
type AllocationResult struct {
	Positions []PositionAllocation
	DryRun    bool
}

// Created returns the number of interviews created across all positions
func (r *AllocationResult) Created() int {
	total := 0
	for _, p := range r.Positions {
		if p.Outcome != nil {
			total += p.Outcome.Count()
		}
	}
	return total
}

// AllocateInterviews allocates interviews for a single position
func AllocateInterviews(
	ctx context.Context,
	database db.Database,
	cfg *config.Config,
	logger *zap.Logger,
	positionID int64,
	opts AllocateOptions,
) (*AllocationResult, error) {
	return allocatePositions(ctx, database, cfg, logger, []int64{positionID}, opts)
}

// AllocateRecruitment allocates interviews for every position of a recruitment, in ID order.
// Positions run one after the other so later positions see the interviews created for earlier ones.
func AllocateRecruitment(
	ctx context.Context,
	database db.Database,
	cfg *config.Config,
	logger *zap.Logger,
	recruitmentID int64,
	opts AllocateOptions,
) (*AllocationResult, error) {
	positions, err := database.ListPositions(ctx, recruitmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("recruitment %d has no positions", recruitmentID)
	}

	ids := make([]int64, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ID)
	}
	logger.Info("Allocating recruitment", zap.Int64("recruitment_id", recruitmentID), zap.Int("positions", len(ids)))

	return allocatePositions(ctx, database, cfg, logger, ids, opts)
}

func allocatePositions(
	ctx context.Context,
	database db.Database,
	cfg *config.Config,
	logger *zap.Logger,
	positionIDs []int64,
	opts AllocateOptions,
) (*AllocationResult, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// One dry-run view for the whole run so positions see each other's pending writes
	var store db.Database = database
	if opts.DryRun {
		logger.Info("Dry run: no changes will be saved")
		store = db.NewDryRun(database)
	}

	result := &AllocationResult{DryRun: opts.DryRun}
	for _, positionID := range positionIDs {
		allocation, err := allocatePosition(ctx, store, cfg, loc, logger, positionID, opts)
		if err != nil {
			return result, err
		}
		result.Positions = append(result.Positions, *allocation)
	}

	logger.Info("Allocation finished",
		zap.Int("positions", len(result.Positions)),
		zap.Int("interviews_created", result.Created()),
		zap.Bool("dry_run", opts.DryRun))

	return result, nil
}

func allocatePosition(
	ctx context.Context,
	store db.Database,
	cfg *config.Config,
	loc *time.Location,
	logger *zap.Logger,
	positionID int64,
	opts AllocateOptions,
) (*PositionAllocation, error) {
	logger = logger.With(zap.Int64("position_id", positionID))

	unlock, err := store.LockPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock position %d: %w", positionID, err)
	}
	defer unlock()
	logger.Debug("Acquired position lock")

	recruitment, err := store.GetRecruitmentWindow(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recruitment window: %w", err)
	}

	excludeDay, err := blackoutDays(cfg.Blackouts, *recruitment, loc, logger)
	if err != nil {
		return nil, err
	}

	allocCfg := allocationConfig(cfg, store, loc, positionID, opts)
	allocCfg.ExcludeDay = excludeDay

	outcome, err := allocator.Allocate(ctx, allocCfg)
	if err != nil && !allocator.IsAllocationFailure(err) {
		return nil, err
	}

	allocation := &PositionAllocation{
		PositionID: positionID,
		Outcome:    outcome,
		Err:        err,
	}

	if outcome != nil {
		allocation.Violations = allocator.ValidateAllocation(outcome.Created, outcome.Floor)
		for _, v := range allocation.Violations {
			logger.Error("Allocation invariant broken", zap.String("violation", v.String()))
		}

		logger.Info("Position allocated",
			zap.String("position", outcome.Profile.Position.Name),
			zap.Int("created", outcome.Count()),
			zap.Int("reused", len(outcome.Reused)),
			zap.Int("pending", len(outcome.Pending)),
			zap.Time("floor", outcome.Floor))
	}

	if err != nil {
		var allocErr *allocator.AllocationError
		if errors.As(err, &allocErr) {
			logger.Warn("Allocation incomplete",
				zap.Error(err),
				zap.Int("allocated", allocErr.Allocated),
				zap.Int("remaining", allocErr.Remaining))
		}
	}

	return allocation, nil
}

// allocationConfig maps the application config onto the allocator's
func allocationConfig(
	cfg *config.Config,
	stores allocator.Stores,
	loc *time.Location,
	positionID int64,
	opts AllocateOptions,
) allocator.AllocationConfig {
	locationFormat := cfg.LocationFormat
	if locationFormat == "" {
		locationFormat = config.DefaultLocationFormat
	}

	return allocator.AllocationConfig{
		PositionID:            positionID,
		Stores:                stores,
		Criteria:              criteria.Default(),
		DailyStartHour:        cfg.InterviewHours.Start,
		DailyEndHour:          cfg.InterviewHours.End,
		Location:              loc,
		NoticePeriod:          cfg.NoticePeriod(),
		LimitToFirstApplicant: opts.LimitToFirstApplicant,
		Now:                   opts.Now,
		LocationLabel: func(position model.Position) string {
			return fmt.Sprintf(locationFormat, position.Name)
		},
	}
}
