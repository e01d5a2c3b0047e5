package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/core/allocator"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

// TimeBlockListing is a preview of the blocks an allocation run would try, in order
type TimeBlockListing struct {
	Profile *allocator.PositionProfile
	Blocks  []*allocator.TimeBlock

	// Names maps interviewer IDs to display names
	Names map[model.UserID]string
}

// ListTimeBlocks generates and ranks the blocks of a position without allocating anything
func ListTimeBlocks(
	ctx context.Context,
	database db.Database,
	cfg *config.Config,
	logger *zap.Logger,
	positionID int64,
	now func() time.Time,
) (*TimeBlockListing, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	recruitment, err := database.GetRecruitmentWindow(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recruitment window: %w", err)
	}

	excludeDay, err := blackoutDays(cfg.Blackouts, *recruitment, loc, logger)
	if err != nil {
		return nil, err
	}

	allocCfg := allocationConfig(cfg, database, loc, positionID, AllocateOptions{Now: now})
	allocCfg.ExcludeDay = excludeDay

	profile, blocks, err := allocator.CollectBlocks(ctx, allocCfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Collected time blocks",
		zap.Int64("position_id", positionID),
		zap.Int("blocks", len(blocks)),
		zap.Int("interviewers", len(profile.Interviewers)))

	users, err := database.GetUsers(ctx, profile.Interviewers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interviewers: %w", err)
	}

	return &TimeBlockListing{
		Profile: profile,
		Blocks:  blocks,
		Names:   displayNames(users),
	}, nil
}
