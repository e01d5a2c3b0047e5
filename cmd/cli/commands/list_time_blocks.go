package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/pkg/core/services"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorOrange = "\033[38;5;208m"
	colorDim    = "\033[2m"
)

// ListTimeBlocksCmd creates the listTimeBlocks command
func ListTimeBlocksCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listTimeBlocks <position_id>",
		Short: "Show the ranked time blocks an allocation would try, best first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positionID, err := parseID("position_id", args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			app.Logger.Debug("listTimeBlocks command", zap.Int64("position_id", positionID), zap.Int("limit", limit))

			listing, err := services.ListTimeBlocks(app.Ctx, app.Database, app.Cfg, app.Logger, positionID, nil)
			if err != nil {
				return err
			}

			loc, err := app.Cfg.Location()
			if err != nil {
				return err
			}

			total := len(listing.Profile.Interviewers)
			fmt.Printf("\nTime blocks for %s (%d interviewers)\n\n", listing.Profile.Position.Name, total)

			if len(listing.Blocks) == 0 {
				fmt.Println("No time blocks available.")
				return nil
			}

			for i, block := range listing.Blocks {
				if limit > 0 && i >= limit {
					fmt.Printf("%s... %d more%s\n", colorDim, len(listing.Blocks)-limit, colorReset)
					break
				}

				names := make([]string, 0, block.AvailableCount())
				for _, id := range block.AvailableInterviewers {
					names = append(names, listing.Names[id])
				}

				color := availabilityColor(block.AvailableCount(), total, colorGreen, colorYellow, colorOrange)
				fmt.Printf("%3d. %s %s-%s  rating %3d  %s%d/%d%s  %s\n",
					i+1,
					block.Start.In(loc).Format("Mon Jan 02"),
					block.Start.In(loc).Format("15:04"),
					block.End.In(loc).Format("15:04"),
					block.Rating,
					color, block.AvailableCount(), total, colorReset,
					strings.Join(names, ", "),
				)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of blocks to show (0 for all)")

	return cmd
}

// availabilityColor is green when every interviewer is free, yellow when at
// least half are and orange otherwise
func availabilityColor(available, total int, green, yellow, orange string) string {
	switch {
	case total > 0 && available >= total:
		return green
	case available*2 >= total:
		return yellow
	default:
		return orange
	}
}
