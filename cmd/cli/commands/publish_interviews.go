package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/pkg/core/services"
)

// PublishInterviewsCmd creates the publishInterviews command
func PublishInterviewsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishInterviews <position_id>",
		Short: "Publish the interview schedule of a position to the schedule sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positionID, err := parseID("position_id", args[0])
			if err != nil {
				return err
			}

			app.Logger.Debug("publishInterviews command", zap.Int64("position_id", positionID))

			sheetsClient, err := app.SheetsClient()
			if err != nil {
				return err
			}

			schedule, err := services.PublishInterviews(app.Ctx, app.Database, sheetsClient, app.Cfg, app.Logger, positionID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Published %d interviews to tab %q\n\n", len(schedule.Rows), schedule.TabTitle())

			return nil
		},
	}
}
