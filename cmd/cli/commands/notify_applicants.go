package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/pkg/core/services"
)

// NotifyApplicantsCmd creates the notifyApplicants command
func NotifyApplicantsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifyApplicants <position_id>",
		Short: "Email applicants their interview time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positionID, err := parseID("position_id", args[0])
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("notifyApplicants command", zap.Int64("position_id", positionID), zap.Bool("dry_run", dryRun))

			var mailer services.Mailer
			if !dryRun {
				gmailClient, err := app.GmailClient()
				if err != nil {
					return err
				}
				mailer = gmailClient
			}

			sent, failed, err := services.NotifyApplicants(app.Ctx, app.Database, mailer, app.Cfg, app.Logger, positionID, dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("\nDRY RUN: no emails were sent\n")
			}

			if len(sent) > 0 {
				fmt.Printf("\nNotified %d applicants:\n", len(sent))
				for _, s := range sent {
					fmt.Printf("  ✓ %s (%s) %s\n", s.Name, s.Email, s.Time.Format("Mon Jan 02 15:04"))
				}
			}

			if len(failed) > 0 {
				fmt.Printf("\n⚠️  Failed to notify %d applicants:\n", len(failed))
				for _, f := range failed {
					fmt.Printf("  ✗ %s (%s): %s\n", f.Name, f.Email, f.Error)
				}
			}

			if len(sent) == 0 && len(failed) == 0 {
				fmt.Println("\nNo applicants to notify - everyone with an interview has been emailed.")
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "List who would be emailed without sending")

	return cmd
}
