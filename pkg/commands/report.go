package commands

import (
	"context"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/printers"
	"tableflip.dev/logbook/pkg/timeutil"
)

func addReport(topLevel *cobra.Command) {
	var last string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Display recently completed entries grouped by day",
		Long: `Report lists completed actions and goals grouped by day within the specified window.

Examples:
  logbook report
  logbook report --last 3d
  logbook report --last 1w2d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			days, label, err := timeutil.ParseSpan(last)
			if err != nil {
				return oo.HandleError(err)
			}
			return withService(func(ctx context.Context, svc *app.Service) error {
				until := svc.Today()
				since := until.AddDays(-(days - 1))
				result, err := svc.Report(ctx, since, until)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printJSON(result)
				}
				pp := printers.PrettyPrint{}
				pp.Report(result, label)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&last, "last", "1w", "time window to include (for example 3d, 1w)")
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
