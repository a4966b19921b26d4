package commands

import (
	"context"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/commands/options"
	"tableflip.dev/logbook/pkg/printers"
)

func addStats(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show all-time totals, the entry type breakdown and recent entries.",
		Example: `
logbook stats
logbook stats --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withService(func(ctx context.Context, svc *app.Service) error {
				sum, err := svc.Summary(ctx)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printJSON(sum)
				}
				pp := printers.PrettyPrint{ShowID: io.ShowID}
				pp.Summary(sum)
				return nil
			})
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
