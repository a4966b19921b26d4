package commands

import (
	"context"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/commands/options"
	"tableflip.dev/logbook/pkg/printers"
)

func addComplete(topLevel *cobra.Command) {
	on := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:     "complete <id>",
		Aliases: []string{"done", "toggle"},
		Short:   "Complete or reopen an action.",
		Example: `
logbook complete 42
logbook complete 42 --on yesterday
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			svc, _, err := openService(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			defer svc.Cache.Close()

			id, d, err := entryArgs(args, on, svc.Today())
			if err != nil {
				return oo.HandleError(err)
			}
			e, err := svc.ToggleCompleted(ctx, id, d)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(e)
			}
			pp := printers.PrettyPrint{ShowID: true}
			pp.Entries(e)
			return nil
		},
	}

	options.AddOnArgs(cmd, on)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
