package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/commands/options"
)

func addRemove(topLevel *cobra.Command) {
	on := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an entry.",
		Example: `
logbook rm 42
logbook rm 42 --on 2024-05-14
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
			if _, err := svc.DeleteEntry(ctx, id, d); err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(map[string]any{"deleted": id, "date": d})
			}
			_, _ = fmt.Fprintf(color.Output, "deleted #%d from %s\n", id, d)
			return nil
		},
	}

	options.AddOnArgs(cmd, on)
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
