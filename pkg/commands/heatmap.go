package commands

import (
	"context"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/config"
	"tableflip.dev/logbook/pkg/printers"
)

func addHeatmap(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "heatmap",
		Aliases: []string{"activity", "streak"},
		Short:   "Show entry activity and streaks over the trailing year.",
		Example: `
logbook heatmap
logbook heatmap --last 26w
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			svc, cfg, err := openService(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			defer svc.Cache.Close()

			view, err := svc.Heatmap(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(view.Snapshot)
			}
			pp := printers.PrettyPrint{}
			pp.Title("Activity · " + printers.Window(view.End, cfg.HeatmapWindow))
			pp.Heatmap(view.Grid, view.Snapshot, cfg.WeekStart)
			return nil
		},
	}

	cmd.Flags().String("last", "", "Window to show, for example 53w or 90d.")
	_ = v.BindPFlag(config.KeyHeatmapWindow, cmd.Flags().Lookup("last"))
	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
