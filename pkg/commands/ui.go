package commands

import (
	"github.com/spf13/cobra"

	tuiapp "tableflip.dev/logbook/pkg/tui/app"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
logbook ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()
			svc, cfg, err := openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Cache.Close()
			return tuiapp.Run(ctx, svc, tuiapp.Options{SearchDelay: cfg.Debounce})
		},
	}

	topLevel.AddCommand(cmd)
}
