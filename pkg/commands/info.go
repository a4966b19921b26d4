package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/config"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the resolved configuration and where entries are kept.",
		Example: `
logbook info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := config.Load(v)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(map[string]any{
					"configFile":    v.ConfigFileUsed(),
					"server":        cfg.Server,
					"path":          cfg.Path,
					"weekStart":     cfg.WeekStart.String(),
					"debounce":      cfg.Debounce.String(),
					"heatmapWindow": cfg.HeatmapWindow,
					"timezone":      cfg.Location.String(),
				})
			}

			bold := color.New(color.Bold)
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("config"), orNone(v.ConfigFileUsed()))
			if override := os.Getenv("LOGBOOK_CONFIG_PATH"); override != "" {
				tbl.AddRow(bold.Sprint("config path"), override)
			}
			if cfg.Remote() {
				tbl.AddRow(bold.Sprint("backend"), "server "+cfg.Server)
				token := "none"
				if cfg.Token != "" {
					token = "set"
				}
				tbl.AddRow(bold.Sprint("token"), token)
			} else {
				tbl.AddRow(bold.Sprint("backend"), "local store "+cfg.Path)
			}
			tbl.AddRow(bold.Sprint("week start"), cfg.WeekStart)
			tbl.AddRow(bold.Sprint("timezone"), cfg.Location)
			tbl.AddRow(bold.Sprint("heatmap"), fmt.Sprintf("%d days", cfg.HeatmapWindow))
			tbl.AddRow(bold.Sprint("search delay"), cfg.Debounce)
			tbl.RightAlign(0)
			_, _ = fmt.Fprintln(color.Output, tbl)
			return nil
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
