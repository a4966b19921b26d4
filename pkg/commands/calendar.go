package commands

import (
	"context"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/calendar"
	"tableflip.dev/logbook/pkg/commands/options"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/printers"
	"tableflip.dev/logbook/pkg/timeutil"
)

func addCalendar(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	var long bool

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal", "month"},
		Short:   "Show a month with entry counts per day.",
		Example: `
logbook calendar
logbook cal --on 2024-02-01
logbook cal --long
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			svc, _, err := openService(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			defer svc.Cache.Close()

			anchor, err := on.GetOn(svc.Today())
			if err != nil {
				return oo.HandleError(err)
			}
			view, err := svc.Month(ctx, anchor)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(monthJSON(view.Grid, view.Info))
			}
			pp := printers.PrettyPrint{}
			if long {
				pp.MonthLong(view.Grid, view.Info)
			} else {
				pp.Month(view.Grid, view.Info)
			}
			return nil
		},
	}

	options.AddOnArgs(cmd, on)
	base.AddOutputArg(cmd, oo)
	cmd.Flags().BoolVarP(&long, "long", "l", false, "List every day of the month with its counts.")
	topLevel.AddCommand(cmd)
}

type dayJSON struct {
	Date            timeutil.Date `json:"date"`
	Count           int           `json:"count"`
	Types           []entry.Type  `json:"types,omitempty"`
	GoalCompletions int           `json:"goalCompletions,omitempty"`
	Milestones      int           `json:"milestones,omitempty"`
}

func monthJSON(g calendar.Grid, info calendar.Info) map[string]any {
	days := make([]dayJSON, 0, 31)
	for _, c := range g.Cells {
		if !c.InMonth {
			continue
		}
		s := info.Summaries[c.Date]
		days = append(days, dayJSON{
			Date:            c.Date,
			Count:           s.Count,
			Types:           s.Types,
			GoalCompletions: s.GoalCompletions,
			Milestones:      info.Milestones[c.Date],
		})
	}
	return map[string]any{
		"month": g.Month,
		"days":  days,
	}
}
