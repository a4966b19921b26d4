package commands

import (
	"context"
	"errors"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/commands/options"
	"tableflip.dev/logbook/pkg/printers"
	"tableflip.dev/logbook/pkg/timeutil"
)

func addDay(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var (
		markdown bool
		width    int
	)

	cmd := &cobra.Command{
		Use:     "day [date]",
		Aliases: []string{"get", "today"},
		Short:   "List the entries of a day.",
		Example: `
logbook day
logbook day yesterday
logbook day 2024-05-15 --markdown
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			svc, _, err := openService(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			defer svc.Cache.Close()

			d, err := options.ParseDay(strings.Join(args, " "), svc.Today())
			if err != nil {
				return oo.HandleError(err)
			}
			entries, err := svc.Day(ctx, d)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(map[string]any{"date": d, "entries": entries})
			}
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			if markdown {
				return oo.HandleError(pp.Markdown(printers.DayMarkdown(d, entries), width))
			}
			pp.Day(d, entries...)
			return nil
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "Render the day as markdown, entry bodies included.")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --markdown.")
	topLevel.AddCommand(cmd)
}

// entryArgs reads "<id>" and the --on day every entry command needs, since
// entries are addressed within their day.
func entryArgs(args []string, on *options.OnOptions, today timeutil.Date) (int64, timeutil.Date, error) {
	if len(args) != 1 {
		return 0, timeutil.Date{}, errors.New("requires an entry id")
	}
	id, err := parseID(args[0])
	if err != nil {
		return 0, timeutil.Date{}, err
	}
	d, err := on.GetOn(today)
	if err != nil {
		return 0, timeutil.Date{}, err
	}
	return id, d, nil
}
