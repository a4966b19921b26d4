package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/commands/options"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/printers"
)

func addAdd(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	in := &options.InteractiveOptions{}
	var (
		kind    string
		content string
		mood    int
		tags    []string
		start   string
		end     string
		done    bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Log a new entry.",
		Example: `
logbook add read the borg paper
logbook add --type action ship the release
logbook add --type event --start 09:30 --end 10:00 standup
logbook add -i
`,
		Args: func(_ *cobra.Command, args []string) error {
			if in.Interactive {
				return nil
			}
			if len(args) < 1 {
				return errors.New("requires a title")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			svc, _, err := openService(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			defer svc.Cache.Close()

			req := entry.CreateRequest{
				Title:     strings.Join(args, " "),
				Content:   content,
				Mood:      mood,
				Tags:      tags,
				Completed: done,
			}
			if req.Date, err = on.GetOn(svc.Today()); err != nil {
				return oo.HandleError(err)
			}
			if kind != "" {
				if req.Type, err = entry.ParseType(kind); err != nil {
					return oo.HandleError(err)
				}
			}
			if req.Start, err = clockFlag(start); err != nil {
				return oo.HandleError(err)
			}
			if req.End, err = clockFlag(end); err != nil {
				return oo.HandleError(err)
			}
			if in.Interactive {
				if err := promptEntry(cmd, &req); err != nil {
					return err
				}
			}

			created, _, err := svc.CreateEntry(ctx, req)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(created)
			}
			pp := printers.PrettyPrint{ShowID: true}
			pp.Entries(created)
			_, _ = color.New(color.Faint).Fprintf(color.Output, "logged on %s\n", created.Date.Format(printers.LayoutLong))
			return nil
		},
	}

	options.AddOnArgs(cmd, on)
	options.InteractiveArgs(cmd, in)
	base.AddOutputArg(cmd, oo)
	cmd.Flags().StringVarP(&kind, "type", "t", "", fmt.Sprintf("Entry type, one of %s. Defaults to note.", typeNames()))
	cmd.Flags().StringVarP(&content, "content", "c", "", "Markdown body of the entry.")
	cmd.Flags().IntVar(&mood, "mood", 0, "Mood from 1 to 5.")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag the entry. Repeat or comma separate for several.")
	cmd.Flags().StringVar(&start, "start", "", "Event start time, HH:MM.")
	cmd.Flags().StringVar(&end, "end", "", "Event end time, HH:MM.")
	cmd.Flags().BoolVar(&done, "done", false, "Log an action as already completed.")
	topLevel.AddCommand(cmd)
}

func typeNames() string {
	names := make([]string, 0, len(entry.Types()))
	for _, t := range entry.Types() {
		names = append(names, strings.ToLower(string(t)))
	}
	return strings.Join(names, ", ")
}

func clockFlag(raw string) (*entry.ClockTime, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	c, err := entry.ParseClock(raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
