package commands

import (
	"context"
	"errors"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/commands/options"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/printers"
)

func addEdit(topLevel *cobra.Command) {
	on := &options.OnOptions{}
	var (
		title   string
		content string
		mood    int
		tags    []string
		start   string
		end     string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an entry. Entries stay on their day.",
		Example: `
logbook edit 42 --title "read the borg paper again"
logbook edit 42 --on 2024-05-14 --mood 4 --tag papers
logbook edit 42 --tag ""
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			flags := cmd.Flags()
			patch := entry.UpdateRequest{}
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("content") {
				patch.Content = &content
			}
			if flags.Changed("mood") {
				patch.Mood = &mood
			}
			if flags.Changed("tag") {
				patch.Tags = &tags
			}
			var err error
			if patch.Start, err = clockFlag(start); err != nil {
				return oo.HandleError(err)
			}
			if patch.End, err = clockFlag(end); err != nil {
				return oo.HandleError(err)
			}
			if patch.Empty() {
				return oo.HandleError(errors.New("nothing to change"))
			}

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
			e, err := svc.UpdateEntry(ctx, id, d, patch)
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
	cmd.Flags().StringVar(&title, "title", "", "New title.")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New markdown body.")
	cmd.Flags().IntVar(&mood, "mood", 0, "New mood from 1 to 5, 0 clears it.")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace the tags. An empty value clears them.")
	cmd.Flags().StringVar(&start, "start", "", "New event start time, HH:MM.")
	cmd.Flags().StringVar(&end, "end", "", "New event end time, HH:MM.")
	topLevel.AddCommand(cmd)
}
