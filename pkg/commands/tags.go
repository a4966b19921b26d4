package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/printers"
)

func addTags(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "List the tag catalog.",
		Example: `
logbook tags
logbook tags add "deep work" --color "#10b981"
logbook tags rm 4
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withService(func(ctx context.Context, svc *app.Service) error {
				tags, err := svc.Tags(ctx)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printJSON(tags)
				}
				pp := printers.PrettyPrint{}
				pp.Tags(tags...)
				return nil
			})
		},
	}
	base.AddOutputArg(cmd, oo)

	addTagCreate(cmd)
	addTagRemove(cmd)
	topLevel.AddCommand(cmd)
}

func addTagCreate(parent *cobra.Command) {
	var hex string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a tag to the catalog.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withService(func(ctx context.Context, svc *app.Service) error {
				tag, err := svc.CreateTag(ctx, strings.Join(args, " "), hex)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printJSON(tag)
				}
				pp := printers.PrettyPrint{}
				pp.Tags(tag)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&hex, "color", "", "Hex color like #10b981. Defaults to the next palette color.")
	base.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addTagRemove(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "rm <tag id>",
		Aliases: []string{"delete"},
		Short:   "Delete a tag and detach it from every entry.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			id, err := parseID(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			return withService(func(ctx context.Context, svc *app.Service) error {
				if err := svc.DeleteTag(ctx, id); err != nil {
					return err
				}
				if oo.JSON {
					return printJSON(map[string]any{"deleted": id})
				}
				_, _ = fmt.Fprintf(color.Output, "deleted tag #%d\n", id)
				return nil
			})
		},
	}
	base.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}
