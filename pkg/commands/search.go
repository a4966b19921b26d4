package commands

import (
	"context"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/commands/options"
	"tableflip.dev/logbook/pkg/printers"
)

func addSearch(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var limit int

	cmd := &cobra.Command{
		Use:     "search <query>",
		Aliases: []string{"find"},
		Short:   "Search entry titles, bodies and tags.",
		Example: `
logbook search kubernetes
logbook search "design review" --limit 5
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			svc, _, err := openService(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			defer svc.Cache.Close()

			query := strings.Join(args, " ")
			results, err := svc.Search(ctx, query)
			if err != nil {
				return oo.HandleError(err)
			}
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}
			if oo.JSON {
				return printJSON(map[string]any{"query": query, "results": results})
			}
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			pp.Search(query, results...)
			return nil
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, oo)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many results.")
	topLevel.AddCommand(cmd)
}
