package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/printers"
)

func addKey(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the entry glyphs",
		Example: `
logbook key
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			pp := printers.PrettyPrint{}
			pp.NewLine()
			pp.Key()
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
