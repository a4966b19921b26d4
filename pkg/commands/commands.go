package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/config"
)

var (
	oo = &base.OutputOptions{}
	v  = config.New()
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "logbook",
		Short: base.Wrap80("A personal journal on the command line: calendar, heatmap, goals and search."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addGlobalFlags(cmd)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addKey(topLevel)
	addCalendar(topLevel)
	addHeatmap(topLevel)
	addDay(topLevel)
	addAdd(topLevel)
	addComplete(topLevel)
	addEdit(topLevel)
	addRemove(topLevel)
	addSearch(topLevel)
	addGoals(topLevel)
	addReport(topLevel)
	addStats(topLevel)
	addTags(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addCompletions(topLevel)
	addVersion(topLevel)
	addUpgrade(topLevel)
}

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("server", "", "Journal server URL. When empty the local store is used.")
	flags.String("path", "", "Directory of the local store.")
	flags.String("week-start", "", "First day of the week: sunday or monday.")
	flags.String("timezone", "", "IANA time zone used to decide what today is.")
	flags.BoolVar(&verbose, "verbose", false, "Log cache and backend activity to stderr.")

	_ = v.BindPFlag(config.KeyServer, flags.Lookup("server"))
	_ = v.BindPFlag(config.KeyPath, flags.Lookup("path"))
	_ = v.BindPFlag(config.KeyWeekStart, flags.Lookup("week-start"))
	_ = v.BindPFlag(config.KeyTimezone, flags.Lookup("timezone"))
}
