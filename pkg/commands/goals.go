package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/goal"
	"tableflip.dev/logbook/pkg/printers"
	"tableflip.dev/logbook/pkg/timeutil"
)

func addGoals(topLevel *cobra.Command) {
	var status string

	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "List goals with milestone progress.",
		Example: `
logbook goals
logbook goals --status completed
logbook goals add "learn go" --type skill --target 2024-06-30
logbook goals milestone add 3 "tour of go"
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			st, err := goal.ParseStatus(status)
			if err != nil {
				return oo.HandleError(err)
			}
			return withService(func(ctx context.Context, svc *app.Service) error {
				views, err := svc.Goals(ctx, st)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printJSON(views)
				}
				summary, err := svc.GoalSummary(ctx)
				if err != nil {
					return err
				}
				pp := printers.PrettyPrint{}
				pp.GoalSummary(summary)
				pp.Goals(views...)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show goals with this status: active, completed or archived.")
	base.AddOutputArg(cmd, oo)

	addGoalCreate(cmd)
	addGoalStatus(cmd)
	addMilestones(cmd)
	topLevel.AddCommand(cmd)
}

// withService opens the service, runs fn and routes its error through the
// output options.
func withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx := context.Background()
	svc, _, err := openService(ctx)
	if err != nil {
		return oo.HandleError(err)
	}
	defer svc.Cache.Close()
	return oo.HandleError(fn(ctx, svc))
}

func showGoal(v app.GoalView) error {
	if oo.JSON {
		return printJSON(v)
	}
	pp := printers.PrettyPrint{}
	pp.Goal(v)
	return nil
}

func addGoalCreate(parent *cobra.Command) {
	var (
		kind        string
		description string
		target      string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a goal.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			req := goal.CreateRequest{
				Title:       strings.Join(args, " "),
				Description: description,
				Type:        goal.Type(strings.ToUpper(strings.TrimSpace(kind))),
			}
			if target != "" {
				d, err := timeutil.ParseDate(target)
				if err != nil {
					return oo.HandleError(err)
				}
				req.TargetDate = &d
			}
			return withService(func(ctx context.Context, svc *app.Service) error {
				v, err := svc.CreateGoal(ctx, req)
				if err != nil {
					return err
				}
				return showGoal(v)
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", string(goal.TypePersonal), "Goal type: skill, project, habit, health, career or personal.")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Longer description of the goal.")
	cmd.Flags().StringVar(&target, "target", "", "Target date, YYYY-MM-DD.")
	base.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addGoalStatus(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:       "status <goal id> <active|completed|archived>",
		Short:     "Change the status of a goal.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"active", "completed", "archived"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			id, err := parseID(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			st, err := goal.ParseStatus(args[1])
			if err != nil {
				return oo.HandleError(err)
			}
			return withService(func(ctx context.Context, svc *app.Service) error {
				v, err := svc.SetGoalStatus(ctx, id, st)
				if err != nil {
					return err
				}
				return showGoal(v)
			})
		},
	}
	base.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addMilestones(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "milestone",
		Aliases: []string{"ms"},
		Short:   "Add, complete or remove goal milestones.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	add := &cobra.Command{
		Use:   "add <goal id> <title>",
		Short: "Add a milestone to a goal.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("requires a goal id and a title")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			id, err := parseID(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			return withService(func(ctx context.Context, svc *app.Service) error {
				v, err := svc.AddMilestone(ctx, id, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				return showGoal(v)
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <goal id> <milestone id>",
		Short: "Complete or reopen a milestone.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return milestoneOp(args, func(ctx context.Context, svc *app.Service, goalID, milestoneID int64) (app.GoalView, error) {
				return svc.ToggleMilestone(ctx, goalID, milestoneID)
			})
		},
	}

	remove := &cobra.Command{
		Use:     "rm <goal id> <milestone id>",
		Aliases: []string{"delete"},
		Short:   "Remove a milestone.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return milestoneOp(args, func(ctx context.Context, svc *app.Service, goalID, milestoneID int64) (app.GoalView, error) {
				return svc.DeleteMilestone(ctx, goalID, milestoneID)
			})
		},
	}

	for _, sub := range []*cobra.Command{add, toggle, remove} {
		base.AddOutputArg(sub, oo)
		cmd.AddCommand(sub)
	}
	parent.AddCommand(cmd)
}

func milestoneOp(args []string, fn func(context.Context, *app.Service, int64, int64) (app.GoalView, error)) error {
	goalID, err := parseID(args[0])
	if err != nil {
		return oo.HandleError(err)
	}
	milestoneID, err := parseID(args[1])
	if err != nil {
		return oo.HandleError(fmt.Errorf("milestone: %w", err))
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		v, err := fn(ctx, svc, goalID, milestoneID)
		if err != nil {
			return err
		}
		return showGoal(v)
	})
}
