package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/logbook/pkg/entry"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerGetDayTool(srv, svc)
	registerListRangeTool(srv, svc)
	registerSearchEntriesTool(srv, svc)
	registerCreateEntryTool(srv, svc)
	registerUpdateEntryTool(srv, svc)
	registerToggleEntryTool(srv, svc)
	registerDeleteEntryTool(srv, svc)
	registerHeatmapTool(srv, svc)
	registerStatsTool(srv, svc)
	registerListTagsTool(srv, svc)
	registerListGoalsTool(srv, svc)
	registerAddMilestoneTool(srv, svc)
	registerToggleMilestoneTool(srv, svc)
}

var entryTypes = []string{"note", "skill", "action", "event", "commit", "goal"}

func registerGetDayTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_day",
		mcp.WithDescription("List the journal entries of one day."),
		mcp.WithString("date",
			mcp.Description("Day as YYYY-MM-DD, or today, yesterday or tomorrow. Defaults to today."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := svc.Day(ctx, request.GetString("date", "today"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(day)
	})
}

func registerListRangeTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_range",
		mcp.WithDescription("List entries between two days, grouped by day. Days without entries are omitted."),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("First day, YYYY-MM-DD."),
		),
		mcp.WithString("end",
			mcp.Description("Last day, YYYY-MM-DD. Defaults to today."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := request.RequireString("start")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		days, err := svc.Range(ctx, start, request.GetString("end", "today"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"days":  days,
			"count": len(days),
		})
	})
}

func registerSearchEntriesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"search_entries",
		mcp.WithDescription("Search entry titles and content. Results are newest first."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive search text."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 20)."),
			mcp.Min(1),
			mcp.Max(100),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := request.GetInt("limit", 20)

		results, err := svc.Search(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"query":   query,
			"limit":   limit,
			"results": results,
			"count":   len(results),
		})
	})
}

func registerCreateEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_entry",
		mcp.WithDescription("Log a new entry on a day."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("One-line title of the entry."),
		),
		mcp.WithString("type",
			mcp.Description("Entry type. Defaults to note."),
			mcp.Enum(entryTypes...),
		),
		mcp.WithString("date",
			mcp.Description("Day as YYYY-MM-DD. Defaults to today."),
		),
		mcp.WithString("content",
			mcp.Description("Optional markdown body."),
		),
		mcp.WithNumber("mood",
			mcp.Description("Optional mood from 1 to 5."),
			mcp.Min(1),
			mcp.Max(5),
		),
		mcp.WithString("tags",
			mcp.Description("Optional comma separated tag names."),
		),
		mcp.WithString("start",
			mcp.Description("Event start time, HH:MM."),
		),
		mcp.WithString("end",
			mcp.Description("Event end time, HH:MM."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title   string  `json:"title"`
			Type    string  `json:"type"`
			Date    string  `json:"date"`
			Content string  `json:"content"`
			Mood    float64 `json:"mood"`
			Tags    string  `json:"tags"`
			Start   string  `json:"start"`
			End     string  `json:"end"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.CreateEntry(ctx, CreateEntryOptions{
			Title:   args.Title,
			Type:    args.Type,
			Date:    args.Date,
			Content: args.Content,
			Mood:    int(args.Mood),
			Tags:    splitTags(args.Tags),
			Start:   args.Start,
			End:     args.End,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_entry",
		mcp.WithDescription("Edit the title, content or mood of an entry. Entries never move to another day."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Entry identifier."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day the entry belongs to, YYYY-MM-DD."),
		),
		mcp.WithString("title",
			mcp.Description("New title."),
		),
		mcp.WithString("content",
			mcp.Description("New markdown body."),
		),
		mcp.WithNumber("mood",
			mcp.Description("New mood from 1 to 5."),
			mcp.Min(1),
			mcp.Max(5),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID      int64    `json:"id"`
			Date    string   `json:"date"`
			Title   *string  `json:"title"`
			Content *string  `json:"content"`
			Mood    *float64 `json:"mood"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		patch := entry.UpdateRequest{Title: args.Title, Content: args.Content}
		if args.Mood != nil {
			mood := int(*args.Mood)
			patch.Mood = &mood
		}
		dto, err := svc.UpdateEntry(ctx, args.ID, args.Date, patch)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerToggleEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"toggle_entry",
		mcp.WithDescription("Complete or reopen an action."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Entry identifier."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day the entry belongs to, YYYY-MM-DD."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, date, err := entryRef(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.ToggleEntry(ctx, id, date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_entry",
		mcp.WithDescription("Delete an entry."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Entry identifier."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day the entry belongs to, YYYY-MM-DD."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, date, err := entryRef(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteEntry(ctx, id, date); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": id})
	})
}

func registerHeatmapTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_heatmap",
		mcp.WithDescription("Activity totals and streaks over the trailing year."),
		mcp.WithBoolean("days",
			mcp.Description("Include the per-day counts of active days."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Heatmap(ctx, request.GetBool("days", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerStatsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_stats",
		mcp.WithDescription("All-time totals, entry counts per type and the most recently created entries."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerListTagsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_tags",
		mcp.WithDescription("List the tag catalog with ids and colors."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := svc.Tags(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"tags": tags, "count": len(tags)})
	})
}

func registerListGoalsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_goals",
		mcp.WithDescription("List goals with milestone progress and deadline status."),
		mcp.WithString("status",
			mcp.Description("Optional status filter."),
			mcp.Enum("active", "completed", "archived"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		goals, err := svc.Goals(ctx, request.GetString("status", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"goals": goals,
			"count": len(goals),
		})
	})
}

func registerAddMilestoneTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_milestone",
		mcp.WithDescription("Add a milestone to a goal."),
		mcp.WithNumber("goal_id",
			mcp.Required(),
			mcp.Description("Goal identifier."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Milestone title."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			GoalID int64  `json:"goal_id"`
			Title  string `json:"title"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.AddMilestone(ctx, args.GoalID, args.Title)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerToggleMilestoneTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"toggle_milestone",
		mcp.WithDescription("Complete or reopen a goal milestone."),
		mcp.WithNumber("goal_id",
			mcp.Required(),
			mcp.Description("Goal identifier."),
		),
		mcp.WithNumber("milestone_id",
			mcp.Required(),
			mcp.Description("Milestone identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			GoalID      int64 `json:"goal_id"`
			MilestoneID int64 `json:"milestone_id"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.ToggleMilestone(ctx, args.GoalID, args.MilestoneID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func entryRef(request mcp.CallToolRequest) (int64, string, error) {
	var args struct {
		ID   int64  `json:"id"`
		Date string `json:"date"`
	}
	if err := request.BindArguments(&args); err != nil {
		return 0, "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.ID <= 0 {
		return 0, "", fmt.Errorf("id is required")
	}
	return args.ID, args.Date, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
