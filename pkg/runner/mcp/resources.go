package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerHeatmapResource(srv, svc)
	registerGoalsResource(srv, svc)
	registerDayTemplate(srv, svc)
}

func registerHeatmapResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"logbook://heatmap",
		"Activity",
		mcp.WithResourceDescription("Entry totals and streaks over the trailing year."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dto, err := svc.Heatmap(ctx, true)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func registerGoalsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"logbook://goals",
		"Goals",
		mcp.WithResourceDescription("Active goals with milestone progress."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		goals, err := svc.Goals(ctx, "active")
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"goals": goals,
			"count": len(goals),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerDayTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"logbook://days/{date}",
		"Day Entries",
		mcp.WithTemplateDescription("Entries logged on a day (YYYY-MM-DD or today)."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := templateArg(request.Params.Arguments["date"])
		if date == "" {
			return nil, fmt.Errorf("date is required")
		}

		day, err := svc.Day(ctx, date)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, day)
	})
}

// templateArg unwraps a URI template variable, which the server may hand over
// as a string or a single-element list.
func templateArg(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case []string:
		if len(a) > 0 {
			return a[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
