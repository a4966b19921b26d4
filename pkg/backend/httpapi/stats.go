package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

// Heatmap fetches the activity snapshot for [start, end].
func (c *Client) Heatmap(ctx context.Context, start, end timeutil.Date) (heatmap.Snapshot, error) {
	q := url.Values{"start": {start.String()}, "end": {end.String()}}
	var out heatmap.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/stats/heatmap", q, nil, &out); err != nil {
		return heatmap.Snapshot{}, err
	}
	return out, nil
}

// Summary fetches the all-time overview.
func (c *Client) Summary(ctx context.Context) (backend.Summary, error) {
	var out backend.Summary
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &out); err != nil {
		return backend.Summary{}, err
	}
	return out, nil
}
