package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/timeutil"
)

// EntriesByDate fetches the entries of one day.
func (c *Client) EntriesByDate(ctx context.Context, d timeutil.Date) ([]entry.Entry, error) {
	var out []entry.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries/date/"+d.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EntriesByRange fetches the entries dated within [start, end].
func (c *Client) EntriesByRange(ctx context.Context, start, end timeutil.Date) ([]entry.Entry, error) {
	q := url.Values{"start": {start.String()}, "end": {end.String()}}
	var out []entry.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries/range", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEntry posts req and returns the stored entry.
func (c *Client) CreateEntry(ctx context.Context, req entry.CreateRequest) (entry.Entry, error) {
	var out entry.Entry
	if err := c.do(ctx, http.MethodPost, "/api/entries", nil, req, &out); err != nil {
		return entry.Entry{}, err
	}
	return out, nil
}

// UpdateEntry sends a partial update for entry id.
func (c *Client) UpdateEntry(ctx context.Context, id int64, patch entry.UpdateRequest) (entry.Entry, error) {
	var out entry.Entry
	if err := c.do(ctx, http.MethodPut, entryPath(id), nil, patch, &out); err != nil {
		return entry.Entry{}, err
	}
	return out, nil
}

// DeleteEntry deletes entry id.
func (c *Client) DeleteEntry(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, entryPath(id), nil, nil, nil)
}

// SearchEntries runs a server-side full text search.
func (c *Client) SearchEntries(ctx context.Context, query string) ([]entry.Entry, error) {
	var out []entry.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries/search", url.Values{"q": {query}}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func entryPath(id int64) string {
	return fmt.Sprintf("/api/entries/%s", strconv.FormatInt(id, 10))
}
