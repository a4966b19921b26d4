package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"tableflip.dev/logbook/pkg/entry"
)

// Tags fetches the tag catalog.
func (c *Client) Tags(ctx context.Context) ([]entry.Tag, error) {
	var out []entry.Tag
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTag adds a tag to the catalog. An empty color lets the server pick.
func (c *Client) CreateTag(ctx context.Context, name, color string) (entry.Tag, error) {
	body := struct {
		Name  string `json:"name"`
		Color string `json:"color,omitempty"`
	}{name, color}
	var out entry.Tag
	if err := c.do(ctx, http.MethodPost, "/api/tags", nil, body, &out); err != nil {
		return entry.Tag{}, err
	}
	return out, nil
}

// DeleteTag removes tag id.
func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tags/%d", id), nil, nil, nil)
}
