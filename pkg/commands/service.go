package commands

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/backend/httpapi"
	"tableflip.dev/logbook/pkg/cache"
	"tableflip.dev/logbook/pkg/config"
	"tableflip.dev/logbook/pkg/store"
)

var verbose bool

func logger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "logbook: ", log.LstdFlags)
}

// openBackend picks the REST client when a server is configured and the local
// store otherwise.
func openBackend(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	if cfg.Remote() {
		return httpapi.New(ctx, cfg.Server, httpapi.Options{Token: cfg.Token})
	}
	return store.Open(cfg)
}

func openService(ctx context.Context) (*app.Service, *config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := app.New(b, cache.Options{
		Window:    cfg.HeatmapWindow,
		WeekStart: cfg.WeekStart,
		Location:  cfg.Location,
		Log:       logger(),
	})
	return svc, cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(color.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
