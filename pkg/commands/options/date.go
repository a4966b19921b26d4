package options

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/timeutil"
)

const (
	layoutISOShort = "1/2"
)

// OnOptions selects a day.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a day, example: --on="2024-02-28", --on="2/28" or --on=yesterday.`)
}

// GetOn resolves the flag against today. Empty means today. A short month/day
// that has already passed this year stays in this year.
func (o *OnOptions) GetOn(today timeutil.Date) (timeutil.Date, error) {
	return ParseDay(o.OnString, today)
}

// ParseDay accepts YYYY-MM-DD, M/D, today, yesterday or tomorrow.
func ParseDay(raw string, today timeutil.Date) (timeutil.Date, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "tomorrow":
		return today.AddDays(1), nil
	}
	d, err := timeutil.ParseDate(raw)
	if err == nil {
		return d, nil
	}
	t, serr := time.Parse(layoutISOShort, strings.TrimSpace(raw))
	if serr != nil {
		return timeutil.Date{}, err
	}
	return timeutil.Date{Year: today.Year, Month: t.Month(), Day: t.Day()}, nil
}
