package printers

import (
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/logbook/pkg/app"
)

// Report prints completed entries grouped by day.
func (pp *PrettyPrint) Report(result app.ReportResult, label string) {
	w := pp.out()
	_, _ = fmt.Fprintf(w, "Report · last %s (%s → %s)\n", label, result.Since, result.Until)

	if result.Total == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, "  No completed entries found in this window.")
		pp.NewLine()
		return
	}

	for _, section := range result.Sections {
		pp.NewLine()
		pp.TitleWithCount(section.Date.Format(LayoutLong), len(section.Entries))
		for _, e := range section.Entries {
			pp.entry(e, false)
		}
	}
	pp.NewLine()
}
