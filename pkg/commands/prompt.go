package commands

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/glyph"
)

// promptEntry fills the fields of req that were not given as flags.
func promptEntry(cmd *cobra.Command, req *entry.CreateRequest) error {
	stdin := io.NopCloser(cmd.InOrStdin())
	stdout := nopWriteCloser{cmd.OutOrStdout()}

	if strings.TrimSpace(req.Title) == "" {
		title := promptui.Prompt{
			Label: "Title",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("title is required")
				}
				return nil
			},
			Stdin:  stdin,
			Stdout: stdout,
		}
		result, err := title.Run()
		if err != nil {
			return err
		}
		req.Title = result
	}

	if req.Type == "" {
		glyphs := glyph.DefaultGlyphs()
		templates := &promptui.SelectTemplates{
			Label:    "{{ . }}?",
			Active:   "➜  {{ .Symbol }} {{ .Meaning | cyan }}",
			Inactive: "   {{ .Symbol }} {{ .Meaning | cyan }}",
			Selected: "➜  {{ .Symbol }} {{ .Meaning | red | cyan }}",
		}
		searcher := func(input string, index int) bool {
			name := strings.ToLower(glyphs[index].Meaning)
			return strings.Contains(name, strings.ToLower(strings.TrimSpace(input)))
		}
		kind := promptui.Select{
			HideHelp:  true,
			Label:     "Type",
			Items:     glyphs,
			Templates: templates,
			Size:      len(glyphs),
			Searcher:  searcher,
			Stdin:     stdin,
			Stdout:    stdout,
		}
		i, _, err := kind.Run()
		if err != nil {
			return err
		}
		req.Type = entry.Types()[i]
	}

	if req.Mood == 0 {
		mood := promptui.Prompt{
			Label: "Mood (1-5, blank to skip)",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return nil
				}
				n, err := strconv.Atoi(strings.TrimSpace(input))
				if err != nil || n < 1 || n > 5 {
					return errors.New("mood must be between 1 and 5")
				}
				return nil
			},
			Stdin:  stdin,
			Stdout: stdout,
		}
		result, err := mood.Run()
		if err != nil {
			return err
		}
		if s := strings.TrimSpace(result); s != "" {
			req.Mood, _ = strconv.Atoi(s)
		}
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
