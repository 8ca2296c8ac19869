package main

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/alfredjeanlab/appdeck/internal/ui"
	"github.com/spf13/cobra"
)

// helpRule styles every match of re in cobra's plain help text. group is
// the submatch that gets styled; the rest of the match is kept as is.
type helpRule struct {
	re     *regexp.Regexp
	group  int
	render func(string) string
}

var helpRules = []helpRule{
	// Group and section headers such as "Catalog:" or "Flags:".
	{regexp.MustCompile(`(?m)^([A-Z][^\n]*:)[ \t]*$`), 1, ui.RenderAccent},
	// Command names in the command listings.
	{regexp.MustCompile(`(?m)^  (\S+)  `), 1, ui.RenderCommand},
	// Flag value types, e.g. "--depth string".
	{regexp.MustCompile(`--?\S+\s+(string|int|duration|stringSlice)\b`), 1, ui.RenderMuted},
	// Defaults, e.g. (default "http://localhost:8080").
	{regexp.MustCompile(`(\(default "[^"]*"\))`), 1, ui.RenderMuted},
}

// colorizedHelpFunc returns a help function that renders cobra's usage text
// and styles it when the terminal supports color.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}

		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelpOutput(buf.String()))
	}
}

func colorizeHelpOutput(s string) string {
	for _, rule := range helpRules {
		s = rule.re.ReplaceAllStringFunc(s, func(match string) string {
			loc := rule.re.FindStringSubmatchIndex(match)
			start, end := loc[2*rule.group], loc[2*rule.group+1]
			if start < 0 {
				return match
			}
			return match[:start] + rule.render(match[start:end]) + match[end:]
		})
	}
	return s
}
