package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(0),
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// TraceMarkdown renders every configuration of a run as a markdown table,
// one row per step, followed by the verdict.
func TraceMarkdown(res pushdown.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Trace of `%s`\n\n", displayInput(res.Input))
	sb.WriteString("| # | state | remaining | stack | move |\n")
	sb.WriteString("|---|-------|-----------|-------|------|\n")

	for i, cfg := range res.Configurations {
		move := "start"
		if i > 0 {
			move = domain.Diff(res.Configurations[i-1], cfg).String()
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n",
			i,
			cell(string(cfg.State)),
			cell(displayInput(cfg.Remaining)),
			cell(displayStack(cfg.Stack)),
			cell(move),
		)
	}

	sb.WriteString("\n")
	if res.Accepted {
		sb.WriteString("**accepted**\n")
	} else {
		fmt.Fprintf(&sb, "**rejected**: %s\n", cell(res.Reason()))
	}
	return sb.String()
}

// TracePlain is TraceMarkdown for non-terminal output: one configuration
// per line, then the verdict.
func TracePlain(res pushdown.Result) string {
	var sb strings.Builder
	for i, cfg := range res.Configurations {
		fmt.Fprintf(&sb, "%3d  %s\n", i, cfg)
	}
	sb.WriteString(pushdown.FormatVerdict(res))
	sb.WriteString("\n")
	return sb.String()
}

func displayInput(s string) string {
	if s == "" {
		return "ε"
	}
	return s
}

func displayStack(s domain.Stack) string {
	if s.Len() == 0 {
		return "∅"
	}
	return s.String()
}

// cell escapes characters that would end a table cell.
func cell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
