package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/pushdown"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// PrintBanner writes the pushdown ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                 _         _                    ", "#818cf8"},
		{"  _ __ _  _ _ __| |_    __| |_____ __ ___ _     ", "#a78bfa"},
		{" | '_ \\ || (_-< ' \\  / _` / _ \\ V  V / ' \\    ", "#c084fc"},
		{" | .__/\\_,_/__/_||_| \\__,_\\___/\\_/\\_/|_||_|   ", "#f472b6"},
		{" |_|                                             ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// VerdictRenderer colours verdict lines green or red. With color false it
// returns the plain verdict.
func VerdictRenderer(color bool) pushdown.ContentRenderer {
	p := termenv.Ascii
	if color {
		p = termenv.ColorProfile()
	}
	return func(res pushdown.Result) (string, error) {
		line := pushdown.FormatVerdict(res)
		if p == termenv.Ascii {
			return line, nil
		}
		c := p.Color("#ef4444")
		if res.Accepted {
			c = p.Color("#22c55e")
		}
		return termenv.String(line).Foreground(c).String(), nil
	}
}
