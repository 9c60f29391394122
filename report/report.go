// Package report renders the plain text reports of the filter stage and the
// complete workflow. Rendering is pure: all numbers come in through the
// arguments, nothing is read from disk.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/woskit/woskit/langfilter"
	"github.com/woskit/woskit/wos"
)

const check = "✓"

// Marker is appended to distribution rows of the target language.
const Marker = " " + check

// Percent formats count as a percentage of total, "%5.1f%%", and reports
// zero for an empty total.
func Percent(count, total int) string {
	if total == 0 {
		return "  0.0%"
	}
	return fmt.Sprintf("%5.1f%%", float64(count)/float64(total)*100)
}

// writer collects lines; a report is small enough to be built in memory.
type writer struct {
	sb    strings.Builder
	width int
}

func (w *writer) line(format string, a ...any) {
	fmt.Fprintf(&w.sb, format, a...)
	w.sb.WriteByte('\n')
}

func (w *writer) blank() { w.sb.WriteByte('\n') }

func (w *writer) rule() { w.line("%s", strings.Repeat("=", w.width)) }

// section writes a heading between two thin rules.
func (w *writer) section(format string, a ...any) {
	thin := strings.Repeat("-", w.width)
	w.line("%s", thin)
	w.line(format, a...)
	w.line("%s", thin)
}

// distribution writes one row per label, most common first, with the share
// of total.
func (w *writer) distribution(c *wos.Counter, total, countWidth int, target string) {
	for _, e := range c.MostCommon() {
		var marker string
		if langfilter.Match(e.Label, target) {
			marker = Marker
		}
		w.line("  %-20s: %*d (%s)%s", e.Label, countWidth, e.Count, Percent(e.Count, total), marker)
	}
}

// String returns the report without the trailing line break.
func (w *writer) String() string {
	return strings.TrimSuffix(w.sb.String(), "\n")
}

// WriteTo writes s followed by a line break, the way reports are echoed to
// the terminal.
func WriteTo(w io.Writer, s string) error {
	_, err := io.WriteString(w, "\n"+s+"\n")
	return err
}
