package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode selects when alerts are coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// ResolveColors decides whether output to w should be coloured.
func ResolveColors(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return IsTerminal(w)
	}
}

// severityStyles maps severities to a colour and a leading symbol.
var severityStyles = map[Severity]struct {
	attrs  []color.Attribute
	symbol string
}{
	SeverityError:   {attrs: []color.Attribute{color.FgRed, color.Bold}, symbol: "✗"},
	SeverityWarning: {attrs: []color.Attribute{color.FgYellow}, symbol: "⚠"},
	SeveritySuccess: {attrs: []color.Attribute{color.FgGreen}, symbol: "✓"},
	SeverityInfo:    {attrs: []color.Attribute{color.FgCyan}, symbol: "•"},
}

// TerminalRenderer mirrors Document changes to a terminal stream.
// Alerts are printed as they appear; the spinner is drawn only on interactive terminals.
type TerminalRenderer struct {
	mu          sync.Mutex
	w           io.Writer
	colors      bool
	interactive bool
	spinning    bool
}

// NewTerminalRenderer creates a renderer writing to w.
func NewTerminalRenderer(w io.Writer, mode ColorMode) *TerminalRenderer {
	return &TerminalRenderer{
		w:           w,
		colors:      ResolveColors(mode, w),
		interactive: IsTerminal(w),
	}
}

// Attach starts mirroring doc.
func (r *TerminalRenderer) Attach(doc *Document) {
	doc.Observe(r.render)
}

func (r *TerminalRenderer) render(kind ChangeKind, n *Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case n.ID == SpinnerID && r.interactive:
		if kind == NodeInserted && !r.spinning {
			_, _ = fmt.Fprint(r.w, "⠋ loading…")
			r.spinning = true
		} else if kind == NodeRemoved && r.spinning {
			r.clearLine()
			r.spinning = false
		}
	case n.HasClass("alert") && kind == NodeInserted:
		if r.spinning {
			r.clearLine()
		}
		r.writeAlert(n)
		if r.spinning {
			_, _ = fmt.Fprint(r.w, "⠋ loading…")
		}
	}
}

func (r *TerminalRenderer) writeAlert(n *Node) {
	style, ok := severityStyles[alertSeverity(n)]
	if !ok {
		style = severityStyles[SeverityInfo]
	}

	c := color.New(style.attrs...)
	if r.colors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	_, _ = c.Fprintf(r.w, "%s %s\n", style.symbol, n.Text)
}

func (r *TerminalRenderer) clearLine() {
	_, _ = fmt.Fprint(r.w, "\r\033[K")
}

// alertSeverity extracts the severity from an "alert alert-<severity>" class list.
func alertSeverity(n *Node) Severity {
	for _, class := range strings.Fields(n.Class) {
		if sev, ok := strings.CutPrefix(class, "alert-"); ok {
			return Severity(sev)
		}
	}
	return SeverityInfo
}
