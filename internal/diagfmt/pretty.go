package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"c2sema/internal/diag"
	"c2sema/internal/source"
)

const tabWidth = 4

type palette struct {
	fatal, err, warn, info *color.Color
	code, path, gutter     *color.Color
	caret, note            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		fatal:  color.New(color.FgMagenta, color.Bold),
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		code:   color.New(color.Faint),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan, color.Bold),
	}
	for _, c := range []*color.Color{p.fatal, p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevFatal:
		return p.fatal
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		start, _ := position(fs, d.Primary)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprintf("%s:%d:%d", displayPath(fs, d.Primary.File, opts.PathMode), start.Line, start.Col),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		writeSnippet(w, fs, d.Primary, opts, p)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				ns, _ := position(fs, n.Span)
				fmt.Fprintf(w, "  %s %s: %s\n",
					p.note.Sprint("note:"),
					p.path.Sprintf("%s:%d:%d", displayPath(fs, n.Span.File, opts.PathMode), ns.Line, ns.Col),
					n.Msg,
				)
				writeSnippet(w, fs, n.Span, opts, p)
			}
		}
	}
}

// writeSnippet prints the line holding span (plus opts.Context lines around
// it) and underlines the span. Nothing is printed when the source text is not
// available.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts, p palette) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	ctx := uint32(max(opts.Context, 0)) //nolint:gosec // неотрицательно после max
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if text == "" && ln != start.Line {
			continue
		}
		shown := clip(expandTabs(text), opts.Width)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), shown)
		if ln != start.Line {
			continue
		}
		pad, width := caretExtent(text, start, end)
		underline := "^" + strings.Repeat("~", max(width-1, 0))
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), p.caret.Sprint(underline))
	}
}

// caretExtent returns the display offset of the span start within line and
// the display width of the underlined part (at least one cell). Multi-line
// spans are underlined to the end of the first line.
func caretExtent(line string, start, end source.LineCol) (pad, width int) {
	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(int(end.Col)-1, len(line))
	}
	to = max(to, from)
	pad = displayWidth(line[:from])
	width = max(displayWidth(line[from:to]), 1)
	return pad, width
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "…")
}
