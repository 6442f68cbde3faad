package diagfmt

import (
	"fmt"
	"io"

	"c2sema/internal/diag"
	"c2sema/internal/source"
)

// Short prints one line per diagnostic:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// Notes are omitted; the format is meant for editors and grep.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	for _, d := range bag.Items() {
		start, _ := position(fs, d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			displayPath(fs, d.Primary.File, mode), start.Line, start.Col,
			d.Severity, d.Code.ID(), d.Message)
	}
}
