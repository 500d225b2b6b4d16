package importer

import (
	"fmt"
	"io"
)

// statusWriter emits operator progress lines of the form
// "current / total (percent%)", overwriting the previous line.
type statusWriter struct {
	w io.Writer
}

func (s statusWriter) step(current, total int) {
	if total <= 0 {
		return
	}
	percent := float64(current) / float64(total) * 100
	fmt.Fprintf(s.w, "\r%d / %d (%.1f%%)", current, total, percent)
}

// done terminates the in-place progress line.
func (s statusWriter) done() {
	fmt.Fprintln(s.w)
}
