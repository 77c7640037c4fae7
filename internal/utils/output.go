package utils

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NewTable returns a table writer rendering to w. Headers are printed as
// given, since they often carry the user's own column names.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	return t
}

// ErrWriter forwards writes to W until one fails and keeps that first error
type ErrWriter struct {
	W   io.Writer
	Err error
}

// NewErrWriter wraps w
func NewErrWriter(w io.Writer) *ErrWriter {
	return &ErrWriter{W: w}
}

func (e *ErrWriter) Write(p []byte) (int, error) {
	if e.Err != nil {
		return 0, e.Err
	}
	n, err := e.W.Write(p)
	if err != nil {
		e.Err = err
	}
	return n, err
}
