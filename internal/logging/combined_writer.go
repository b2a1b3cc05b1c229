package logging

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes to every writer, continuing past failures.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

// Write returns the bytes written by the last successful writer and every
// writer's error combined.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		n   int
		err error
	)
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		n = written
	}
	return n, err
}
