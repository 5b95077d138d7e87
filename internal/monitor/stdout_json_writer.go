package monitor

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONStdoutWriter prints verdict and stats rows as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteVerdict outputs a verdict row in JSON format.
func (w *JSONStdoutWriter) WriteVerdict(row VerdictRow) error {
	return w.line(row)
}

// WriteVerdicts outputs multiple verdict rows.
func (w *JSONStdoutWriter) WriteVerdicts(rows []VerdictRow) error {
	for _, r := range rows {
		if err := w.line(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats outputs a transmission stats row in JSON format.
func (w *JSONStdoutWriter) WriteStats(row StatsRow) error {
	return w.line(row)
}

func (w *JSONStdoutWriter) line(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
