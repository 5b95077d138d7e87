package monitor

// MultiWriter fans verdict and stats rows out to multiple writers.
type MultiWriter struct {
	verdictWriters []VerdictWriter
	statsWriters   []StatsWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(vws []VerdictWriter, sws []StatsWriter) *MultiWriter {
	return &MultiWriter{verdictWriters: vws, statsWriters: sws}
}

// WriteVerdict sends a verdict row to all writers.
func (mw *MultiWriter) WriteVerdict(row VerdictRow) error {
	for _, w := range mw.verdictWriters {
		if err := w.WriteVerdict(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteVerdicts sends multiple verdict rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteVerdicts(rows []VerdictRow) error {
	for _, w := range mw.verdictWriters {
		if bw, ok := w.(batchVerdictWriter); ok {
			if err := bw.WriteVerdicts(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteVerdict(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteStats sends a stats row to all stats writers.
func (mw *MultiWriter) WriteStats(row StatsRow) error {
	for _, w := range mw.statsWriters {
		if err := w.WriteStats(row); err != nil {
			return err
		}
	}
	return nil
}
