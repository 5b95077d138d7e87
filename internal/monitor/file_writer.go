package monitor

import (
	"errors"
	"os"

	jsoniter "github.com/json-iterator/go"

	"drivelink/internal/telemetry"
)

// FileWriter writes verdicts, transmission stats and raw snapshots to JSONL files.
type FileWriter struct {
	verdictFile *os.File
	statsFile   *os.File
	snapFile    *os.File
	verdictEnc  *jsoniter.Encoder
	statsEnc    *jsoniter.Encoder
	snapshotEnc *jsoniter.Encoder
}

// NewFileWriter creates a FileWriter. statsPath and snapshotPath may be
// empty to skip those logs.
func NewFileWriter(verdictPath, statsPath, snapshotPath string) (*FileWriter, error) {
	vf, err := os.Create(verdictPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{verdictFile: vf, verdictEnc: json.NewEncoder(vf)}
	if statsPath != "" {
		sf, err := os.Create(statsPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.statsFile = sf
		fw.statsEnc = json.NewEncoder(sf)
	}
	if snapshotPath != "" {
		nf, err := os.Create(snapshotPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.snapFile = nf
		fw.snapshotEnc = json.NewEncoder(nf)
	}
	return fw, nil
}

// WriteVerdict logs a single verdict row.
func (f *FileWriter) WriteVerdict(row VerdictRow) error {
	return f.verdictEnc.Encode(row)
}

// WriteVerdicts logs multiple verdict rows.
func (f *FileWriter) WriteVerdicts(rows []VerdictRow) error {
	for _, r := range rows {
		if err := f.WriteVerdict(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats logs a stats row, if enabled.
func (f *FileWriter) WriteStats(row StatsRow) error {
	if f.statsEnc == nil {
		return nil
	}
	return f.statsEnc.Encode(row)
}

// RecordSnapshot appends a raw snapshot for replay, if enabled.
func (f *FileWriter) RecordSnapshot(s *telemetry.Snapshot) error {
	if f.snapshotEnc == nil || s == nil {
		return nil
	}
	return f.snapshotEnc.Encode(s)
}

// Close closes all open files.
func (f *FileWriter) Close() error {
	var errs []error
	for _, file := range []*os.File{f.verdictFile, f.statsFile, f.snapFile} {
		if file != nil {
			errs = append(errs, file.Close())
		}
	}
	return errors.Join(errs...)
}
