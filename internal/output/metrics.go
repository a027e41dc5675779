// Package output provides per-read metrics, summary, base-call, and
// trimmed-sequence writers.
package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/inodb/sanger-qc/internal/qc"
)

// MetricsWriter writes per-read QC metrics as CSV.
type MetricsWriter struct {
	w       *csv.Writer
	columns []string
}

// NewMetricsWriter creates a CSV metrics writer.
func NewMetricsWriter(w io.Writer) *MetricsWriter {
	return &MetricsWriter{
		w: csv.NewWriter(w),
		columns: []string{
			"sample_id",
			"source_file",
			"format",
			"raw_length",
			"mean_q",
			"median_q",
			"pct_q20",
			"pct_q30",
			"gc_percent",
			"n_count",
			"expected_errors",
			"hq_longest_stretch_len",
			"trim_start",
			"trim_end",
			"trimmed_length",
			"passed_minlen",
		},
	}
}

// WriteHeader writes the column header.
func (mw *MetricsWriter) WriteHeader() error {
	return mw.w.Write(mw.columns)
}

// Write writes the metrics row for a single read.
func (mw *MetricsWriter) Write(m qc.Metrics) error {
	passed := "no"
	if m.PassedMinLength {
		passed = "yes"
	}

	return mw.w.Write([]string{
		m.SampleID,
		m.SourceFile,
		m.Format,
		strconv.Itoa(m.RawLength),
		formatFloat(m.MeanQ),
		formatFloat(m.MedianQ),
		formatFloat(m.PctQ20),
		formatFloat(m.PctQ30),
		formatFloat(m.GCPercent),
		strconv.Itoa(m.NCount),
		formatFloat(m.ExpectedErrors),
		strconv.Itoa(m.HQLongestStretch),
		strconv.Itoa(m.TrimStart),
		strconv.Itoa(m.TrimEnd),
		strconv.Itoa(m.TrimmedLength),
		passed,
	})
}

// Flush flushes buffered rows.
func (mw *MetricsWriter) Flush() error {
	mw.w.Flush()
	return mw.w.Error()
}

// WriteSummary writes the batch summary as indented JSON.
func WriteSummary(w io.Writer, s qc.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
