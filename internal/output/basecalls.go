package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/inodb/sanger-qc/internal/basecall"
)

// BaseCallWriter writes per-base call annotations for all samples into one
// combined CSV, sample_id first.
type BaseCallWriter struct {
	w       *csv.Writer
	columns []string
}

// NewBaseCallWriter creates a combined base-call annotation writer.
func NewBaseCallWriter(w io.Writer) *BaseCallWriter {
	return &BaseCallWriter{
		w: csv.NewWriter(w),
		columns: []string{
			"sample_id",
			"position",
			"called_base",
			"primary_base",
			"secondary_base",
			"primary_intensity",
			"secondary_intensity",
			"spr",
			"snr",
			"quality",
			"call_mode",
			"allele_fraction",
			"flags",
		},
	}
}

// WriteHeader writes the column header.
func (bw *BaseCallWriter) WriteHeader() error {
	return bw.w.Write(bw.columns)
}

// WriteSample writes every call of one sample.
func (bw *BaseCallWriter) WriteSample(sampleID string, calls []basecall.BaseCall) error {
	for _, ann := range basecall.Flatten(calls) {
		row := []string{
			sampleID,
			strconv.Itoa(ann.Position),
			ann.CalledBase,
			ann.PrimaryBase,
			ann.SecondaryBase,
			formatFloat(ann.PrimaryIntensity),
			formatFloat(ann.SecondaryIntensity),
			formatFloat(ann.SPR),
			formatFloat(ann.SNR),
			strconv.Itoa(ann.Quality),
			ann.Mode,
			formatFloat(ann.AlleleFraction),
			ann.Flags,
		}
		if err := bw.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered rows.
func (bw *BaseCallWriter) Flush() error {
	bw.w.Flush()
	return bw.w.Error()
}
