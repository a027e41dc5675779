// Package pipeline runs the per-read processing chain: optional ambiguous
// base calling, trimming, and QC metrics.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/sanger-qc/internal/basecall"
	"github.com/inodb/sanger-qc/internal/qc"
	"github.com/inodb/sanger-qc/internal/seqio"
	"github.com/inodb/sanger-qc/internal/trim"
)

// Options configures per-read processing.
type Options struct {
	Method     trim.Method
	QThreshold int
	MinLength  int
	// AmbiguousCalling enables peak-intensity reclassification for reads
	// that come from chromatogram files.
	AmbiguousCalling bool
	Calling          basecall.Config
}

// Result is the outcome of processing one read. Values are never mutated
// after Process returns.
type Result struct {
	Read   *seqio.Read
	ReadID string
	// Calls is nil unless ambiguous calling ran for this read.
	Calls []basecall.BaseCall
	// Seq is the sequence the trim and metrics steps saw: the recalled
	// sequence when calling ran, the original otherwise.
	Seq          string
	TrimmedSeq   string
	TrimmedQuals []int
	TrimStart    int
	TrimEnd      int
	Metrics      qc.Metrics
}

// Processor applies the processing chain to reads. It is safe for
// concurrent use: all state is read-only after construction.
type Processor struct {
	opts   Options
	caller *basecall.Caller
	logger *zap.Logger
}

// NewProcessor creates a processor for the given options.
func NewProcessor(opts Options) *Processor {
	return &Processor{
		opts:   opts,
		caller: basecall.NewCaller(opts.Calling),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for per-read debug messages.
func (p *Processor) SetLogger(l *zap.Logger) {
	p.logger = l
	p.caller.SetLogger(l)
}

// Process runs classification (when enabled), trimming, and metrics for a
// single read.
func (p *Processor) Process(r *seqio.Read) (*Result, error) {
	seq := r.Seq

	var calls []basecall.BaseCall
	// Only chromatogram-backed reads are reclassified; PHD records keep
	// the sequencer's calls.
	if p.opts.AmbiguousCalling && r.Format == seqio.FormatAB1 {
		var err error
		calls, err = p.caller.ClassifyRead(r.Trace, r.Seq, r.Quals)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", r.SampleID, err)
		}
		seq = basecall.Sequence(calls)
		p.logger.Debug("ambiguous calling completed",
			zap.String("sample", r.SampleID),
			zap.Int("bases", len(calls)))
	}

	trimmedSeq, trimmedQuals, start, end, err := trim.Apply(seq, r.Quals, p.opts.Method, p.opts.QThreshold)
	if err != nil {
		return nil, fmt.Errorf("trim %s: %w", r.SampleID, err)
	}

	metrics := qc.ComputeMetrics(
		r.SampleID, r.SourceFile, r.Format,
		seq, r.Quals, start, end,
		p.opts.QThreshold, p.opts.MinLength,
	)

	return &Result{
		Read:         r,
		ReadID:       seqio.MakeReadID(r.SampleID, start, end),
		Calls:        calls,
		Seq:          seq,
		TrimmedSeq:   trimmedSeq,
		TrimmedQuals: trimmedQuals,
		TrimStart:    start,
		TrimEnd:      end,
		Metrics:      metrics,
	}, nil
}
