package basecall

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/sanger-qc/internal/trace"
)

// ErrLengthMismatch is returned when sequence and quality lengths differ.
var ErrLengthMismatch = errors.New("sequence and quality length mismatch")

// Caller classifies read positions using an ordered rule table over peak
// intensity measurements.
type Caller struct {
	cfg    Config
	logger *zap.Logger
}

// NewCaller creates a caller with the given thresholds.
func NewCaller(cfg Config) *Caller {
	return &Caller{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (c *Caller) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Config returns the thresholds the caller was built with.
func (c *Caller) Config() Config {
	return c.cfg
}

// ClassifyRead calls every position of a read. When the bundle carries no
// usable trace data, the quality-only fallback path is used and each call is
// flagged no_trace_data; missing traces are an expected condition, not an
// error. The sequence and quality vector must have equal length.
func (c *Caller) ClassifyRead(bundle *trace.Bundle, seq string, quals []int) ([]BaseCall, error) {
	if len(seq) != len(quals) {
		return nil, fmt.Errorf("%w: sequence %d, qualities %d", ErrLengthMismatch, len(seq), len(quals))
	}

	if !bundle.OK() {
		c.logger.Debug("no trace data, using fallback calling", zap.Int("length", len(seq)))
		return c.fallback(seq, quals), nil
	}

	calls := make([]BaseCall, 0, len(seq))
	for pos := range seq {
		calls = append(calls, c.callPosition(bundle, pos, quals[pos]))
	}
	return calls, nil
}

// callPosition classifies one position from its trace measurements.
func (c *Caller) callPosition(bundle *trace.Bundle, pos, quality int) BaseCall {
	intensities := bundle.IntensitiesAt(pos, c.cfg.PeakWindow)
	primary, secondary, spr := trace.TopTwo(intensities)
	snr := bundle.SNRAt(pos, primary.Value)

	s := signal{
		b1:      primary.Base,
		b2:      secondary.Base,
		h1:      primary.Value,
		h2:      secondary.Value,
		spr:     spr,
		snr:     snr,
		quality: quality,
	}
	out, alleleFrac := evaluate(c.cfg, s)

	return BaseCall{
		Position:           pos,
		CalledBase:         out.called,
		PrimaryBase:        primary.Base,
		SecondaryBase:      secondary.Base,
		PrimaryIntensity:   primary.Value,
		SecondaryIntensity: secondary.Value,
		SPR:                spr,
		SNR:                snr,
		Quality:            quality,
		Mode:               out.mode,
		AlleleFraction:     alleleFrac,
		Flags:              out.flags,
	}
}

// fallback performs quality-only calling when no trace data is available.
// The allele fraction defaults to 1.0 since no mixture signal exists.
func (c *Caller) fallback(seq string, quals []int) []BaseCall {
	calls := make([]BaseCall, 0, len(seq))

	for pos := range seq {
		base := seq[pos]
		quality := quals[pos]

		var (
			called byte
			mode   Mode
			flags  []string
		)
		switch {
		case quality < c.cfg.QMinNoise:
			called = 'N'
			mode = ModeNoCall
			flags = []string{FlagLowQuality, FlagNoTraceData}
		case quality >= c.cfg.QConfident:
			called = base
			mode = ModeSingle
			flags = []string{FlagNoTraceData}
		default:
			called = base
			mode = ModeSingle
			flags = []string{FlagModerateQuality, FlagNoTraceData}
		}

		calls = append(calls, BaseCall{
			Position:       pos,
			CalledBase:     called,
			PrimaryBase:    base,
			SecondaryBase:  'N',
			Quality:        quality,
			Mode:           mode,
			AlleleFraction: 1.0,
			Flags:          flags,
		})
	}

	return calls
}
