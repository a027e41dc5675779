package basecall

// Config holds the calling thresholds. It is a plain value passed explicitly
// into every call; there is no process-wide default state.
type Config struct {
	// QMinNoise is the minimum quality for any non-N call.
	QMinNoise int
	// SNRMin is the minimum signal-to-noise ratio for any non-N call.
	SNRMin float64
	// SPRNoiseMax is the highest SPR at which the secondary peak is
	// still treated as noise.
	SPRNoiseMax float64
	// SPRHetLow and SPRHetHigh bound the balanced heterozygous range.
	SPRHetLow  float64
	SPRHetHigh float64
	// SPRUnbalanced is the SPR above which the primary peak is unclear.
	SPRUnbalanced float64
	// QConfident is the quality required for a confident single-base call.
	QConfident int
	// QAmbig is the minimum quality for an ambiguous (IUPAC) call.
	QAmbig int
	// ClonalContext is true when the sample is expected to carry a single
	// true genotype (clonal/plasmid), false for possible mixtures.
	ClonalContext bool
	// PeakWindow is the half-width of the peak integration window, in
	// trace samples.
	PeakWindow int
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		QMinNoise:     12,
		SNRMin:        4.0,
		SPRNoiseMax:   0.20,
		SPRHetLow:     0.33,
		SPRHetHigh:    0.67,
		SPRUnbalanced: 0.85,
		QConfident:    30,
		QAmbig:        20,
		ClonalContext: true,
		PeakWindow:    3,
	}
}
