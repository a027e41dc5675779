// Package trace models chromatogram trace data and the peak intensity
// measurements derived from it.
package trace

import "sort"

// Channel order used throughout: A, C, G, T.
var Bases = [4]byte{'A', 'C', 'G', 'T'}

// SNR baseline sampling offsets relative to the peak location.
const (
	noiseFar  = 20
	noiseNear = 5
)

// Bundle holds raw per-channel intensity traces and the peak-location map
// from base index to trace sample index. The zero value represents "no
// trace data"; use OK to distinguish it from a populated bundle.
type Bundle struct {
	A, C, G, T []float64
	// PeakLocations maps base position -> sample index in the traces.
	PeakLocations []int
}

// OK reports whether the bundle carries usable trace data for all four
// channels.
func (b *Bundle) OK() bool {
	return b != nil && len(b.A) > 0 && len(b.C) > 0 && len(b.G) > 0 && len(b.T) > 0
}

// channel returns the trace for a nucleotide channel.
func (b *Bundle) channel(base byte) []float64 {
	switch base {
	case 'A':
		return b.A
	case 'C':
		return b.C
	case 'G':
		return b.G
	case 'T':
		return b.T
	}
	return nil
}

// Intensity holds the integrated peak intensity of one channel at a position.
type Intensity struct {
	Base  byte
	Value float64
}

// IntensitiesAt integrates each channel's raw samples over
// [peak-window, peak+window], clamped to the trace bounds, for the base at
// the given position. When peak-location data is missing or the position is
// out of range, all four intensities are zero.
func (b *Bundle) IntensitiesAt(position, window int) [4]Intensity {
	var out [4]Intensity
	for i, base := range Bases {
		out[i].Base = base
	}

	if position < 0 || position >= len(b.PeakLocations) {
		return out
	}
	tracePos := b.PeakLocations[position]

	for i, base := range Bases {
		ch := b.channel(base)
		start := clamp(tracePos-window, 0, len(ch))
		end := clamp(tracePos+window+1, 0, len(ch))
		var sum float64
		for _, v := range ch[start:end] {
			sum += v
		}
		out[i].Value = sum
	}

	return out
}

// TopTwo sorts the four channel intensities descending and returns the
// primary and secondary channels along with the secondary-to-primary ratio.
// The SPR is 0 when the primary intensity is not positive.
func TopTwo(intensities [4]Intensity) (primary, secondary Intensity, spr float64) {
	sorted := intensities
	sort.SliceStable(sorted[:], func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	primary, secondary = sorted[0], sorted[1]
	if primary.Value > 0 {
		spr = secondary.Value / primary.Value
	}
	return primary, secondary, spr
}

// SNRAt estimates the signal-to-noise ratio for the given primary signal at
// a base position. The noise floor is the median of baseline samples pooled
// across all four channels from windows before ([loc-20, loc-5)) and after
// ([loc+5, loc+20)) the peak, clamped to the trace bounds. Returns 0 when
// peak-location data is missing or the noise floor is not positive.
func (b *Bundle) SNRAt(position int, signal float64) float64 {
	if position < 0 || position >= len(b.PeakLocations) {
		return 0
	}
	tracePos := b.PeakLocations[position]

	var samples []float64
	for _, base := range Bases {
		ch := b.channel(base)

		beforeStart := clamp(tracePos-noiseFar, 0, len(ch))
		beforeEnd := clamp(tracePos-noiseNear, 0, len(ch))
		afterStart := clamp(tracePos+noiseNear, 0, len(ch))
		afterEnd := clamp(tracePos+noiseFar, 0, len(ch))

		if beforeEnd > beforeStart {
			samples = append(samples, ch[beforeStart:beforeEnd]...)
		}
		if afterEnd > afterStart {
			samples = append(samples, ch[afterStart:afterEnd]...)
		}
	}

	if len(samples) == 0 {
		return 0
	}

	noise := median(samples)
	if noise <= 0 {
		return 0
	}
	return signal / noise
}

// clamp restricts v to [lo, hi]. Peak locations come from the PLOC tag and
// are not guaranteed to fall inside the DATA traces, so every window bound
// must be clamped on both sides before slicing.
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// median returns the median of the samples. The slice is sorted in place.
func median(samples []float64) float64 {
	sort.Float64s(samples)
	n := len(samples)
	if n%2 == 1 {
		return samples[n/2]
	}
	return (samples[n/2-1] + samples[n/2]) / 2
}
