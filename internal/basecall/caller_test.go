package basecall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/sanger-qc/internal/trace"
)

// testBundle builds a bundle with one clean peak per base position. Each
// peak is a narrow spike on the channel of the given base, over a small
// uniform baseline so the SNR comes out high.
func testBundle(seq string, peakHeights map[int]map[byte]float64) *trace.Bundle {
	const spacing = 50
	n := len(seq)*spacing + spacing

	b := &trace.Bundle{
		A: make([]float64, n),
		C: make([]float64, n),
		G: make([]float64, n),
		T: make([]float64, n),
	}
	channel := func(base byte) []float64 {
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

	// Uniform baseline of 1 in every channel.
	for _, ch := range [][]float64{b.A, b.C, b.G, b.T} {
		for i := range ch {
			ch[i] = 1
		}
	}

	for pos := range seq {
		loc := spacing/2 + pos*spacing
		b.PeakLocations = append(b.PeakLocations, loc)
		for base, height := range peakHeights[pos] {
			channel(base)[loc] = height
		}
	}

	return b
}

func TestClassifyReadSinglePeaks(t *testing.T) {
	seq := "AG"
	bundle := testBundle(seq, map[int]map[byte]float64{
		0: {'A': 500},
		1: {'G': 500},
	})

	caller := NewCaller(DefaultConfig())
	calls, err := caller.ClassifyRead(bundle, seq, []int{40, 40})
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, byte('A'), calls[0].CalledBase)
	assert.Equal(t, ModeSingle, calls[0].Mode)
	assert.Empty(t, calls[0].Flags)
	assert.Equal(t, byte('G'), calls[1].CalledBase)
	assert.Equal(t, "AG", Sequence(calls))
}

func TestClassifyReadHeterozygousPeak(t *testing.T) {
	// A and G peaks of comparable height at position 0: balanced mixture.
	seq := "A"
	bundle := testBundle(seq, map[int]map[byte]float64{
		0: {'A': 500, 'G': 250},
	})

	caller := NewCaller(DefaultConfig())
	calls, err := caller.ClassifyRead(bundle, seq, []int{25})
	require.NoError(t, err)
	require.Len(t, calls, 1)

	c := calls[0]
	assert.Equal(t, byte('R'), c.CalledBase)
	assert.Equal(t, ModeAmbiguous, c.Mode)
	assert.True(t, c.HasFlag(FlagHeterozygous))
	assert.Equal(t, byte('A'), c.PrimaryBase)
	assert.Equal(t, byte('G'), c.SecondaryBase)
	assert.Greater(t, c.SNR, 4.0)
	assert.GreaterOrEqual(t, c.SPR, 0.33)
	assert.LessOrEqual(t, c.SPR, 0.67)
	assert.InDelta(t, c.PrimaryIntensity/(c.PrimaryIntensity+c.SecondaryIntensity), c.AlleleFraction, 1e-9)
}

func TestClassifyReadPositionPastPeakMap(t *testing.T) {
	// Two bases but only one peak location: the second position has zero
	// intensity and SNR and must resolve through the quality-only rule.
	seq := "AC"
	bundle := testBundle("A", map[int]map[byte]float64{
		0: {'A': 500},
	})

	caller := NewCaller(DefaultConfig())
	calls, err := caller.ClassifyRead(bundle, seq, []int{40, 40})
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, byte('A'), calls[0].CalledBase)
	assert.Equal(t, byte('N'), calls[1].CalledBase)
	assert.Equal(t, ModeNoCall, calls[1].Mode)
	assert.True(t, calls[1].HasFlag(FlagLowQuality))
}

func TestClassifyReadPeakLocationPastTraceEnd(t *testing.T) {
	// A truncated trace can carry peak locations past the last sample.
	// The position must degrade to an N no-call, not abort the read.
	bundle := testBundle("AC", map[int]map[byte]float64{
		0: {'A': 500},
	})
	bundle.PeakLocations[1] = len(bundle.A) + 1000

	caller := NewCaller(DefaultConfig())
	calls, err := caller.ClassifyRead(bundle, "AC", []int{40, 40})
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, byte('A'), calls[0].CalledBase)
	assert.Equal(t, byte('N'), calls[1].CalledBase)
	assert.Equal(t, ModeNoCall, calls[1].Mode)
	assert.Zero(t, calls[1].PrimaryIntensity)
	assert.Zero(t, calls[1].SNR)
}

func TestClassifyReadLengthMismatch(t *testing.T) {
	caller := NewCaller(DefaultConfig())
	_, err := caller.ClassifyRead(nil, "ACGT", []int{30, 30})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFallbackHighQuality(t *testing.T) {
	caller := NewCaller(DefaultConfig())
	calls, err := caller.ClassifyRead(nil, "ACGT", []int{35, 35, 35, 35})
	require.NoError(t, err)
	require.Len(t, calls, 4)

	for i, c := range calls {
		assert.Equal(t, "ACGT"[i], c.CalledBase)
		assert.Equal(t, ModeSingle, c.Mode)
		assert.True(t, c.HasFlag(FlagNoTraceData))
		assert.False(t, c.HasFlag(FlagModerateQuality))
		assert.Equal(t, 1.0, c.AlleleFraction)
	}
}

func TestFallbackLowQuality(t *testing.T) {
	caller := NewCaller(DefaultConfig())
	calls, err := caller.ClassifyRead(nil, "ACGT", []int{10, 10, 10, 10})
	require.NoError(t, err)

	for _, c := range calls {
		assert.Equal(t, byte('N'), c.CalledBase)
		assert.Equal(t, ModeNoCall, c.Mode)
		assert.True(t, c.HasFlag(FlagLowQuality))
		assert.True(t, c.HasFlag(FlagNoTraceData))
	}
	assert.Equal(t, "NNNN", Sequence(calls))
}

func TestFallbackModerateQuality(t *testing.T) {
	caller := NewCaller(DefaultConfig())
	calls, err := caller.ClassifyRead(nil, "ACGT", []int{20, 20, 20, 20})
	require.NoError(t, err)

	for i, c := range calls {
		assert.Equal(t, "ACGT"[i], c.CalledBase)
		assert.Equal(t, ModeSingle, c.Mode)
		assert.True(t, c.HasFlag(FlagModerateQuality))
		assert.True(t, c.HasFlag(FlagNoTraceData))
	}
}

func TestFallbackEmptyBundle(t *testing.T) {
	// A non-nil bundle without channel data is treated the same as nil.
	caller := NewCaller(DefaultConfig())
	calls, err := caller.ClassifyRead(&trace.Bundle{}, "AC", []int{35, 35})
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.True(t, calls[0].HasFlag(FlagNoTraceData))
}

func TestFlatten(t *testing.T) {
	calls := []BaseCall{
		{
			Position: 0, CalledBase: 'A', PrimaryBase: 'A', SecondaryBase: 'G',
			PrimaryIntensity: 100.456, SecondaryIntensity: 10.234,
			SPR: 0.10187, SNR: 10.456, Quality: 35,
			Mode: ModeSingle, AlleleFraction: 0.90765,
		},
		{
			Position: 1, CalledBase: 'R', PrimaryBase: 'A', SecondaryBase: 'G',
			PrimaryIntensity: 100, SecondaryIntensity: 50,
			SPR: 0.5, SNR: 10, Quality: 25,
			Mode: ModeAmbiguous, AlleleFraction: 2.0 / 3.0,
			Flags: []string{FlagHeterozygous},
		},
	}

	anns := Flatten(calls)
	require.Len(t, anns, 2)

	assert.Equal(t, 0, anns[0].Position)
	assert.Equal(t, "A", anns[0].CalledBase)
	assert.Equal(t, 100.46, anns[0].PrimaryIntensity)
	assert.Equal(t, 10.23, anns[0].SecondaryIntensity)
	assert.Equal(t, 0.1019, anns[0].SPR)
	assert.Equal(t, 10.46, anns[0].SNR)
	assert.Equal(t, 0.9077, anns[0].AlleleFraction)
	assert.Equal(t, "single", anns[0].Mode)
	assert.Equal(t, "", anns[0].Flags)

	assert.Equal(t, "R", anns[1].CalledBase)
	assert.Equal(t, "ambiguous", anns[1].Mode)
	assert.Equal(t, 0.6667, anns[1].AlleleFraction)
	assert.Equal(t, "heterozygous", anns[1].Flags)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 12, cfg.QMinNoise)
	assert.Equal(t, 4.0, cfg.SNRMin)
	assert.Equal(t, 0.20, cfg.SPRNoiseMax)
	assert.Equal(t, 0.33, cfg.SPRHetLow)
	assert.Equal(t, 0.67, cfg.SPRHetHigh)
	assert.Equal(t, 0.85, cfg.SPRUnbalanced)
	assert.Equal(t, 30, cfg.QConfident)
	assert.Equal(t, 20, cfg.QAmbig)
	assert.True(t, cfg.ClonalContext)
	assert.Equal(t, 3, cfg.PeakWindow)
}
