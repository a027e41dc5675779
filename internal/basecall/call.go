// Package basecall classifies chromatogram positions into confident single
// bases, two-base mixtures (IUPAC codes), or no-calls using peak intensity
// analysis.
package basecall

import (
	"math"
	"strings"
)

// Mode describes how a position was called.
type Mode string

const (
	ModeSingle    Mode = "single"
	ModeAmbiguous Mode = "ambiguous"
	ModeNoCall    Mode = "no-call"
)

// Diagnostic flags attached to calls.
const (
	FlagLowQuality        = "low_quality"
	FlagMinorSecondary    = "minor_secondary"
	FlagHeterozygous      = "heterozygous"
	FlagUnbalancedMixture = "unbalanced_mixture"
	FlagUncertainMixture  = "uncertain_mixture"
	FlagUnclearPrimary    = "unclear_primary"
	FlagNoTraceData       = "no_trace_data"
	FlagModerateQuality   = "moderate_quality"
)

// BaseCall is the classification result for a single position.
type BaseCall struct {
	Position           int
	CalledBase         byte
	PrimaryBase        byte
	SecondaryBase      byte
	PrimaryIntensity   float64
	SecondaryIntensity float64
	SPR                float64
	SNR                float64
	Quality            int
	Mode               Mode
	AlleleFraction     float64
	Flags              []string
}

// HasFlag reports whether the call carries the given diagnostic flag.
func (c *BaseCall) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Sequence concatenates the called symbols, reproducing the possibly
// IUPAC-bearing sequence.
func Sequence(calls []BaseCall) string {
	var sb strings.Builder
	sb.Grow(len(calls))
	for i := range calls {
		sb.WriteByte(calls[i].CalledBase)
	}
	return sb.String()
}

// Annotation is a flat per-position record for reporting. Numeric fields are
// rounded for deterministic output: intensities and SNR to 2 decimal places,
// SPR and allele fraction to 4.
type Annotation struct {
	Position           int     `json:"position"`
	CalledBase         string  `json:"called_base"`
	PrimaryBase        string  `json:"primary_base"`
	SecondaryBase      string  `json:"secondary_base"`
	PrimaryIntensity   float64 `json:"primary_intensity"`
	SecondaryIntensity float64 `json:"secondary_intensity"`
	SPR                float64 `json:"spr"`
	SNR                float64 `json:"snr"`
	Quality            int     `json:"quality"`
	Mode               string  `json:"call_mode"`
	AlleleFraction     float64 `json:"allele_fraction"`
	Flags              string  `json:"flags"`
}

// Flatten converts calls to flat annotation records.
func Flatten(calls []BaseCall) []Annotation {
	anns := make([]Annotation, len(calls))
	for i := range calls {
		c := &calls[i]
		anns[i] = Annotation{
			Position:           c.Position,
			CalledBase:         string(c.CalledBase),
			PrimaryBase:        string(c.PrimaryBase),
			SecondaryBase:      string(c.SecondaryBase),
			PrimaryIntensity:   round(c.PrimaryIntensity, 2),
			SecondaryIntensity: round(c.SecondaryIntensity, 2),
			SPR:                round(c.SPR, 4),
			SNR:                round(c.SNR, 2),
			Quality:            c.Quality,
			Mode:               string(c.Mode),
			AlleleFraction:     round(c.AlleleFraction, 4),
			Flags:              strings.Join(c.Flags, ","),
		}
	}
	return anns
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
