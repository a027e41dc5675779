package basecall

// signal carries the measurements a rule guard inspects.
type signal struct {
	b1, b2   byte
	h1, h2   float64
	spr, snr float64
	quality  int
}

// outcome is the decision a rule action produces.
type outcome struct {
	called byte
	mode   Mode
	flags  []string
}

// rule pairs a guard with an action. Rules are evaluated top-down; the first
// guard that matches determines the outcome.
type rule struct {
	name   string
	guard  func(cfg Config, s signal) bool
	action func(cfg Config, s signal) outcome
}

// callingRules is the ordered decision table. The ordering is part of the
// contract: rule 1 shadows every later rule, rule 6 only sees positions that
// fell through the mixture rules.
//
// Rules 3 and 5 treat ClonalContext oppositely on purpose: a clonal sample
// suppresses minor secondary peaks to the primary call, but a genuinely
// unbalanced mixture in a mixed sample is still reported as IUPAC.
var callingRules = []rule{
	{
		name: "noise",
		guard: func(cfg Config, s signal) bool {
			return s.quality < cfg.QMinNoise || s.snr < cfg.SNRMin
		},
		action: func(cfg Config, s signal) outcome {
			return outcome{'N', ModeNoCall, []string{FlagLowQuality}}
		},
	},
	{
		name: "confident_single",
		guard: func(cfg Config, s signal) bool {
			return s.quality >= cfg.QConfident && s.spr < cfg.SPRNoiseMax
		},
		action: func(cfg Config, s signal) outcome {
			return outcome{s.b1, ModeSingle, nil}
		},
	},
	{
		name: "minor_mixture",
		guard: func(cfg Config, s signal) bool {
			return s.spr >= cfg.SPRNoiseMax && s.spr < cfg.SPRHetLow && s.quality >= cfg.QAmbig
		},
		action: func(cfg Config, s signal) outcome {
			if cfg.ClonalContext {
				return outcome{s.b1, ModeSingle, []string{FlagMinorSecondary}}
			}
			return outcome{IUPAC(s.b1, s.b2), ModeAmbiguous, nil}
		},
	},
	{
		name: "heterozygous",
		guard: func(cfg Config, s signal) bool {
			return s.spr >= cfg.SPRHetLow && s.spr <= cfg.SPRHetHigh &&
				s.quality >= cfg.QAmbig && s.snr >= cfg.SNRMin
		},
		action: func(cfg Config, s signal) outcome {
			return outcome{IUPAC(s.b1, s.b2), ModeAmbiguous, []string{FlagHeterozygous}}
		},
	},
	{
		name: "unbalanced_mixture",
		guard: func(cfg Config, s signal) bool {
			return s.spr > cfg.SPRHetHigh && s.spr < cfg.SPRUnbalanced && s.quality >= cfg.QAmbig
		},
		action: func(cfg Config, s signal) outcome {
			if !cfg.ClonalContext {
				return outcome{IUPAC(s.b1, s.b2), ModeAmbiguous, []string{FlagUnbalancedMixture}}
			}
			return outcome{s.b1, ModeSingle, []string{FlagUncertainMixture}}
		},
	},
	{
		name: "unclear_primary",
		guard: func(cfg Config, s signal) bool {
			return s.spr >= cfg.SPRUnbalanced
		},
		action: func(cfg Config, s signal) outcome {
			return outcome{'N', ModeNoCall, []string{FlagUnclearPrimary}}
		},
	},
}

// evaluate runs the decision table and returns the winning outcome plus the
// allele fraction, which is computed regardless of which rule fired.
// Positions that fall through every rule (reachable only in gaps between
// threshold boundaries) resolve to the primary base with no flags.
func evaluate(cfg Config, s signal) (outcome, float64) {
	alleleFrac := 0.0
	if total := s.h1 + s.h2; total > 0 {
		alleleFrac = s.h1 / total
	}

	for _, r := range callingRules {
		if r.guard(cfg, s) {
			return r.action(cfg, s), alleleFrac
		}
	}

	return outcome{s.b1, ModeSingle, nil}, alleleFrac
}
