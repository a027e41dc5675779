// Package qc computes per-read quality metrics and batch-level summaries.
package qc

import "math"

// errorProbs precomputes Phred error probabilities so the expected-error sum
// is a table lookup per base.
var errorProbs [94]float64

func init() {
	for q := range errorProbs {
		errorProbs[q] = math.Pow(10, -float64(q)/10)
	}
}

// Metrics holds the per-read QC statistics. A Metrics value is derived
// entirely from a sequence, quality vector, and trim coordinates, and is
// never mutated after computation.
type Metrics struct {
	SampleID   string  `json:"sample_id"`
	SourceFile string  `json:"source_file"`
	Format     string  `json:"format"`
	RawLength  int     `json:"raw_length"`
	MeanQ      float64 `json:"mean_q"`
	MedianQ    float64 `json:"median_q"`
	PctQ20     float64 `json:"pct_q20"`
	PctQ30     float64 `json:"pct_q30"`
	GCPercent  float64 `json:"gc_percent"`
	NCount     int     `json:"n_count"`
	// ExpectedErrors is the sum of per-base error probabilities 10^(-q/10).
	ExpectedErrors float64 `json:"expected_errors"`
	// HQLongestStretch is the longest contiguous run of bases with
	// quality >= the trimming threshold.
	HQLongestStretch int  `json:"hq_longest_stretch_len"`
	TrimStart        int  `json:"trim_start"`
	TrimEnd          int  `json:"trim_end"`
	TrimmedLength    int  `json:"trimmed_length"`
	PassedMinLength  bool `json:"passed_minlen"`
}

// ComputeMetrics computes QC statistics for a single read. Quality summary
// fields cover the full (untrimmed) quality vector; the trim coordinates
// only determine the trimmed length and the minimum-length gate. Reported
// floats are rounded (2 decimal places, 4 for the Q20/Q30 fractions) for
// deterministic output.
func ComputeMetrics(sampleID, sourceFile, format, seq string, quals []int, trimStart, trimEnd, qThreshold, minLength int) Metrics {
	rawLength := len(seq)
	trimmedLength := trimEnd - trimStart

	var meanQ, medianQ, pctQ20, pctQ30, expectedErrors float64
	if len(quals) > 0 {
		var sum, q20, q30 int
		for _, q := range quals {
			sum += q
			if q >= 20 {
				q20++
			}
			if q >= 30 {
				q30++
			}
			expectedErrors += errorProb(q)
		}
		n := float64(len(quals))
		meanQ = float64(sum) / n
		medianQ = medianInts(quals)
		pctQ20 = float64(q20) / n
		pctQ30 = float64(q30) / n
	}

	var gcCount, nCount int
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'G', 'C', 'g', 'c':
			gcCount++
		case 'N', 'n':
			nCount++
		}
	}
	var gcPercent float64
	if nonN := rawLength - nCount; nonN > 0 {
		gcPercent = 100 * float64(gcCount) / float64(nonN)
	}

	return Metrics{
		SampleID:         sampleID,
		SourceFile:       sourceFile,
		Format:           format,
		RawLength:        rawLength,
		MeanQ:            Round(meanQ, 2),
		MedianQ:          Round(medianQ, 2),
		PctQ20:           Round(pctQ20, 4),
		PctQ30:           Round(pctQ30, 4),
		GCPercent:        Round(gcPercent, 2),
		NCount:           nCount,
		ExpectedErrors:   Round(expectedErrors, 2),
		HQLongestStretch: longestHQStretch(quals, qThreshold),
		TrimStart:        trimStart,
		TrimEnd:          trimEnd,
		TrimmedLength:    trimmedLength,
		PassedMinLength:  trimmedLength >= minLength,
	}
}

func errorProb(q int) float64 {
	if q >= 0 && q < len(errorProbs) {
		return errorProbs[q]
	}
	return math.Pow(10, -float64(q)/10)
}

// longestHQStretch finds the longest contiguous run of bases with
// quality >= threshold.
func longestHQStretch(quals []int, threshold int) int {
	var longest, current int
	for _, q := range quals {
		if q >= threshold {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}
