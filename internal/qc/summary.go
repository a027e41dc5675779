package qc

// Summary aggregates a batch of per-read metrics. It is recomputed wholesale
// per batch, never incrementally updated.
type Summary struct {
	TotalReads          int     `json:"total_reads"`
	MeanRawLength       float64 `json:"mean_raw_length"`
	MedianRawLength     float64 `json:"median_raw_length"`
	MeanTrimmedLength   float64 `json:"mean_trimmed_length"`
	MedianTrimmedLength float64 `json:"median_trimmed_length"`
	MeanMeanQ           float64 `json:"mean_mean_q"`
	MedianMeanQ         float64 `json:"median_mean_q"`
	MeanPctQ20          float64 `json:"mean_pct_q20"`
	MeanPctQ30          float64 `json:"mean_pct_q30"`
	MeanGCPercent       float64 `json:"mean_gc_percent"`
	MeanExpectedErrors  float64 `json:"mean_expected_errors"`
	ReadsPassedMinLen   int     `json:"reads_passed_minlen"`
	ReadsFailedMinLen   int     `json:"reads_failed_minlen"`
	PctPassed           float64 `json:"pct_passed"`
}

// ComputeSummary reduces a batch of per-read metrics into population-level
// statistics. An empty batch yields a zero-valued summary.
func ComputeSummary(metrics []Metrics) Summary {
	if len(metrics) == 0 {
		return Summary{}
	}

	n := len(metrics)
	rawLengths := make([]float64, n)
	trimmedLengths := make([]float64, n)
	meanQs := make([]float64, n)
	pctQ20s := make([]float64, n)
	pctQ30s := make([]float64, n)
	gcPercents := make([]float64, n)
	expectedErrors := make([]float64, n)
	passed := 0

	for i, m := range metrics {
		rawLengths[i] = float64(m.RawLength)
		trimmedLengths[i] = float64(m.TrimmedLength)
		meanQs[i] = m.MeanQ
		pctQ20s[i] = m.PctQ20
		pctQ30s[i] = m.PctQ30
		gcPercents[i] = m.GCPercent
		expectedErrors[i] = m.ExpectedErrors
		if m.PassedMinLength {
			passed++
		}
	}

	return Summary{
		TotalReads:          n,
		MeanRawLength:       Round(mean(rawLengths), 2),
		MedianRawLength:     Round(medianFloats(rawLengths), 2),
		MeanTrimmedLength:   Round(mean(trimmedLengths), 2),
		MedianTrimmedLength: Round(medianFloats(trimmedLengths), 2),
		MeanMeanQ:           Round(mean(meanQs), 2),
		MedianMeanQ:         Round(medianFloats(meanQs), 2),
		MeanPctQ20:          Round(mean(pctQ20s), 4),
		MeanPctQ30:          Round(mean(pctQ30s), 4),
		MeanGCPercent:       Round(mean(gcPercents), 2),
		MeanExpectedErrors:  Round(mean(expectedErrors), 2),
		ReadsPassedMinLen:   passed,
		ReadsFailedMinLen:   n - passed,
		PctPassed:           Round(100*float64(passed)/float64(n), 2),
	}
}
