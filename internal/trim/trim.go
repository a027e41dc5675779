// Package trim provides quality-based trimming algorithms for Sanger reads.
package trim

import (
	"errors"
	"fmt"
)

// Method selects the trimming algorithm.
type Method string

const (
	// MethodMaxWindow is the modified Mott/Kadane maximum-score window algorithm.
	MethodMaxWindow Method = "max-window"
	// MethodMott is an alias for MethodMaxWindow, kept for familiarity with
	// phred/trace tooling terminology.
	MethodMott Method = "mott"
	// MethodEnds clips low-quality bases from the 5' and 3' ends only.
	MethodEnds Method = "ends"
)

var (
	// ErrUnknownMethod is returned when the trimming method is not recognized.
	ErrUnknownMethod = errors.New("unknown trimming method")
	// ErrLengthMismatch is returned when sequence and quality lengths differ.
	ErrLengthMismatch = errors.New("sequence and quality length mismatch")
)

// MaxScoreWindow finds the maximum-score contiguous window where each base
// contributes a weight of q - threshold. It returns 0-based [start, end)
// coordinates, or (0, 0) when no window has a positive score.
//
// Ties are resolved to the earliest-occurring maximal window: a later window
// with an equal score never replaces the first one found.
func MaxScoreWindow(quals []int, threshold int) (int, int) {
	var (
		best, cur          int
		bestStart, bestEnd int
		curStart           int
	)

	for i, q := range quals {
		cur += q - threshold
		if cur <= 0 {
			// Window cannot contribute positively; discard it.
			cur = 0
			curStart = i + 1
		} else if cur > best {
			best = cur
			bestStart = curStart
			bestEnd = i + 1
		}
	}

	return bestStart, bestEnd
}

// EndsClip clips from both ends up to the first and last base with
// quality >= threshold. Interior bases below the threshold are kept.
// Returns 0-based [start, end) coordinates, or (0, 0) if no base qualifies.
func EndsClip(quals []int, threshold int) (int, int) {
	n := len(quals)

	start := n
	for i, q := range quals {
		if q >= threshold {
			start = i
			break
		}
	}

	end := -1
	for i := n - 1; i >= 0; i-- {
		if quals[i] >= threshold {
			end = i
			break
		}
	}

	if start >= n || end < 0 || end < start {
		return 0, 0
	}

	return start, end + 1
}

// Compute returns the trim coordinates for the given method without slicing.
func Compute(quals []int, method Method, threshold int) (int, int, error) {
	switch method {
	case MethodMaxWindow, MethodMott:
		start, end := MaxScoreWindow(quals, threshold)
		return start, end, nil
	case MethodEnds:
		start, end := EndsClip(quals, threshold)
		return start, end, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// Apply trims a sequence and its quality vector with the given method and
// returns the trimmed slices along with the [start, end) coordinates.
// The sequence and quality vector must have equal length.
func Apply(seq string, quals []int, method Method, threshold int) (string, []int, int, int, error) {
	if len(seq) != len(quals) {
		return "", nil, 0, 0, fmt.Errorf("%w: sequence %d, qualities %d", ErrLengthMismatch, len(seq), len(quals))
	}

	start, end, err := Compute(quals, method, threshold)
	if err != nil {
		return "", nil, 0, 0, err
	}

	return seq[start:end], quals[start:end], start, end, nil
}
