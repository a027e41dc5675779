// Package seqio reads Sanger sequencing records from AB1 chromatogram and
// PHD files, and discovers input files on disk.
package seqio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/inodb/sanger-qc/internal/trace"
)

// Formats recognized by the readers.
const (
	FormatAB1 = "ab1"
	FormatPHD = "phd.1"
)

// Read is a single in-memory sequencing read: the called sequence, its
// per-base Phred qualities, and optionally the raw chromatogram traces.
type Read struct {
	SampleID   string
	SourceFile string
	Format     string
	Seq        string
	Quals      []int
	// Trace is nil (or empty) when the source carries no usable trace
	// data; downstream callers must treat that as a valid state.
	Trace *trace.Bundle
}

// Parse reads a single record from the given file.
func Parse(path, format string) (*Read, error) {
	switch format {
	case FormatAB1:
		return ParseAB1(path)
	case FormatPHD:
		return ParsePHD(path)
	default:
		return nil, fmt.Errorf("unknown format %q for %s", format, path)
	}
}

// DetectFormat returns the format for a file name, or "" if unrecognized.
func DetectFormat(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".ab1"):
		return FormatAB1
	case strings.HasSuffix(name, ".phd.1"):
		return FormatPHD
	default:
		return ""
	}
}

// SampleID extracts the sample identifier from a file name: the base name
// without its extension (".phd.1" strips both suffixes).
func SampleID(path string) string {
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".phd.1") {
		return name[:len(name)-len(".phd.1")]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// MakeReadID builds a read identifier carrying the trim coordinates.
func MakeReadID(sampleID string, trimStart, trimEnd int) string {
	return fmt.Sprintf("%s/trim:%d-%d", sampleID, trimStart, trimEnd)
}
