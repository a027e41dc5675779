package seqio

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Input is a discovered file with its detected format.
type Input struct {
	Path   string
	Format string
}

// Discover expands the given paths into the list of recognized input files.
// Directories are listed (recursively when asked) and files whose names are
// not recognized are skipped. Files sharing a sample ID are deduplicated,
// preferring .ab1 over .phd.1 so trace data wins when both exist.
func Discover(inputs []string, recursive bool, logger *zap.Logger) ([]Input, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var found []Input
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			logger.Warn("input path does not exist", zap.String("path", in))
			continue
		}

		if !info.IsDir() {
			if format := DetectFormat(in); format != "" {
				found = append(found, Input{Path: in, Format: format})
			} else {
				logger.Warn("skipping file with unknown format", zap.String("path", in))
			}
			continue
		}

		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != in && !recursive {
					return fs.SkipDir
				}
				return nil
			}
			if format := DetectFormat(path); format != "" {
				found = append(found, Input{Path: path, Format: format})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	deduped := dedupe(found, logger)
	logger.Info("discovered input files", zap.Int("count", len(deduped)))
	return deduped, nil
}

// dedupe collapses inputs sharing a sample ID, preferring ab1 over phd.1.
func dedupe(inputs []Input, logger *zap.Logger) []Input {
	seen := make(map[string]Input)
	var order []string

	for _, in := range inputs {
		id := SampleID(in.Path)
		existing, ok := seen[id]
		if !ok {
			seen[id] = in
			order = append(order, id)
			continue
		}

		switch {
		case in.Format == FormatAB1 && existing.Format == FormatPHD:
			logger.Info("preferring ab1 over phd.1",
				zap.String("sample", id), zap.String("path", in.Path))
			seen[id] = in
		case in.Format == FormatPHD && existing.Format == FormatAB1:
			logger.Info("skipping phd.1 duplicate",
				zap.String("sample", id), zap.String("path", in.Path))
		default:
			logger.Warn("duplicate sample id",
				zap.String("sample", id),
				zap.String("kept", existing.Path),
				zap.String("skipped", in.Path))
		}
	}

	out := make([]Input, 0, len(order))
	for _, id := range order {
		out = append(out, seen[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
