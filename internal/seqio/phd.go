package seqio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParsePHD reads the first sequence of a PHD file (phred output). Each line
// of the DNA block is "base quality [trace-position]"; trace positions are
// peak indices into a chromatogram this file does not carry, so the bundle
// stays nil.
func ParsePHD(path string) (*Read, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open phd file: %w", err)
	}
	defer file.Close()

	var (
		seq     strings.Builder
		quals   []int
		inDNA   bool
		sawDNA  bool
		scanner = bufio.NewScanner(file)
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "BEGIN_DNA":
			if sawDNA {
				// Only the first record is used.
				break
			}
			inDNA = true
			sawDNA = true
		case line == "END_DNA":
			inDNA = false
		case inDNA && line != "":
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, fmt.Errorf("parse %s: malformed DNA line %q", path, line)
			}
			q, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("parse %s: bad quality in line %q: %w", path, line, err)
			}
			base := strings.ToUpper(fields[0])
			if len(base) != 1 {
				return nil, fmt.Errorf("parse %s: bad base in line %q", path, line)
			}
			seq.WriteString(base)
			quals = append(quals, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read phd file: %w", err)
	}

	if !sawDNA {
		return nil, fmt.Errorf("parse %s: no DNA block found", path)
	}

	return &Read{
		SampleID:   SampleID(path),
		SourceFile: path,
		Format:     FormatPHD,
		Seq:        seq.String(),
		Quals:      quals,
	}, nil
}
