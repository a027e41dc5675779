package seqio

import "fmt"

// Reader iterates reads across a list of discovered input files. Each Sanger
// file holds exactly one read. Next returns (nil, nil) after the last file;
// a non-nil error covers a single file, and iteration may continue past it.
type Reader struct {
	inputs []Input
	next   int
}

// NewReader creates a reader over discovered inputs.
func NewReader(inputs []Input) *Reader {
	return &Reader{inputs: inputs}
}

// Next parses and returns the next read.
func (r *Reader) Next() (*Read, error) {
	if r.next >= len(r.inputs) {
		return nil, nil
	}

	in := r.inputs[r.next]
	r.next++

	read, err := Parse(in.Path, in.Format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", in.Path, err)
	}
	return read, nil
}

// Close releases resources. Reads are parsed whole per file, so there is
// nothing held open between calls.
func (r *Reader) Close() error {
	r.next = len(r.inputs)
	return nil
}
