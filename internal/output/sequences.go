package output

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
)

// TrimmedRead is one trimmed sequence ready for FASTQ/FASTA output.
type TrimmedRead struct {
	ReadID string
	Seq    string
	Quals  []int
}

// FastqWriter writes gzipped FASTQ with Phred+33 quality encoding.
type FastqWriter struct {
	gz *gzip.Writer
	w  *bufio.Writer
}

// NewFastqWriter wraps the destination in gzip compression.
func NewFastqWriter(w io.Writer) *FastqWriter {
	gz := gzip.NewWriter(w)
	return &FastqWriter{gz: gz, w: bufio.NewWriter(gz)}
}

// Write writes one FASTQ record.
func (fw *FastqWriter) Write(r TrimmedRead) error {
	qual := make([]byte, len(r.Quals))
	for i, q := range r.Quals {
		qual[i] = byte(q + 33)
	}
	_, err := fmt.Fprintf(fw.w, "@%s\n%s\n+\n%s\n", r.ReadID, r.Seq, qual)
	return err
}

// Close flushes and closes the gzip stream.
func (fw *FastqWriter) Close() error {
	if err := fw.w.Flush(); err != nil {
		return err
	}
	return fw.gz.Close()
}

// FastaWriter writes gzipped FASTA.
type FastaWriter struct {
	gz *gzip.Writer
	w  *bufio.Writer
}

// NewFastaWriter wraps the destination in gzip compression.
func NewFastaWriter(w io.Writer) *FastaWriter {
	gz := gzip.NewWriter(w)
	return &FastaWriter{gz: gz, w: bufio.NewWriter(gz)}
}

// Write writes one FASTA record.
func (fw *FastaWriter) Write(r TrimmedRead) error {
	_, err := fmt.Fprintf(fw.w, ">%s\n%s\n", r.ReadID, r.Seq)
	return err
}

// Close flushes and closes the gzip stream.
func (fw *FastaWriter) Close() error {
	if err := fw.w.Flush(); err != nil {
		return err
	}
	return fw.gz.Close()
}
