package seqio

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/inodb/sanger-qc/internal/trace"
)

// ABIF container layout constants. All integers are big-endian.
const (
	abifMagic     = "ABIF"
	abifEntrySize = 28
	abifRootOff   = 6
)

// abifEntry is one directory entry of an ABIF container.
type abifEntry struct {
	name        string
	number      int32
	elementType int16
	numElements int32
	dataSize    int32
	dataOffset  int32
	// raw holds the 4 offset bytes; entries with dataSize <= 4 store
	// their data inline in place of the offset.
	raw [4]byte
}

type abifFile struct {
	buf     []byte
	entries []abifEntry
}

// ParseAB1 reads an AB1 chromatogram file: the base-called sequence
// (PBAS2, falling back to PBAS1), per-base qualities (PCON2/PCON1), and the
// four channel traces with peak locations (DATA9-12, PLOC2/PLOC1). A file
// without trace tags still yields a read; its bundle is left nil so the
// classifier degrades to quality-only calling.
func ParseAB1(path string) (*Read, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ab1 file: %w", err)
	}

	f, err := parseABIF(buf)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seqBytes := f.tagData("PBAS", 2)
	if seqBytes == nil {
		seqBytes = f.tagData("PBAS", 1)
	}
	if seqBytes == nil {
		return nil, fmt.Errorf("parse %s: no base calls (PBAS tag missing)", path)
	}

	qualBytes := f.tagData("PCON", 2)
	if qualBytes == nil {
		qualBytes = f.tagData("PCON", 1)
	}
	if qualBytes == nil {
		return nil, fmt.Errorf("parse %s: no quality values (PCON tag missing)", path)
	}
	if len(qualBytes) != len(seqBytes) {
		return nil, fmt.Errorf("parse %s: %d base calls but %d quality values", path, len(seqBytes), len(qualBytes))
	}

	quals := make([]int, len(qualBytes))
	for i, q := range qualBytes {
		quals[i] = int(q)
	}

	r := &Read{
		SampleID:   SampleID(path),
		SourceFile: path,
		Format:     FormatAB1,
		Seq:        string(seqBytes),
		Quals:      quals,
		Trace:      f.traceBundle(),
	}
	return r, nil
}

// traceBundle extracts the four analyzed channel traces and the peak
// location map. Channel assignment follows the conventional AB1 layout:
// DATA9=A, DATA10=C, DATA11=G, DATA12=T. Returns nil when any channel or
// the peak map is missing.
func (f *abifFile) traceBundle() *trace.Bundle {
	a := f.shorts("DATA", 9)
	c := f.shorts("DATA", 10)
	g := f.shorts("DATA", 11)
	t := f.shorts("DATA", 12)

	peaks := f.shorts("PLOC", 2)
	if peaks == nil {
		peaks = f.shorts("PLOC", 1)
	}

	if len(a) == 0 || len(c) == 0 || len(g) == 0 || len(t) == 0 || len(peaks) == 0 {
		return nil
	}

	locs := make([]int, len(peaks))
	for i, p := range peaks {
		locs[i] = int(p)
	}

	return &trace.Bundle{
		A:             toFloats(a),
		C:             toFloats(c),
		G:             toFloats(g),
		T:             toFloats(t),
		PeakLocations: locs,
	}
}

func toFloats(vals []int16) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out
}

// parseABIF reads the container header and directory.
func parseABIF(buf []byte) (*abifFile, error) {
	if len(buf) < abifRootOff+abifEntrySize {
		return nil, fmt.Errorf("file too short (%d bytes)", len(buf))
	}
	if string(buf[:4]) != abifMagic {
		return nil, fmt.Errorf("not an ABIF file (bad magic %q)", buf[:4])
	}

	root := decodeEntry(buf[abifRootOff : abifRootOff+abifEntrySize])
	numEntries := int(root.numElements)
	dirOffset := int(root.dataOffset)

	if dirOffset < 0 || dirOffset+numEntries*abifEntrySize > len(buf) {
		return nil, fmt.Errorf("directory out of bounds (offset %d, %d entries)", dirOffset, numEntries)
	}

	f := &abifFile{buf: buf}
	for i := 0; i < numEntries; i++ {
		off := dirOffset + i*abifEntrySize
		f.entries = append(f.entries, decodeEntry(buf[off:off+abifEntrySize]))
	}
	return f, nil
}

func decodeEntry(b []byte) abifEntry {
	e := abifEntry{
		name:        string(b[0:4]),
		number:      int32(binary.BigEndian.Uint32(b[4:8])),
		elementType: int16(binary.BigEndian.Uint16(b[8:10])),
		numElements: int32(binary.BigEndian.Uint32(b[12:16])),
		dataSize:    int32(binary.BigEndian.Uint32(b[16:20])),
		dataOffset:  int32(binary.BigEndian.Uint32(b[20:24])),
	}
	copy(e.raw[:], b[20:24])
	return e
}

// tagData returns the raw data bytes for a tag, or nil if absent or out of
// bounds. Data of four bytes or fewer is stored inline in the entry.
func (f *abifFile) tagData(name string, number int32) []byte {
	for i := range f.entries {
		e := &f.entries[i]
		if e.name != name || e.number != number {
			continue
		}
		// A corrupt entry can decode to a negative size; treat it as
		// absent so the caller surfaces a per-file parse error.
		if e.dataSize < 0 || e.numElements < 0 {
			return nil
		}
		if e.dataSize <= 4 {
			return e.raw[:e.dataSize]
		}
		start, end := int(e.dataOffset), int(e.dataOffset)+int(e.dataSize)
		if start < 0 || end > len(f.buf) {
			return nil
		}
		return f.buf[start:end]
	}
	return nil
}

// shorts decodes a tag's data as big-endian int16 values.
func (f *abifFile) shorts(name string, number int32) []int16 {
	data := f.tagData(name, number)
	if len(data) < 2 {
		return nil
	}
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(data[2*i : 2*i+2]))
	}
	return out
}
