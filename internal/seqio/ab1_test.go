package seqio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagSpec struct {
	name   string
	number int32
	data   []byte
}

// buildABIF assembles a minimal ABIF container: header, data blobs, then
// the directory. Tag data of four bytes or fewer is stored inline in the
// entry, as the format requires.
func buildABIF(tags []tagSpec) []byte {
	const headerSize = 6 + 28

	var blobs []byte
	offsets := make([]int, len(tags))
	for i, tag := range tags {
		if len(tag.data) > 4 {
			offsets[i] = headerSize + len(blobs)
			blobs = append(blobs, tag.data...)
		}
	}
	dirOffset := headerSize + len(blobs)

	buf := make([]byte, 0, dirOffset+28*len(tags))
	buf = append(buf, []byte("ABIF")...)
	buf = binary.BigEndian.AppendUint16(buf, 101)

	encodeEntry := func(name string, number int32, numElements, dataSize, dataOffset int, inline []byte) []byte {
		e := make([]byte, 28)
		copy(e[0:4], name)
		binary.BigEndian.PutUint32(e[4:8], uint32(number))
		binary.BigEndian.PutUint16(e[8:10], 1)
		binary.BigEndian.PutUint16(e[10:12], 1)
		binary.BigEndian.PutUint32(e[12:16], uint32(numElements))
		binary.BigEndian.PutUint32(e[16:20], uint32(dataSize))
		if inline != nil {
			copy(e[20:24], inline)
		} else {
			binary.BigEndian.PutUint32(e[20:24], uint32(dataOffset))
		}
		return e
	}

	// Root entry points at the directory.
	buf = append(buf, encodeEntry("tdir", 1, len(tags), 28*len(tags), dirOffset, nil)...)
	buf = append(buf, blobs...)

	for i, tag := range tags {
		if len(tag.data) <= 4 {
			buf = append(buf, encodeEntry(tag.name, tag.number, len(tag.data), len(tag.data), 0, tag.data)...)
		} else {
			buf = append(buf, encodeEntry(tag.name, tag.number, len(tag.data), len(tag.data), offsets[i], nil)...)
		}
	}

	return buf
}

func shortsBytes(vals ...int16) []byte {
	var out []byte
	for _, v := range vals {
		out = binary.BigEndian.AppendUint16(out, uint16(v))
	}
	return out
}

func writeTempAB1(t *testing.T, name string, tags []tagSpec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buildABIF(tags), 0o644))
	return path
}

func TestParseAB1CorruptEntrySize(t *testing.T) {
	buf := buildABIF([]tagSpec{
		{"PBAS", 2, []byte("ACGTA")},
		{"PCON", 2, []byte{30, 25, 40, 12, 8}},
	})
	// Corrupt the PBAS directory entry's size field to 0xFFFFFFFF, which
	// decodes to -1. The file must fail with a parse error, not a panic.
	dirOffset := 6 + 28 + 10 // header + root entry + two 5-byte blobs
	binary.BigEndian.PutUint32(buf[dirOffset+16:dirOffset+20], 0xFFFFFFFF)

	path := filepath.Join(t.TempDir(), "corrupt.ab1")
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err := ParseAB1(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PBAS")
}

func TestParseAB1(t *testing.T) {
	path := writeTempAB1(t, "sample01.ab1", []tagSpec{
		{"PBAS", 2, []byte("ACGTA")},
		{"PCON", 2, []byte{30, 25, 40, 12, 8}},
		{"DATA", 9, shortsBytes(0, 100, 0, 0, 0, 0, 0, 0, 0, 50)},
		{"DATA", 10, shortsBytes(0, 5, 0, 80, 0, 0, 0, 0, 0, 0)},
		{"DATA", 11, shortsBytes(0, 10, 0, 0, 0, 90, 0, 0, 0, 0)},
		{"DATA", 12, shortsBytes(0, 2, 0, 0, 0, 0, 0, 70, 0, 0)},
		{"PLOC", 2, shortsBytes(1, 3, 5, 7, 9)},
	})

	r, err := ParseAB1(path)
	require.NoError(t, err)

	assert.Equal(t, "sample01", r.SampleID)
	assert.Equal(t, FormatAB1, r.Format)
	assert.Equal(t, "ACGTA", r.Seq)
	assert.Equal(t, []int{30, 25, 40, 12, 8}, r.Quals)

	require.True(t, r.Trace.OK())
	assert.Equal(t, []int{1, 3, 5, 7, 9}, r.Trace.PeakLocations)
	assert.Equal(t, 100.0, r.Trace.A[1])
	assert.Equal(t, 80.0, r.Trace.C[3])
	assert.Equal(t, 90.0, r.Trace.G[5])
	assert.Equal(t, 70.0, r.Trace.T[7])
}

func TestParseAB1InlineData(t *testing.T) {
	// Four bases: PBAS and PCON fit inline in the directory entry.
	path := writeTempAB1(t, "tiny.ab1", []tagSpec{
		{"PBAS", 2, []byte("ACGT")},
		{"PCON", 2, []byte{30, 30, 30, 30}},
	})

	r, err := ParseAB1(path)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", r.Seq)
	assert.Equal(t, []int{30, 30, 30, 30}, r.Quals)
}

func TestParseAB1FallsBackToPBAS1(t *testing.T) {
	path := writeTempAB1(t, "old.ab1", []tagSpec{
		{"PBAS", 1, []byte("GGCC")},
		{"PCON", 1, []byte{10, 20, 30, 40}},
	})

	r, err := ParseAB1(path)
	require.NoError(t, err)
	assert.Equal(t, "GGCC", r.Seq)
	assert.Equal(t, []int{10, 20, 30, 40}, r.Quals)
}

func TestParseAB1NoTraceData(t *testing.T) {
	// Sequence and qualities but no DATA/PLOC tags: the read is returned
	// with a nil bundle rather than an error.
	path := writeTempAB1(t, "notrace.ab1", []tagSpec{
		{"PBAS", 2, []byte("ACGTACGT")},
		{"PCON", 2, []byte{30, 30, 30, 30, 30, 30, 30, 30}},
	})

	r, err := ParseAB1(path)
	require.NoError(t, err)
	assert.False(t, r.Trace.OK())
}

func TestParseAB1PartialTraceData(t *testing.T) {
	// A missing channel invalidates the whole bundle.
	path := writeTempAB1(t, "partial.ab1", []tagSpec{
		{"PBAS", 2, []byte("ACGTA")},
		{"PCON", 2, []byte{30, 25, 40, 12, 8}},
		{"DATA", 9, shortsBytes(1, 2, 3)},
		{"DATA", 10, shortsBytes(1, 2, 3)},
		{"PLOC", 2, shortsBytes(0, 1, 2)},
	})

	r, err := ParseAB1(path)
	require.NoError(t, err)
	assert.False(t, r.Trace.OK())
}

func TestParseAB1MissingBaseCalls(t *testing.T) {
	path := writeTempAB1(t, "empty.ab1", []tagSpec{
		{"PCON", 2, []byte{30, 30}},
	})

	_, err := ParseAB1(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PBAS")
}

func TestParseAB1QualityLengthMismatch(t *testing.T) {
	path := writeTempAB1(t, "mismatch.ab1", []tagSpec{
		{"PBAS", 2, []byte("ACGTA")},
		{"PCON", 2, []byte{30, 30}},
	})

	_, err := ParseAB1(path)
	require.Error(t, err)
}

func TestParseAB1BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.ab1")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	_, err := ParseAB1(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ABIF")
}

func TestParseAB1TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.ab1")
	require.NoError(t, os.WriteFile(path, []byte("ABIF"), 0o644))

	_, err := ParseAB1(path)
	require.Error(t, err)
}
