package lazybam

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/require"

	"github.com/scttfrdmn/lazybam-go/pkg/bam"
)

func TestRebuildWithoutOverride(t *testing.T) {
	h := testHeader(t)
	r := NewRecord(testRecord(h.Refs()[1], "read1", 41))

	rr, err := r.Rebuild()
	require.NoError(t, err)
	require.Equal(t, "read1", rr.Name)
	require.Equal(t, r.Flags(), rr.Flags)
	require.Equal(t, 1, rr.ReferenceID)
	require.Equal(t, int64(42), rr.Position)
	require.Equal(t, uint8(60), rr.MappingQuality)
	require.Equal(t, r.Cigar(), rr.Cigar)
	require.Equal(t, "ACGT", rr.Sequence)
	require.Equal(t, []uint8{30, 31, 32, 33}, rr.Quality)
	require.Equal(t, []string{"NM", "RG"}, rr.Tags.Names())
}

func TestRebuildUnplaced(t *testing.T) {
	r := NewRecord(&sam.Record{Name: "u", Pos: -1, MatePos: -1, Flags: sam.Unmapped})

	rr, err := r.Rebuild()
	require.NoError(t, err)
	require.Equal(t, 0, rr.ReferenceID)
	require.Equal(t, int64(Unplaced), rr.Position)
	require.Empty(t, rr.Cigar)
	require.Equal(t, 0, rr.Tags.Len())
}

func TestRebuildAddsTag(t *testing.T) {
	h := testHeader(t)
	r := NewRecord(testRecord(h.Refs()[0], "r", 0))
	r.SetOverride(NewOverride().SetTag("XX", Int32Tag(1)))

	rr, err := r.Rebuild()
	require.NoError(t, err)
	require.Equal(t, []string{"NM", "RG", "XX"}, rr.Tags.Names())
	v, ok := rr.Tags.Get("XX")
	require.True(t, ok)
	require.True(t, Int32Tag(1).Equal(v))

	// The view is unchanged.
	require.Equal(t, []string{"NM", "RG"}, r.Tags().Names())
}

func TestRebuildReplacesTag(t *testing.T) {
	h := testHeader(t)
	raw := testRecord(h.Refs()[0], "r", 0)
	raw.AuxFields = append(raw.AuxFields, sam.Aux{'N', 'M', 'C', 3})
	r := NewRecord(raw)

	rr, err := Rebuild(r, NewOverride().SetTag("NM", UInt8Tag(7)))
	require.NoError(t, err)
	require.Equal(t, []string{"NM", "RG"}, rr.Tags.Names())
	v, _ := rr.Tags.Get("NM")
	require.True(t, UInt8Tag(7).Equal(v))
}

func TestRebuildDuplicateTagsLastWins(t *testing.T) {
	h := testHeader(t)
	raw := testRecord(h.Refs()[0], "r", 0)
	raw.AuxFields = append(raw.AuxFields, sam.Aux{'N', 'M', 'C', 3})

	rr, err := NewRecord(raw).Rebuild()
	require.NoError(t, err)
	require.Equal(t, 2, rr.Tags.Len())
	v, _ := rr.Tags.Get("NM")
	require.True(t, UInt8Tag(3).Equal(v))
}

func TestRebuildOverrides(t *testing.T) {
	h := testHeader(t)
	r := NewRecord(testRecord(h.Refs()[0], "r", 0))

	ov := NewOverride().
		SetCigar([]CigarOp{{Kind: CigarSoftClip, Len: 1}, {Kind: CigarKind(11), Len: 5}, {Kind: CigarMatch, Len: 3}}).
		SetReferenceID(1).
		SetMappingQuality(MappingQualityUnavailable)

	rr, err := Rebuild(r, ov)
	require.NoError(t, err)
	require.Equal(t, []CigarOp{{Kind: CigarSoftClip, Len: 1}, {Kind: CigarMatch, Len: 3}}, rr.Cigar)
	require.Equal(t, 1, rr.ReferenceID)
	require.Equal(t, uint8(255), rr.MappingQuality)

	// The rebuilt CIGAR does not alias the override.
	rr.Cigar[0].Len = 9
	ops, _ := ov.Cigar()
	require.Equal(t, 1, ops[0].Len)
}

func TestRebuildEmptyCigarOverride(t *testing.T) {
	h := testHeader(t)
	r := NewRecord(testRecord(h.Refs()[0], "r", 0))

	rr, err := Rebuild(r, NewOverride().SetCigar(nil))
	require.NoError(t, err)
	require.Empty(t, rr.Cigar)
}

func TestRebuildErrors(t *testing.T) {
	h := testHeader(t)
	orphan, err := sam.NewReference("chrX", "", "", 100, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		rec  *sam.Record
		ov   *Override
	}{
		{"invalid reference", testRecord(orphan, "r", 0), nil},
		{"negative reference override", testRecord(h.Refs()[0], "r", 0), NewOverride().SetReferenceID(-1)},
		{"invalid position", &sam.Record{Name: "r", Pos: -7}, nil},
		{"mapping quality too large", testRecord(h.Refs()[0], "r", 0), NewOverride().SetMappingQuality(256)},
		{"negative mapping quality", testRecord(h.Refs()[0], "r", 0), NewOverride().SetMappingQuality(-1)},
		{"cigar length mismatch", testRecord(h.Refs()[0], "r", 0), NewOverride().SetCigar([]CigarOp{{Kind: CigarMatch, Len: 10}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, err := Rebuild(NewRecord(tt.rec), tt.ov)
			require.Nil(t, rr)
			require.Error(t, err)
			require.True(t, IsBuildError(err))
		})
	}
}

func TestRebuildOverrideFixesReference(t *testing.T) {
	orphan, err := sam.NewReference("chrX", "", "", 100, nil, nil)
	require.NoError(t, err)

	rr, err := Rebuild(NewRecord(testRecord(orphan, "r", 0)), NewOverride().SetReferenceID(0))
	require.NoError(t, err)
	require.Equal(t, 0, rr.ReferenceID)
}

func TestSAMRecordRoundTrip(t *testing.T) {
	h := testHeader(t)
	r := NewRecord(testRecord(h.Refs()[1], "read1", 9))
	r.SetOverride(NewOverride().
		SetTag("XX", Int32Tag(1)).
		SetTag("XB", Int16ArrayTag([]int16{-1, 2})).
		SetCigar([]CigarOp{{Kind: CigarSoftClip, Len: 1}, {Kind: CigarMatch, Len: 3}}))

	rr, err := r.Rebuild()
	require.NoError(t, err)
	out, err := rr.SAMRecord(h)
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := bam.NewWriter(&buf, h, bam.Options{})
	require.NoError(t, err)
	require.NoError(t, w.Write(out))
	require.NoError(t, w.Close())

	f, err := bam.NewFile(&buf, bam.Options{})
	require.NoError(t, err)
	defer f.Close()
	got, err := f.Read()
	require.NoError(t, err)
	_, err = f.Read()
	require.Equal(t, io.EOF, err)

	view := NewRecord(got)
	require.Equal(t, "read1", view.Name())
	pos, err := view.Position()
	require.NoError(t, err)
	require.Equal(t, int64(10), pos)
	id, _, err := view.ReferenceID()
	require.NoError(t, err)
	require.Equal(t, 1, id)
	require.Equal(t, "1S3M", CigarString(view.Cigar()))
	require.Equal(t, "ACGT", view.Sequence())
	require.Equal(t, []string{"NM", "RG", "XX", "XB"}, view.Tags().Names())
	v, _ := view.Tags().Get("XB")
	require.True(t, Int16ArrayTag([]int16{-1, 2}).Equal(v))
	v, _ = view.Tags().Get("RG")
	require.True(t, StringTag("grp1").Equal(v))
}

func TestSAMRecordReferenceNotInHeader(t *testing.T) {
	h := testHeader(t)
	rr := &RebuiltRecord{Name: "r", ReferenceID: 5, Position: 10}
	_, err := rr.SAMRecord(h)
	require.True(t, IsBuildError(err))
	require.True(t, errors.Is(err, errRefNotInHeader))

	rr.Position = Unplaced
	out, err := rr.SAMRecord(h)
	require.NoError(t, err)
	require.Nil(t, out.Ref)
	require.Equal(t, -1, out.Pos)
}

func TestSAMRecordSkipsUnrepresentableTags(t *testing.T) {
	h := testHeader(t)
	rr := &RebuiltRecord{
		Name: "r",
		Tags: NewTagSet(Tag{Name: "XQ"}, Tag{Name: "NM", Value: Int32Tag(0)}),
	}
	out, err := rr.SAMRecord(h)
	require.NoError(t, err)
	require.Len(t, out.AuxFields, 1)
	require.Equal(t, "NM", out.AuxFields[0].Tag().String())
}
