package lazybam

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/require"
)

func TestDecodeCigar(t *testing.T) {
	raw := sam.Cigar{
		sam.NewCigarOp(sam.CigarSoftClipped, 5),
		sam.NewCigarOp(sam.CigarMatch, 20),
		sam.NewCigarOp(sam.CigarBack, 3),
		sam.NewCigarOp(sam.CigarMismatch, 1),
	}

	require.Equal(t, []CigarOp{
		{Kind: CigarSoftClip, Len: 5},
		{Kind: CigarMatch, Len: 20},
		{Kind: CigarMatch, Len: 0},
		{Kind: CigarSequenceMismatch, Len: 1},
	}, DecodeCigar(raw))

	require.Empty(t, DecodeCigar(nil))
}

func TestCigarKindOrdinals(t *testing.T) {
	// Ordinals follow the BAM op encoding shared with biogo.
	require.Equal(t, int(sam.CigarMatch), int(CigarMatch))
	require.Equal(t, int(sam.CigarInsertion), int(CigarInsertion))
	require.Equal(t, int(sam.CigarDeletion), int(CigarDeletion))
	require.Equal(t, int(sam.CigarSkipped), int(CigarSkip))
	require.Equal(t, int(sam.CigarSoftClipped), int(CigarSoftClip))
	require.Equal(t, int(sam.CigarHardClipped), int(CigarHardClip))
	require.Equal(t, int(sam.CigarPadded), int(CigarPad))
	require.Equal(t, int(sam.CigarEqual), int(CigarSequenceMatch))
	require.Equal(t, int(sam.CigarMismatch), int(CigarSequenceMismatch))
}

func TestCigarKindString(t *testing.T) {
	require.Equal(t, "M", CigarMatch.String())
	require.Equal(t, "=", CigarSequenceMatch.String())
	require.Equal(t, "X", CigarSequenceMismatch.String())
	require.Equal(t, "CigarKind(12)", CigarKind(12).String())
	require.False(t, CigarKind(9).Valid())
}

func TestValidCigarOps(t *testing.T) {
	in := []CigarOp{
		{Kind: CigarMatch, Len: 10},
		{Kind: CigarKind(9), Len: 2},
		{Kind: CigarInsertion, Len: -1},
		{Kind: CigarDeletion, Len: maxCigarLen + 1},
		{Kind: CigarSoftClip, Len: 0},
	}
	out := ValidCigarOps(in)
	require.Equal(t, []CigarOp{
		{Kind: CigarMatch, Len: 10},
		{Kind: CigarSoftClip, Len: 0},
	}, out)

	out[0].Len = 99
	require.Equal(t, 10, in[0].Len)
}

func TestParseCigar(t *testing.T) {
	ops, err := ParseCigar("5S20M1I10M2D3H")
	require.NoError(t, err)
	require.Equal(t, []CigarOp{
		{Kind: CigarSoftClip, Len: 5},
		{Kind: CigarMatch, Len: 20},
		{Kind: CigarInsertion, Len: 1},
		{Kind: CigarMatch, Len: 10},
		{Kind: CigarDeletion, Len: 2},
		{Kind: CigarHardClip, Len: 3},
	}, ops)
	require.Equal(t, "5S20M1I10M2D3H", CigarString(ops))
	require.Equal(t, 36, QueryLength(ops))
	require.Equal(t, 32, ReferenceLength(ops))

	ops, err = ParseCigar("*")
	require.NoError(t, err)
	require.Empty(t, ops)
	require.Equal(t, "*", CigarString(ops))

	for _, bad := range []string{"M", "10", "10Q", "5M3", "999999999M"} {
		_, err := ParseCigar(bad)
		require.Error(t, err, bad)
	}
}

func TestSamCigar(t *testing.T) {
	ops := []CigarOp{{Kind: CigarSoftClip, Len: 2}, {Kind: CigarMatch, Len: 8}}
	c := samCigar(ops)
	require.Equal(t, "2S8M", c.String())
	require.Equal(t, ops, DecodeCigar(c))
	require.Nil(t, samCigar(nil))
}
