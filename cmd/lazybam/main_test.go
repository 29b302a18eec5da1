package main

import (
	"errors"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/require"

	"github.com/scttfrdmn/lazybam-go/pkg/lazybam"
)

func TestNewLogger(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "error"} {
		l, err := newLogger(name)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
	_, err := newLogger("verbose")
	require.Error(t, err)
}

func TestBuildOverride(t *testing.T) {
	cmd := rebuildCmd
	require.NoError(t, cmd.Flags().Set("tag", "XX:i:1"))
	require.NoError(t, cmd.Flags().Set("tag", "RG:Z:grp2"))
	require.NoError(t, cmd.Flags().Set("cigar", "2S2M"))
	require.NoError(t, cmd.Flags().Set("mapq", "7"))

	ov, err := buildOverride(cmd)
	require.NoError(t, err)
	require.Equal(t, []string{"XX", "RG"}, ov.Tags().Names())

	ops, ok := ov.Cigar()
	require.True(t, ok)
	require.Equal(t, "2S2M", lazybam.CigarString(ops))

	mapq, ok := ov.MappingQuality()
	require.True(t, ok)
	require.Equal(t, 7, mapq)

	_, ok = ov.ReferenceID()
	require.False(t, ok)
}

func TestRecordStats(t *testing.T) {
	var s recordStats
	s.add(lazybam.Decoded{Sequence: "ACGT"})
	s.add(lazybam.Decoded{Flags: uint16(sam.Unmapped | sam.Duplicate), Sequence: "AC"})
	s.observe(lazybam.BatchStats{Records: 2})
	s.observe(lazybam.BatchStats{Dropped: 1, Err: errTest})

	require.Equal(t, 2, s.Total)
	require.Equal(t, 1, s.Mapped)
	require.Equal(t, 1, s.Unmapped)
	require.Equal(t, 1, s.Duplicate)
	require.Equal(t, 6, s.TotalBases)
	require.Equal(t, 1, s.Batches)
	require.Equal(t, 1, s.DroppedBatches)
	require.Equal(t, 50.0, percent(1, 2))
	require.Equal(t, 0.0, percent(1, 0))
}

var errTest = errors.New("read failed")
