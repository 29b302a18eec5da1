package lazybam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1, cfg.BatchSize)
	require.GreaterOrEqual(t, cfg.Workers, 1)

	for _, bad := range []Config{
		{BatchSize: 0, Concurrency: 1, Workers: 1},
		{BatchSize: 1, Concurrency: 0, Workers: 1},
		{BatchSize: 1, Concurrency: 1, Workers: -1},
	} {
		require.Error(t, bad.Validate())
	}
}

func TestErrors(t *testing.T) {
	err := &IOError{Op: "read", Path: "x.bam", Err: errBoom}
	require.Equal(t, "lazybam: read x.bam failed: boom", err.Error())
	require.ErrorIs(t, err, errBoom)

	be := &BuildError{Reason: "bad"}
	require.Equal(t, "lazybam: rebuild failed: bad", be.Error())
	require.False(t, IsDecodeError(be))
	require.True(t, IsBuildError(be))
}
