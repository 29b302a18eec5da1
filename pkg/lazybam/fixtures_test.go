package lazybam

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/require"
)

func testHeader(t *testing.T) *sam.Header {
	t.Helper()
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 500, nil, nil)
	require.NoError(t, err)
	h, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)
	return h
}

// testRecord returns a mapped 4 base read on ref at 0-based pos carrying
// NM:C:1 and RG:Z:grp1.
func testRecord(ref *sam.Reference, name string, pos int) *sam.Record {
	return &sam.Record{
		Name:    name,
		Ref:     ref,
		Pos:     pos,
		MapQ:    60,
		Cigar:   sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 4)},
		Flags:   sam.Paired | sam.ProperPair,
		MatePos: -1,
		TempLen: -150,
		Seq:     sam.NewSeq([]byte("ACGT")),
		Qual:    []byte{30, 31, 32, 33},
		AuxFields: sam.AuxFields{
			{'N', 'M', 'C', 1},
			{'R', 'G', 'Z', 'g', 'r', 'p', '1'},
		},
	}
}

func testRecords(h *sam.Header, n int) []*sam.Record {
	recs := make([]*sam.Record, n)
	for i := range recs {
		recs[i] = testRecord(h.Refs()[0], string(rune('a'+i)), i*10)
	}
	return recs
}

var errBoom = errors.New("boom")

// sliceSource serves records from memory and fails with err when the
// record at failAt is requested, if err is set.
type sliceSource struct {
	mu     sync.Mutex
	recs   []*sam.Record
	next   int
	failAt int
	err    error
	closed bool
	hdr    *sam.Header
}

func (s *sliceSource) Read() (*sam.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil && s.next == s.failAt {
		return nil, s.err
	}
	if s.next >= len(s.recs) {
		return nil, io.EOF
	}
	r := s.recs[s.next]
	s.next++
	return r, nil
}

func (s *sliceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// headerSource adds a header to sliceSource.
type headerSource struct {
	*sliceSource
}

func (s headerSource) Header() *sam.Header { return s.hdr }

func batchNames(recs []*Record) []string {
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name()
	}
	return names
}
