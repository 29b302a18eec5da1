package lazybam

import (
	"runtime"

	"github.com/exascience/pargo/parallel"
)

// Decoded is an eagerly decoded copy of every Record field.
type Decoded struct {
	Name           string
	Flags          uint16
	Position       int64
	PositionErr    error // set instead of Position when it is malformed
	MappingQuality uint8
	Length         uint64
	Sequence       string
	Quality        []uint8
	Cigar          []CigarOp
	Tags           *TagSet
}

// Decode decodes all fields of r.
func (r *Record) Decode() Decoded {
	d := Decoded{
		Name:           r.Name(),
		Flags:          r.Flags(),
		MappingQuality: r.MappingQuality(),
		Length:         r.Length(),
		Sequence:       r.Sequence(),
		Quality:        r.QualityScores(),
		Cigar:          r.Cigar(),
		Tags:           r.Tags(),
	}
	d.Position, d.PositionErr = r.Position()
	return d
}

// DecodeBatch decodes records in parallel using up to workers goroutines
// (GOMAXPROCS when workers < 1). The result is in the same order as records. It
// should be called on batches already returned by NextBatch, so decoding
// never holds the reader's lock.
func DecodeBatch(records []*Record, workers int) []Decoded {
	out := make([]Decoded, len(records))
	if len(records) == 0 {
		return out
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(records) {
		workers = len(records)
	}
	parallel.Range(0, len(records), workers, func(low, high int) {
		for i := low; i < high; i++ {
			out[i] = records[i].Decode()
		}
	})
	return out
}
