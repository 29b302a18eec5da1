package lazybam

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"
)

// Unplaced is the 1-based position of a record without an alignment start.
const Unplaced = 0

// RebuiltRecord is a record assembled from a Record and an optional
// Override. It owns all of its data and shares nothing with the source.
type RebuiltRecord struct {
	Name           string
	Flags          uint16
	ReferenceID    int
	Position       int64 // 1-based, Unplaced when absent
	MappingQuality uint8
	Cigar          []CigarOp
	Sequence       string
	Quality        []uint8
	Tags           *TagSet
}

// Rebuild merges r with ov, which may be nil. It either returns a complete
// record or a *BuildError, never a partial result.
func Rebuild(r *Record, ov *Override) (*RebuiltRecord, error) {
	out := &RebuiltRecord{
		Sequence: r.Sequence(),
		Quality:  r.QualityScores(),
	}

	// Reference id: override, then the original, then 0.
	if id, ok := ov.ReferenceID(); ok {
		if id < 0 {
			return nil, &BuildError{Reason: fmt.Sprintf("invalid reference sequence id %d", id)}
		}
		out.ReferenceID = id
	} else {
		id, _, err := r.ReferenceID()
		if err != nil {
			return nil, &BuildError{Reason: "invalid reference sequence id", Err: err}
		}
		out.ReferenceID = id
	}

	pos, err := r.Position()
	if err != nil {
		return nil, &BuildError{Reason: "invalid alignment start position", Err: err}
	}
	if pos < 0 {
		pos = Unplaced
	}
	out.Position = pos

	// Tags merge by name: last original entry wins, then override entries.
	out.Tags = &TagSet{}
	for _, t := range r.Tags().Tags() {
		out.Tags.Set(t.Name, t.Value)
	}
	for _, t := range ov.Tags().Tags() {
		out.Tags.Set(t.Name, t.Value)
	}

	if ops, ok := ov.Cigar(); ok {
		out.Cigar = append([]CigarOp{}, ops...)
	} else {
		out.Cigar = r.Cigar()
	}

	out.Name = r.Name()
	out.Flags = r.Flags()

	mapq := int(r.MappingQuality())
	if v, ok := ov.MappingQuality(); ok {
		mapq = v
	}
	if mapq < 0 || mapq > MappingQualityUnavailable {
		return nil, &BuildError{Reason: fmt.Sprintf("mapping quality %d out of range", mapq)}
	}
	out.MappingQuality = uint8(mapq)

	if len(out.Cigar) > 0 && len(out.Sequence) > 0 {
		if n := QueryLength(out.Cigar); n != len(out.Sequence) {
			return nil, &BuildError{Reason: fmt.Sprintf("CIGAR consumes %d bases but sequence has %d", n, len(out.Sequence))}
		}
	}
	return out, nil
}

var errRefNotInHeader = errors.New("reference sequence id not in header")

// SAMRecord converts rr into a biogo record for an external serializer
// such as bam.Writer. The reference id must index h unless rr is unplaced,
// in which case an out-of-range id leaves the reference unset.
func (rr *RebuiltRecord) SAMRecord(h *sam.Header) (*sam.Record, error) {
	var ref *sam.Reference
	refs := h.Refs()
	switch {
	case rr.ReferenceID >= 0 && rr.ReferenceID < len(refs):
		ref = refs[rr.ReferenceID]
	case rr.Position != Unplaced:
		return nil, &BuildError{Reason: fmt.Sprintf("reference sequence id %d", rr.ReferenceID), Err: errRefNotInHeader}
	}

	aux := make(sam.AuxFields, 0, rr.Tags.Len())
	for _, t := range rr.Tags.Tags() {
		if !t.Value.IsRepresentable() {
			continue
		}
		a, err := EncodeAux(t.Name, t.Value)
		if err != nil {
			return nil, &BuildError{Reason: "invalid tag", Err: err}
		}
		aux = append(aux, a)
	}

	rec := &sam.Record{
		Name:      rr.Name,
		Ref:       ref,
		Pos:       int(rr.Position) - 1,
		MapQ:      rr.MappingQuality,
		Cigar:     samCigar(rr.Cigar),
		Flags:     sam.Flags(rr.Flags),
		MatePos:   -1,
		Qual:      append([]byte{}, rr.Quality...),
		AuxFields: aux,
	}
	if rr.Sequence != "" {
		rec.Seq = sam.NewSeq([]byte(rr.Sequence))
	}
	return rec, nil
}
