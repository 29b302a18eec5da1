// Package lazybam reads BAM alignment records in batches, decodes their
// fields on demand and rebuilds records with field overrides.
package lazybam

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"
)

// MappingQualityUnavailable is the mapping quality that marks the value
// as not available.
const MappingQualityUnavailable = 255

// maxPos is the largest valid 0-based BAM position.
const maxPos = 1<<31 - 2

var (
	errNegativePosition = errors.New("negative position")
	errPositionRange    = errors.New("position out of range")
	errUnknownReference = errors.New("reference not in header")
)

// Record is a read-only view over one decoded alignment record. Every
// accessor recomputes its value from the backing record, which is never
// modified. A Record is owned by a single consumer; the optional Override
// attached to it is not safe for concurrent use.
type Record struct {
	rec      *sam.Record
	override *Override
}

// NewRecord wraps rec. rec must not be modified afterwards.
func NewRecord(rec *sam.Record) *Record {
	return &Record{rec: rec}
}

// Raw returns the backing record. Callers must treat it as read-only.
func (r *Record) Raw() *sam.Record { return r.rec }

// Name returns the read name, or "" when the record has none.
func (r *Record) Name() string {
	if r.rec.Name == "*" {
		return ""
	}
	return r.rec.Name
}

// Flags returns the SAM flag bits.
func (r *Record) Flags() uint16 { return uint16(r.rec.Flags) }

// Position returns the 1-based alignment start, or -1 when the record is
// unplaced. A position that is present but outside the valid range is
// reported as a *DecodeError rather than defaulted.
func (r *Record) Position() (int64, error) {
	pos := r.rec.Pos
	switch {
	case pos == -1:
		return -1, nil
	case pos < -1:
		return 0, &DecodeError{Field: "position", Err: fmt.Errorf("%w: %d", errNegativePosition, pos)}
	case pos > maxPos:
		return 0, &DecodeError{Field: "position", Err: fmt.Errorf("%w: %d", errPositionRange, pos)}
	}
	return int64(pos) + 1, nil
}

// ReferenceID returns the reference sequence id. ok is false when the
// record has no reference. A reference that is not part of the header is
// reported as a *DecodeError.
func (r *Record) ReferenceID() (id int, ok bool, err error) {
	if r.rec.Ref == nil {
		return 0, false, nil
	}
	id = r.rec.Ref.ID()
	if id < 0 {
		return 0, true, &DecodeError{Field: "reference sequence id", Err: fmt.Errorf("%w: %s", errUnknownReference, r.rec.Ref.Name())}
	}
	return id, true, nil
}

// MappingQuality returns the mapping quality, 255 when unavailable.
func (r *Record) MappingQuality() uint8 { return r.rec.MapQ }

// Length returns the absolute template length.
func (r *Record) Length() uint64 {
	if r.rec.TempLen < 0 {
		return uint64(-int64(r.rec.TempLen))
	}
	return uint64(r.rec.TempLen)
}

// Sequence returns the read bases, one character per base.
func (r *Record) Sequence() string {
	if r.rec.Seq.Length == 0 {
		return ""
	}
	return string(r.rec.Seq.Expand())
}

// QualityScores returns a copy of the per-base quality scores as stored.
// Its length is not checked against the sequence.
func (r *Record) QualityScores() []uint8 {
	return append([]uint8{}, r.rec.Qual...)
}

// Cigar returns the decoded CIGAR. See DecodeCigar for how malformed ops
// are handled.
func (r *Record) Cigar() []CigarOp { return DecodeCigar(r.rec.Cigar) }

// Tags returns the decoded auxiliary fields in record order.
func (r *Record) Tags() *TagSet { return DecodeTags(r.rec.AuxFields) }

// SetOverride attaches ov to r, replacing any override attached before.
// A nil ov detaches.
func (r *Record) SetOverride(ov *Override) { r.override = ov }

// Override returns the attached override, if any.
func (r *Record) Override() *Override { return r.override }

// Rebuild merges r with its attached override. See Rebuild.
func (r *Record) Rebuild() (*RebuiltRecord, error) {
	return Rebuild(r, r.override)
}
