package lazybam

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// CigarKind is a CIGAR operation kind. The ordinal values match the BAM
// encoding and are part of the public contract.
type CigarKind uint8

const (
	CigarMatch CigarKind = iota
	CigarInsertion
	CigarDeletion
	CigarSkip
	CigarSoftClip
	CigarHardClip
	CigarPad
	CigarSequenceMatch
	CigarSequenceMismatch

	numCigarKinds = int(CigarSequenceMismatch) + 1
)

// maxCigarLen is the largest run length a BAM CIGAR op can hold (28 bits).
const maxCigarLen = 1<<28 - 1

const cigarLetters = "MIDNSHP=X"

// Valid reports whether k is one of the nine known kinds.
func (k CigarKind) Valid() bool { return int(k) < numCigarKinds }

func (k CigarKind) String() string {
	if k.Valid() {
		return cigarLetters[k : k+1]
	}
	return fmt.Sprintf("CigarKind(%d)", k)
}

// ConsumesQuery reports whether ops of kind k consume read bases.
func (k CigarKind) ConsumesQuery() bool {
	switch k {
	case CigarMatch, CigarInsertion, CigarSoftClip, CigarSequenceMatch, CigarSequenceMismatch:
		return true
	}
	return false
}

// ConsumesReference reports whether ops of kind k consume reference bases.
func (k CigarKind) ConsumesReference() bool {
	switch k {
	case CigarMatch, CigarDeletion, CigarSkip, CigarSequenceMatch, CigarSequenceMismatch:
		return true
	}
	return false
}

// CigarOp is one run-length encoded alignment operation.
type CigarOp struct {
	Kind CigarKind
	Len  int
}

func (op CigarOp) String() string {
	return strconv.Itoa(op.Len) + op.Kind.String()
}

// DecodeCigar converts a raw CIGAR into one CigarOp per raw op. Ops whose
// type is outside the nine known kinds (such as biogo's 'B') decode as
// (Match, 0) so that the op count is preserved.
func DecodeCigar(raw sam.Cigar) []CigarOp {
	ops := make([]CigarOp, len(raw))
	for i, r := range raw {
		k := CigarKind(r.Type())
		if !k.Valid() || r.Len() < 0 {
			ops[i] = CigarOp{Kind: CigarMatch}
			continue
		}
		ops[i] = CigarOp{Kind: k, Len: r.Len()}
	}
	return ops
}

// ValidCigarOps returns the ops from pairs that have a known kind and a
// length a BAM CIGAR can hold, dropping the rest. The result never aliases
// pairs.
func ValidCigarOps(pairs []CigarOp) []CigarOp {
	ops := make([]CigarOp, 0, len(pairs))
	for _, p := range pairs {
		if !p.Kind.Valid() || p.Len < 0 || p.Len > maxCigarLen {
			continue
		}
		ops = append(ops, p)
	}
	return ops
}

// ParseCigar parses CIGAR text such as "5S20M1I10M". "*" and the empty
// string parse to an empty CIGAR.
func ParseCigar(text string) ([]CigarOp, error) {
	if text == "" || text == "*" {
		return []CigarOp{}, nil
	}
	var ops []CigarOp
	n, digits := 0, 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			digits++
			if n > maxCigarLen {
				return nil, fmt.Errorf("invalid CIGAR %q: run length too large", text)
			}
			continue
		}
		k := strings.IndexByte(cigarLetters, c)
		if k < 0 || digits == 0 {
			return nil, fmt.Errorf("invalid CIGAR %q at offset %d", text, i)
		}
		ops = append(ops, CigarOp{Kind: CigarKind(k), Len: n})
		n, digits = 0, 0
	}
	if digits != 0 {
		return nil, fmt.Errorf("invalid CIGAR %q: missing operation", text)
	}
	return ops, nil
}

// CigarString formats ops as CIGAR text, "*" when empty.
func CigarString(ops []CigarOp) string {
	if len(ops) == 0 {
		return "*"
	}
	var sb strings.Builder
	for _, op := range ops {
		sb.WriteString(op.String())
	}
	return sb.String()
}

// QueryLength returns the number of read bases ops consume.
func QueryLength(ops []CigarOp) int {
	n := 0
	for _, op := range ops {
		if op.Kind.ConsumesQuery() {
			n += op.Len
		}
	}
	return n
}

// ReferenceLength returns the number of reference bases ops span.
func ReferenceLength(ops []CigarOp) int {
	n := 0
	for _, op := range ops {
		if op.Kind.ConsumesReference() {
			n += op.Len
		}
	}
	return n
}

// samCigar converts ops to biogo's packed form.
func samCigar(ops []CigarOp) sam.Cigar {
	if len(ops) == 0 {
		return nil
	}
	c := make(sam.Cigar, len(ops))
	for i, op := range ops {
		c[i] = sam.NewCigarOp(sam.CigarOpType(op.Kind), op.Len)
	}
	return c
}
