package lazybam

// Override is a sparse set of field replacements applied when a Record is
// rebuilt. Fields left unset keep the record's original value. Tags merge
// into the original tag set by name; the CIGAR, reference id and mapping
// quality replace the original wholesale.
type Override struct {
	tags           *TagSet
	cigar          []CigarOp
	hasCigar       bool
	referenceID    int
	hasReferenceID bool
	mapq           int
	hasMapQ        bool
}

// NewOverride returns an empty override.
func NewOverride() *Override {
	return &Override{tags: &TagSet{}}
}

// SetTag adds or replaces a tag in the override.
func (ov *Override) SetTag(name string, v TagValue) *Override {
	if ov.tags == nil {
		ov.tags = &TagSet{}
	}
	ov.tags.Set(name, v)
	return ov
}

// SetCigar replaces the CIGAR. Pairs with an unknown kind or an invalid
// length are dropped. An empty result still replaces the original CIGAR.
func (ov *Override) SetCigar(pairs []CigarOp) *Override {
	ov.cigar = ValidCigarOps(pairs)
	ov.hasCigar = true
	return ov
}

// SetReferenceID replaces the reference sequence id.
func (ov *Override) SetReferenceID(id int) *Override {
	ov.referenceID = id
	ov.hasReferenceID = true
	return ov
}

// SetMappingQuality replaces the mapping quality. The value is range
// checked when the record is rebuilt.
func (ov *Override) SetMappingQuality(mapq int) *Override {
	ov.mapq = mapq
	ov.hasMapQ = true
	return ov
}

// Tags returns the override tags in insertion order.
func (ov *Override) Tags() *TagSet {
	if ov == nil {
		return nil
	}
	return ov.tags
}

// Cigar returns the replacement CIGAR and whether one is set.
func (ov *Override) Cigar() ([]CigarOp, bool) {
	if ov == nil || !ov.hasCigar {
		return nil, false
	}
	return ov.cigar, true
}

// ReferenceID returns the replacement reference id and whether one is set.
func (ov *Override) ReferenceID() (int, bool) {
	if ov == nil {
		return 0, false
	}
	return ov.referenceID, ov.hasReferenceID
}

// MappingQuality returns the replacement mapping quality and whether one
// is set.
func (ov *Override) MappingQuality() (int, bool) {
	if ov == nil {
		return 0, false
	}
	return ov.mapq, ov.hasMapQ
}
