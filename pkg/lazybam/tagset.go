package lazybam

import "github.com/biogo/hts/sam"

// TagSet is an ordered list of tags. Order follows the source record and
// names are not de-duplicated on decode; Set keeps one entry per name.
type TagSet struct {
	tags []Tag
}

// DecodeTags decodes every auxiliary field of a record, in order.
func DecodeTags(aux sam.AuxFields) *TagSet {
	ts := &TagSet{tags: make([]Tag, 0, len(aux))}
	for _, a := range aux {
		ts.tags = append(ts.tags, DecodeAux(a))
	}
	return ts
}

// NewTagSet returns a TagSet holding tags in the given order.
func NewTagSet(tags ...Tag) *TagSet {
	return &TagSet{tags: append([]Tag(nil), tags...)}
}

// Len returns the number of entries.
func (ts *TagSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.tags)
}

// Tags returns the entries in order. The slice must not be modified.
func (ts *TagSet) Tags() []Tag {
	if ts == nil {
		return nil
	}
	return ts.tags
}

// Names returns the tag names in order.
func (ts *TagSet) Names() []string {
	names := make([]string, 0, ts.Len())
	for _, t := range ts.Tags() {
		names = append(names, t.Name)
	}
	return names
}

// Get returns the value of the last entry named name.
func (ts *TagSet) Get(name string) (TagValue, bool) {
	tags := ts.Tags()
	for i := len(tags) - 1; i >= 0; i-- {
		if tags[i].Name == name {
			return tags[i].Value, true
		}
	}
	return TagValue{}, false
}

// Set inserts a tag, or replaces the value of an existing entry with the
// same name in place. Any further entries with that name are removed.
func (ts *TagSet) Set(name string, v TagValue) {
	found := false
	kept := ts.tags[:0]
	for _, t := range ts.tags {
		if t.Name == name {
			if found {
				continue
			}
			t.Value = v
			found = true
		}
		kept = append(kept, t)
	}
	ts.tags = kept
	if !found {
		ts.tags = append(ts.tags, Tag{Name: name, Value: v})
	}
}

// Clone returns a copy of ts that shares no entry storage with it.
func (ts *TagSet) Clone() *TagSet {
	return NewTagSet(ts.Tags()...)
}

// Map returns the tags keyed by name, last entry winning, with values in
// their host representation.
func (ts *TagSet) Map() map[string]interface{} {
	m := make(map[string]interface{}, ts.Len())
	for _, t := range ts.Tags() {
		m[t.Name] = t.Value.Interface()
	}
	return m
}
