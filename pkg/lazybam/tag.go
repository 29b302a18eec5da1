package lazybam

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// TagKind identifies the variant held by a TagValue. Integer kinds keep the
// width they were stored with so that a value can be written back unchanged.
type TagKind uint8

const (
	TagUnrepresentable TagKind = iota
	TagInt8
	TagUInt8
	TagInt16
	TagUInt16
	TagInt32
	TagUInt32
	TagFloat
	TagCharacter
	TagString
	TagInt8Array
	TagUInt8Array
	TagInt16Array
	TagFloatArray
)

var tagKindNames = []string{
	"unrepresentable",
	"int8",
	"uint8",
	"int16",
	"uint16",
	"int32",
	"uint32",
	"float",
	"character",
	"string",
	"int8[]",
	"uint8[]",
	"int16[]",
	"float[]",
}

func (k TagKind) String() string {
	if int(k) < len(tagKindNames) {
		return tagKindNames[k]
	}
	return fmt.Sprintf("TagKind%d", k)
}

// IsArray reports whether k is one of the array kinds.
func (k TagKind) IsArray() bool {
	return k >= TagInt8Array && k <= TagFloatArray
}

// TagValue is the decoded value of one auxiliary field.
// The zero value is unrepresentable.
type TagValue struct {
	kind TagKind
	num  int64   // integer kinds and TagCharacter
	f    float32 // TagFloat
	s    string  // TagString
	arr  interface{}
}

// Tag is a named TagValue. Name is the two character tag identifier.
type Tag struct {
	Name  string
	Value TagValue
}

// Int8Tag returns a 'c' value.
func Int8Tag(v int8) TagValue { return TagValue{kind: TagInt8, num: int64(v)} }

// UInt8Tag returns a 'C' value.
func UInt8Tag(v uint8) TagValue { return TagValue{kind: TagUInt8, num: int64(v)} }

// Int16Tag returns an 's' value.
func Int16Tag(v int16) TagValue { return TagValue{kind: TagInt16, num: int64(v)} }

// UInt16Tag returns an 'S' value.
func UInt16Tag(v uint16) TagValue { return TagValue{kind: TagUInt16, num: int64(v)} }

// Int32Tag returns an 'i' value.
func Int32Tag(v int32) TagValue { return TagValue{kind: TagInt32, num: int64(v)} }

// UInt32Tag returns an 'I' value.
func UInt32Tag(v uint32) TagValue { return TagValue{kind: TagUInt32, num: int64(v)} }

// FloatTag returns an 'f' value.
func FloatTag(v float32) TagValue { return TagValue{kind: TagFloat, f: v} }

// CharTag returns an 'A' value.
func CharTag(c byte) TagValue { return TagValue{kind: TagCharacter, num: int64(c)} }

// StringTag returns a 'Z' value.
func StringTag(s string) TagValue { return TagValue{kind: TagString, s: s} }

// Int8ArrayTag returns a 'B:c' value holding a copy of v.
func Int8ArrayTag(v []int8) TagValue {
	return TagValue{kind: TagInt8Array, arr: append([]int8{}, v...)}
}

// UInt8ArrayTag returns a 'B:C' value holding a copy of v.
func UInt8ArrayTag(v []uint8) TagValue {
	return TagValue{kind: TagUInt8Array, arr: append([]uint8{}, v...)}
}

// Int16ArrayTag returns a 'B:s' value holding a copy of v.
func Int16ArrayTag(v []int16) TagValue {
	return TagValue{kind: TagInt16Array, arr: append([]int16{}, v...)}
}

// FloatArrayTag returns a 'B:f' value holding a copy of v.
func FloatArrayTag(v []float32) TagValue {
	return TagValue{kind: TagFloatArray, arr: append([]float32{}, v...)}
}

// Kind returns the variant of v.
func (v TagValue) Kind() TagKind { return v.kind }

// IsRepresentable reports whether v holds a decoded value.
func (v TagValue) IsRepresentable() bool { return v.kind != TagUnrepresentable }

// Int returns the value of an integer kind.
func (v TagValue) Int() (int64, bool) {
	if v.kind >= TagInt8 && v.kind <= TagUInt32 {
		return v.num, true
	}
	return 0, false
}

// Float returns the value of a TagFloat widened to 64 bits.
func (v TagValue) Float() (float64, bool) {
	if v.kind != TagFloat {
		return 0, false
	}
	return float64(v.f), true
}

// Text returns the value of a TagCharacter or TagString.
func (v TagValue) Text() (string, bool) {
	switch v.kind {
	case TagCharacter:
		return string(rune(byte(v.num))), true
	case TagString:
		return v.s, true
	}
	return "", false
}

// Len returns the element count of an array kind, and 0 otherwise.
func (v TagValue) Len() int {
	switch a := v.arr.(type) {
	case []int8:
		return len(a)
	case []uint8:
		return len(a)
	case []int16:
		return len(a)
	case []float32:
		return len(a)
	}
	return 0
}

// Interface returns v in its host representation: int32 for signed
// integers, uint32 for unsigned integers, float64 for floats, string for
// characters and strings, the element slice for arrays and nil when v is
// unrepresentable. Slices are shared with v and must not be modified.
func (v TagValue) Interface() interface{} {
	switch v.kind {
	case TagInt8, TagInt16, TagInt32:
		return int32(v.num)
	case TagUInt8, TagUInt16, TagUInt32:
		return uint32(v.num)
	case TagFloat:
		return float64(v.f)
	case TagCharacter, TagString:
		s, _ := v.Text()
		return s
	case TagInt8Array, TagUInt8Array, TagInt16Array, TagFloatArray:
		return v.arr
	}
	return nil
}

// Equal reports whether v and o hold the same kind and value.
func (v TagValue) Equal(o TagValue) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == TagFloat {
		return v.f == o.f || (v.f != v.f && o.f != o.f)
	}
	return reflect.DeepEqual(v.Interface(), o.Interface())
}

// String formats v the way the value part of a SAM optional field reads,
// e.g. "i:42", "Z:text" or "B:s,1,-2".
func (v TagValue) String() string {
	switch v.kind {
	case TagInt8, TagUInt8, TagInt16, TagUInt16, TagInt32, TagUInt32:
		return "i:" + strconv.FormatInt(v.num, 10)
	case TagFloat:
		return "f:" + strconv.FormatFloat(float64(v.f), 'g', -1, 32)
	case TagCharacter:
		s, _ := v.Text()
		return "A:" + s
	case TagString:
		return "Z:" + v.s
	}
	if !v.kind.IsArray() {
		return "?"
	}
	var sb strings.Builder
	sb.WriteString("B:")
	sb.WriteByte(arraySubtype[v.kind])
	switch a := v.arr.(type) {
	case []int8:
		for _, e := range a {
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(int(e)))
		}
	case []uint8:
		for _, e := range a {
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(int(e)))
		}
	case []int16:
		for _, e := range a {
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(int(e)))
		}
	case []float32:
		for _, e := range a {
			sb.WriteByte(',')
			sb.WriteString(strconv.FormatFloat(float64(e), 'g', -1, 32))
		}
	}
	return sb.String()
}

// auxDecoder decodes the payload of one auxiliary field, the bytes that
// follow the two tag bytes and the type byte.
type auxDecoder func(payload []byte) TagValue

var auxDecoders = map[byte]auxDecoder{
	'A': decodeAuxChar,
	'c': decodeAuxFixed(TagInt8, 1),
	'C': decodeAuxFixed(TagUInt8, 1),
	's': decodeAuxFixed(TagInt16, 2),
	'S': decodeAuxFixed(TagUInt16, 2),
	'i': decodeAuxFixed(TagInt32, 4),
	'I': decodeAuxFixed(TagUInt32, 4),
	'f': decodeAuxFloat,
	'Z': decodeAuxText,
	'H': decodeAuxText,
	'B': decodeAuxArray,
}

// DecodeAux maps one raw auxiliary field to its tag name and value.
// It never fails: fields it cannot make sense of decode to an
// unrepresentable value so that the rest of the record stays usable.
func DecodeAux(a sam.Aux) Tag {
	if len(a) < 2 {
		return Tag{Name: strings.ToValidUTF8(string(a), "\uFFFD")}
	}
	name := strings.ToValidUTF8(string(a[:2]), "\uFFFD")
	if len(a) < 3 {
		return Tag{Name: name}
	}
	decode, ok := auxDecoders[a[2]]
	if !ok {
		return Tag{Name: name}
	}
	return Tag{Name: name, Value: decode(a[3:])}
}

func decodeAuxChar(payload []byte) TagValue {
	if len(payload) < 1 {
		return TagValue{}
	}
	return CharTag(payload[0])
}

func decodeAuxFixed(kind TagKind, size int) auxDecoder {
	return func(payload []byte) TagValue {
		if len(payload) < size {
			return TagValue{}
		}
		var n int64
		switch kind {
		case TagInt8:
			n = int64(int8(payload[0]))
		case TagUInt8:
			n = int64(payload[0])
		case TagInt16:
			n = int64(int16(binary.LittleEndian.Uint16(payload)))
		case TagUInt16:
			n = int64(binary.LittleEndian.Uint16(payload))
		case TagInt32:
			n = int64(int32(binary.LittleEndian.Uint32(payload)))
		case TagUInt32:
			n = int64(binary.LittleEndian.Uint32(payload))
		}
		return TagValue{kind: kind, num: n}
	}
}

func decodeAuxFloat(payload []byte) TagValue {
	if len(payload) < 4 {
		return TagValue{}
	}
	return FloatTag(math.Float32frombits(binary.LittleEndian.Uint32(payload)))
}

// decodeAuxText accepts payloads with or without the NUL terminator;
// biogo strips it while parsing, raw BAM bytes carry it.
func decodeAuxText(payload []byte) TagValue {
	for i, b := range payload {
		if b == 0 {
			payload = payload[:i]
			break
		}
	}
	return StringTag(strings.ToValidUTF8(string(payload), "\uFFFD"))
}

var arraySubtype = map[TagKind]byte{
	TagInt8Array:  'c',
	TagUInt8Array: 'C',
	TagInt16Array: 's',
	TagFloatArray: 'f',
}

// decodeAuxArray decodes a 'B' payload: subtype byte, little-endian uint32
// element count, then the elements. Elements missing from a truncated
// payload are dropped rather than zero filled. Subtypes other than c, C, s
// and f are unrepresentable.
func decodeAuxArray(payload []byte) TagValue {
	if len(payload) < 5 {
		return TagValue{}
	}
	subtype := payload[0]
	count := int(binary.LittleEndian.Uint32(payload[1:5]))
	data := payload[5:]
	switch subtype {
	case 'c':
		n := available(count, len(data), 1)
		v := make([]int8, n)
		for i := range v {
			v[i] = int8(data[i])
		}
		return TagValue{kind: TagInt8Array, arr: v}
	case 'C':
		n := available(count, len(data), 1)
		return TagValue{kind: TagUInt8Array, arr: append([]uint8{}, data[:n]...)}
	case 's':
		n := available(count, len(data), 2)
		v := make([]int16, n)
		for i := range v {
			v[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
		}
		return TagValue{kind: TagInt16Array, arr: v}
	case 'f':
		n := available(count, len(data), 4)
		v := make([]float32, n)
		for i := range v {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
		}
		return TagValue{kind: TagFloatArray, arr: v}
	}
	return TagValue{}
}

// available returns how many of count elements of the given size are
// fully present in n bytes.
func available(count, n, size int) int {
	if count < 0 {
		return 0
	}
	if have := n / size; have < count {
		return have
	}
	return count
}

// EncodeAux serializes a tag into the in-memory auxiliary field layout used
// by biogo (string payloads carry no NUL terminator). Integer widths are
// kept as they are; unrepresentable values cannot be encoded.
func EncodeAux(name string, v TagValue) (sam.Aux, error) {
	if len(name) != 2 {
		return nil, fmt.Errorf("invalid tag name %q: must be two characters", name)
	}
	buf := make([]byte, 3, 16)
	buf[0], buf[1] = name[0], name[1]
	switch v.kind {
	case TagInt8:
		buf[2] = 'c'
		buf = append(buf, byte(int8(v.num)))
	case TagUInt8:
		buf[2] = 'C'
		buf = append(buf, byte(v.num))
	case TagInt16:
		buf[2] = 's'
		buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(v.num)))
	case TagUInt16:
		buf[2] = 'S'
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v.num))
	case TagInt32:
		buf[2] = 'i'
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(v.num)))
	case TagUInt32:
		buf[2] = 'I'
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.num))
	case TagFloat:
		buf[2] = 'f'
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v.f))
	case TagCharacter:
		buf[2] = 'A'
		buf = append(buf, byte(v.num))
	case TagString:
		buf[2] = 'Z'
		buf = append(buf, v.s...)
	case TagInt8Array, TagUInt8Array, TagInt16Array, TagFloatArray:
		buf[2] = 'B'
		buf = append(buf, arraySubtype[v.kind])
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Len()))
		switch a := v.arr.(type) {
		case []int8:
			for _, e := range a {
				buf = append(buf, byte(e))
			}
		case []uint8:
			buf = append(buf, a...)
		case []int16:
			for _, e := range a {
				buf = binary.LittleEndian.AppendUint16(buf, uint16(e))
			}
		case []float32:
			for _, e := range a {
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(e))
			}
		}
	default:
		return nil, fmt.Errorf("tag %s: cannot encode an unrepresentable value", name)
	}
	return sam.Aux(buf), nil
}

// ParseTag parses a SAM text optional field such as "NM:i:2", "XS:Z:abc" or
// "ZB:B:s,1,2,3". Integers parse as int32 unless they only fit uint32.
func ParseTag(text string) (Tag, error) {
	parts := strings.SplitN(text, ":", 3)
	if len(parts) != 3 || len(parts[0]) != 2 || len(parts[1]) != 1 {
		return Tag{}, fmt.Errorf("invalid tag %q (expected XX:T:value)", text)
	}
	name, typ, raw := parts[0], parts[1][0], parts[2]
	switch typ {
	case 'A':
		if len(raw) != 1 {
			return Tag{}, fmt.Errorf("invalid character value %q", raw)
		}
		return Tag{Name: name, Value: CharTag(raw[0])}, nil
	case 'i':
		if n, err := strconv.ParseInt(raw, 10, 32); err == nil {
			return Tag{Name: name, Value: Int32Tag(int32(n))}, nil
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return Tag{}, fmt.Errorf("invalid integer value %q: %w", raw, err)
		}
		return Tag{Name: name, Value: UInt32Tag(uint32(n))}, nil
	case 'f':
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return Tag{}, fmt.Errorf("invalid float value %q: %w", raw, err)
		}
		return Tag{Name: name, Value: FloatTag(float32(f))}, nil
	case 'Z', 'H':
		return Tag{Name: name, Value: StringTag(raw)}, nil
	case 'B':
		v, err := parseArray(raw)
		if err != nil {
			return Tag{}, err
		}
		return Tag{Name: name, Value: v}, nil
	}
	return Tag{}, fmt.Errorf("unsupported tag type %q", typ)
}

func parseArray(raw string) (TagValue, error) {
	fields := strings.Split(raw, ",")
	if len(fields[0]) != 1 {
		return TagValue{}, fmt.Errorf("invalid array subtype %q", fields[0])
	}
	elems := fields[1:]
	switch fields[0][0] {
	case 'c':
		v := make([]int8, len(elems))
		for i, e := range elems {
			n, err := strconv.ParseInt(e, 10, 8)
			if err != nil {
				return TagValue{}, fmt.Errorf("invalid int8 element %q: %w", e, err)
			}
			v[i] = int8(n)
		}
		return TagValue{kind: TagInt8Array, arr: v}, nil
	case 'C':
		v := make([]uint8, len(elems))
		for i, e := range elems {
			n, err := strconv.ParseUint(e, 10, 8)
			if err != nil {
				return TagValue{}, fmt.Errorf("invalid uint8 element %q: %w", e, err)
			}
			v[i] = uint8(n)
		}
		return TagValue{kind: TagUInt8Array, arr: v}, nil
	case 's':
		v := make([]int16, len(elems))
		for i, e := range elems {
			n, err := strconv.ParseInt(e, 10, 16)
			if err != nil {
				return TagValue{}, fmt.Errorf("invalid int16 element %q: %w", e, err)
			}
			v[i] = int16(n)
		}
		return TagValue{kind: TagInt16Array, arr: v}, nil
	case 'f':
		v := make([]float32, len(elems))
		for i, e := range elems {
			f, err := strconv.ParseFloat(e, 32)
			if err != nil {
				return TagValue{}, fmt.Errorf("invalid float element %q: %w", e, err)
			}
			v[i] = float32(f)
		}
		return TagValue{kind: TagFloatArray, arr: v}, nil
	}
	return TagValue{}, fmt.Errorf("unsupported array subtype %q", fields[0])
}
