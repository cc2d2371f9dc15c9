// Package canonical provides a deterministic JSON encoding for structured
// values. Any two logically equal values produce the same bytes regardless
// of map insertion order, which makes the encoding safe to hash and sign
// across independently implemented nodes.
package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// The set of variants a Value can hold.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{"null", "bool", "number", "string", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// =============================================================================

// Value is a tagged structured value: a mapping, a sequence, or a scalar.
// The zero value is null.
type Value struct {
	kind    Kind
	boolean bool
	number  string
	text    string
	array   []Value
	object  map[string]Value
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Bool constructs a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Int constructs a number value from a signed integer.
func Int(n int64) Value {
	return Value{kind: KindNumber, number: strconv.FormatInt(n, 10)}
}

// Uint constructs a number value from an unsigned integer.
func Uint(n uint64) Value {
	return Value{kind: KindNumber, number: strconv.FormatUint(n, 10)}
}

// Number constructs a number value from a JSON number literal. The literal
// is normalized so equal numbers always encode the same way.
func Number(lit json.Number) (Value, error) {
	n, err := normalizeNumber(string(lit))
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindNumber, number: n}, nil
}

// String constructs a string value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Array constructs a sequence value.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, array: slices.Clone(elems)}
}

// Object constructs a mapping value.
func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, object: maps.Clone(fields)}
}

// Kind returns the variant held by the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Text returns the string held by a string value.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// Field returns the named field of a mapping value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, exists := v.object[key]
	return f, exists
}

// Fields returns a copy of the fields of a mapping value.
func (v Value) Fields() map[string]Value {
	if v.kind != KindObject {
		return nil
	}
	return maps.Clone(v.object)
}

// Elements returns a copy of the elements of a sequence value.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return slices.Clone(v.array)
}

// Without returns a copy of a mapping value with the specified keys removed.
// Values of any other kind are returned unchanged.
func (v Value) Without(keys ...string) Value {
	if v.kind != KindObject {
		return v
	}

	fields := maps.Clone(v.object)
	for _, key := range keys {
		delete(fields, key)
	}
	return Value{kind: KindObject, object: fields}
}

// Equal reports whether two values have the same canonical encoding.
func (v Value) Equal(other Value) bool {
	return bytes.Equal(Encode(v), Encode(other))
}

// String implements the fmt.Stringer interface.
func (v Value) String() string {
	return string(Encode(v))
}

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) {
	return Encode(v), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	*v = parsed
	return nil
}

// =============================================================================

// Parse decodes a single JSON document into a Value. Number literals are
// preserved instead of being forced through float64.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("unexpected data after top-level value")
	}

	return fromRaw(raw)
}

// FromAny converts any JSON-marshalable Go value into a Value.
func FromAny(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case *Value:
		if v == nil {
			return Value{}, nil
		}
		return *v, nil
	}

	data, err := json.Marshal(x)
	if err != nil {
		return Value{}, err
	}

	return Parse(data)
}

// Marshal returns the canonical encoding of any JSON-marshalable Go value.
func Marshal(x any) ([]byte, error) {
	v, err := FromAny(x)
	if err != nil {
		return nil, err
	}

	return Encode(v), nil
}

// Encode returns the canonical encoding of the value: object keys in byte
// order, no insignificant whitespace, ASCII-only string escapes.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	v.write(&buf)
	return buf.Bytes()
}

// =============================================================================

func (v Value) write(buf *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")

	case KindBool:
		if v.boolean {
			buf.WriteString("true")
			return
		}
		buf.WriteString("false")

	case KindNumber:
		buf.WriteString(v.number)

	case KindString:
		writeString(buf, v.text)

	case KindArray:
		buf.WriteByte('[')
		for i, elem := range v.array {
			if i > 0 {
				buf.WriteByte(',')
			}
			elem.write(buf)
		}
		buf.WriteByte(']')

	case KindObject:
		buf.WriteByte('{')
		for i, key := range slices.Sorted(maps.Keys(v.object)) {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, key)
			buf.WriteByte(':')
			v.object[key].write(buf)
		}
		buf.WriteByte('}')
	}
}

func fromRaw(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil

	case bool:
		return Bool(v), nil

	case json.Number:
		return Number(v)

	case string:
		return String(v), nil

	case []any:
		elems := make([]Value, len(v))
		for i, e := range v {
			elem, err := fromRaw(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = elem
		}
		return Value{kind: KindArray, array: elems}, nil

	case map[string]any:
		fields := make(map[string]Value, len(v))
		for key, e := range v {
			field, err := fromRaw(e)
			if err != nil {
				return Value{}, err
			}
			fields[key] = field
		}
		return Value{kind: KindObject, object: fields}, nil
	}

	return Value{}, fmt.Errorf("unsupported type %T", raw)
}

const hexDigits = "0123456789abcdef"

// writeString escapes everything outside printable ASCII as \uXXXX, using
// surrogate pairs above the basic multilingual plane.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				buf.WriteByte(byte(r))
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				writeUnicodeEscape(buf, r1)
				writeUnicodeEscape(buf, r2)
			default:
				writeUnicodeEscape(buf, r)
			}
		}
	}

	buf.WriteByte('"')
}

func writeUnicodeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xf])
	buf.WriteByte(hexDigits[(r>>8)&0xf])
	buf.WriteByte(hexDigits[(r>>4)&0xf])
	buf.WriteByte(hexDigits[r&0xf])
}

// normalizeNumber rewrites a JSON number literal into its canonical form.
// Integers become minimal decimals. Floats use the shortest round-trip
// digits, switching to exponent form below 1e-4 and from 1e16 up.
func normalizeNumber(lit string) (string, error) {
	if !strings.ContainsAny(lit, ".eE") {
		var n big.Int
		if _, ok := n.SetString(lit, 10); !ok {
			return "", fmt.Errorf("invalid number literal %q", lit)
		}
		return n.String(), nil
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return "", fmt.Errorf("invalid number literal %q: %w", lit, err)
	}

	return formatFloat(f), nil
}

func formatFloat(f float64) string {
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
