// Package claims provides the typed view of credential attribute values.
//
// JSON attribute values are resolved once, when a verified credential is
// projected, into a Value tagged union. Predicate evaluation and cross-credential
// matching pattern-match on the Kind instead of re-inspecting dynamic types.
//
// Domain Purity: no I/O, no clock, no randomness. Object members are kept in
// sorted key order so every walk over a Value is deterministic.
package claims

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	// KindInt holds a non-negative integer representable in 32 bits.
	KindInt
	// KindNumber holds any other JSON number, kept as its literal text.
	KindNumber
	KindText
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// IsNested reports whether the kind carries child values.
func (k Kind) IsNested() bool {
	return k == KindList || k == KindObject
}

// Field is a named member of an object Value.
type Field struct {
	Name  string
	Value Value
}

// Value is an immutable JSON value resolved into a closed set of kinds.
// The zero Value is null.
type Value struct {
	kind   Kind
	flag   bool
	n      uint32
	text   string
	list   []Value
	fields []Field
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Int returns an unsigned 32-bit integer value.
func Int(n uint32) Value { return Value{kind: KindInt, n: n} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a numeric value from its JSON literal. Literals that denote
// a non-negative integer within 32 bits resolve to KindInt.
func Number(literal string) Value {
	if n, err := strconv.ParseUint(literal, 10, 32); err == nil {
		return Int(uint32(n))
	}
	return Value{kind: KindNumber, text: literal}
}

// List returns a list value holding copies of items.
func List(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindList, list: out}
}

// Object returns an object value. Members are sorted by name; a repeated
// name keeps the last value supplied.
func Object(members map[string]Value) Value {
	fields := make([]Field, 0, len(members))
	for name, v := range members {
		fields = append(fields, Field{Name: name, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return Value{kind: KindObject, fields: fields}
}

// FromJSON resolves a decoded JSON value (as produced by encoding/json into
// an interface{}) into a Value. Numbers may arrive as json.Number or float64.
func FromJSON(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case string:
		return Text(v), nil
	case json.Number:
		return Number(v.String()), nil
	case float64:
		return fromFloat(v), nil
	case []any:
		items := make([]Value, 0, len(v))
		for i, item := range v {
			resolved, err := FromJSON(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, resolved)
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		members := make(map[string]Value, len(v))
		for name, item := range v {
			resolved, err := FromJSON(item)
			if err != nil {
				return Value{}, fmt.Errorf("member %q: %w", name, err)
			}
			members[name] = resolved
		}
		return Object(members), nil
	default:
		return Value{}, fmt.Errorf("unsupported json type %T", raw)
	}
}

func fromFloat(f float64) Value {
	if f >= 0 && f <= math.MaxUint32 && f == math.Trunc(f) {
		return Int(uint32(f))
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return Value{kind: KindNumber, text: strconv.FormatInt(int64(f), 10)}
	}
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

func isIntegerLiteral(literal string) bool {
	return !strings.ContainsAny(literal, ".eE")
}

func numbersEqual(a, b string) bool {
	if a == b {
		return true
	}
	aInt, bInt := isIntegerLiteral(a), isIntegerLiteral(b)
	if aInt != bInt {
		return false
	}
	if aInt {
		x, errA := strconv.ParseInt(a, 10, 64)
		y, errB := strconv.ParseInt(b, 10, 64)
		if errA == nil && errB == nil {
			return x == y
		}
		u, errA := strconv.ParseUint(a, 10, 64)
		w, errB := strconv.ParseUint(b, 10, 64)
		return errA == nil && errB == nil && u == w
	}
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	return errA == nil && errB == nil && x == y
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the integer held by v when v is KindInt.
func (v Value) AsInt() (uint32, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.n, true
}

// AsText returns the string held by v when v is KindText.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// AsBool returns the boolean held by v when v is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.flag, true
}

// Literal returns the JSON literal of a KindNumber value.
func (v Value) Literal() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.text, true
}

// Len returns the number of items of a list or members of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindObject:
		return len(v.fields)
	default:
		return 0
	}
}

// Items returns a copy of the items of a list value.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// Fields returns a copy of the members of an object value in name order.
func (v Value) Fields() []Field {
	if v.kind != KindObject {
		return nil
	}
	out := make([]Field, len(v.fields))
	copy(out, v.fields)
	return out
}

// Lookup returns the named member of an object value.
func (v Value) Lookup(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	i := sort.Search(len(v.fields), func(i int) bool { return v.fields[i].Name >= name })
	if i < len(v.fields) && v.fields[i].Name == name {
		return v.fields[i].Value, true
	}
	return Value{}, false
}

// Equal reports deep equality. Values of different kinds are never equal, so
// the integer 5 and the number literal 5.0 differ. Number literals compare as
// JSON numbers: integer literals by integer value, fractional or exponent
// literals by their float64 value, and never one against the other.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.flag == other.flag
	case KindInt:
		return v.n == other.n
	case KindNumber:
		return numbersEqual(v.text, other.text)
	case KindText:
		return v.text == other.text
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Name != other.fields[i].Name || !v.fields[i].Value.Equal(other.fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
