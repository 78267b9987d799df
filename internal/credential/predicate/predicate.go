// Package predicate evaluates caller-declared conditions over credential
// attributes.
//
// A predicate compares one credentialSubject member against a typed operand:
//
//	field <condition> value
//
// so {date_of_birth GT Int(19791001)} holds when the credential's
// date_of_birth is numerically greater than 19791001. Only the predicate's
// return value is ever reported; attribute values never leave this package.
//
// A mismatch between the operand type and the attribute type evaluates to
// false rather than an error, so callers cannot probe attribute types.
package predicate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	dErrors "vcproof/pkg/domain-errors"
)

// Condition is the comparison applied between attribute and operand.
type Condition string

const (
	LT  Condition = "LT"
	GT  Condition = "GT"
	EQ  Condition = "EQ"
	NEQ Condition = "NEQ"
)

// ParseCondition maps a wire name onto a Condition.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidPredicate, fmt.Sprintf("unknown condition %q", s))
	}
	return c, nil
}

// IsValid reports whether c is one of the four supported conditions.
func (c Condition) IsValid() bool {
	switch c {
	case LT, GT, EQ, NEQ:
		return true
	default:
		return false
	}
}

// Ordered reports whether c needs an ordering, which only Int operands have.
func (c Condition) Ordered() bool {
	return c == LT || c == GT
}

type operandKind uint8

const (
	operandNone operandKind = iota
	operandInt
	operandText
)

// Operand is the typed right-hand side of a predicate: Int(u32) or Text.
type Operand struct {
	kind operandKind
	n    uint32
	text string
}

// Int returns an integer operand.
func Int(n uint32) Operand { return Operand{kind: operandInt, n: n} }

// Text returns a text operand.
func Text(s string) Operand { return Operand{kind: operandText, text: s} }

// IsInt reports whether o is an Int operand.
func (o Operand) IsInt() bool { return o.kind == operandInt }

// IsText reports whether o is a Text operand.
func (o Operand) IsText() bool { return o.kind == operandText }

func (o Operand) String() string {
	switch o.kind {
	case operandInt:
		return "Int(" + strconv.FormatUint(uint64(o.n), 10) + ")"
	case operandText:
		return "Text(" + strconv.Quote(o.text) + ")"
	default:
		return "None"
	}
}

// MarshalJSON encodes o in the externally tagged form {"Int":n} or
// {"Text":"s"}.
func (o Operand) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case operandInt:
		return json.Marshal(map[string]uint32{"Int": o.n})
	case operandText:
		return json.Marshal(map[string]string{"Text": o.text})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts exactly one of {"Int":n} with n in [0, 2^32-1] or
// {"Text":"s"}.
func (o *Operand) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Operand{}
		return nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("predicate value must be {\"Int\":n} or {\"Text\":s}: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("predicate value must have exactly one of Int or Text, got %d members", len(tagged))
	}

	if raw, ok := tagged["Int"]; ok {
		var decoded any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&decoded); err != nil {
			return fmt.Errorf("predicate Int operand: %w", err)
		}
		num, ok := decoded.(json.Number)
		if !ok {
			return fmt.Errorf("predicate Int operand must be a number")
		}
		n, err := strconv.ParseUint(num.String(), 10, 32)
		if err != nil {
			return fmt.Errorf("predicate Int operand %s is not an unsigned 32-bit integer", num)
		}
		*o = Int(uint32(n))
		return nil
	}
	if raw, ok := tagged["Text"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("predicate Text operand: %w", err)
		}
		*o = Text(s)
		return nil
	}
	return fmt.Errorf("predicate value must be {\"Int\":n} or {\"Text\":s}")
}

// Predicate is one condition over a credentialSubject member together with
// the label reported when it holds.
type Predicate struct {
	Field       string    `json:"field"`
	Condition   Condition `json:"condition"`
	Value       Operand   `json:"value"`
	ReturnValue string    `json:"return_value"`
}

// Validate checks the predicate is well formed. It says nothing about
// whether the predicate holds. Any field name is accepted, the empty one
// included: an absent member makes the predicate false at evaluation.
func (p Predicate) Validate() error {
	if !p.Condition.IsValid() {
		return dErrors.New(dErrors.CodeInvalidPredicate, fmt.Sprintf("unknown condition %q", p.Condition))
	}
	if !p.Value.IsInt() && !p.Value.IsText() {
		return dErrors.New(dErrors.CodeInvalidPredicate, "value must be Int or Text")
	}
	return nil
}

// ValidateAll validates every predicate and reports the first bad index.
func ValidateAll(ps []Predicate) error {
	for i, p := range ps {
		if err := p.Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidPredicate, fmt.Sprintf("predicate %d: %s", i, err.Error()))
		}
	}
	return nil
}
