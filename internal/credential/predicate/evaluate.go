package predicate

import (
	"fmt"

	"vcproof/internal/credential/claims"
	"vcproof/internal/credential/vc"
	dErrors "vcproof/pkg/domain-errors"
)

// NotSatisfiedError identifies the first predicate that did not hold. It
// carries the position and field name only, never the attribute value.
type NotSatisfiedError struct {
	Index int
	Field string
}

func (e *NotSatisfiedError) Error() string {
	return fmt.Sprintf("predicate %d on field %q is not satisfied", e.Index, e.Field)
}

// Outcome is the per-predicate result of EvaluateEach.
type Outcome struct {
	Index       int
	Field       string
	Satisfied   bool
	ReturnValue string
}

// Check evaluates a single predicate against a credential view.
//
// Absent attributes, unknown conditions and operand/attribute type
// mismatches all evaluate to false.
func Check(view vc.View, p Predicate) bool {
	attr, ok := view.Attribute(p.Field)
	if !ok {
		return false
	}
	switch {
	case p.Value.IsInt():
		return checkInt(attr, p.Condition, p.Value.n)
	case p.Value.IsText():
		return checkText(attr, p.Condition, p.Value.text)
	default:
		return false
	}
}

func checkInt(attr claims.Value, c Condition, operand uint32) bool {
	n, ok := attr.AsInt()
	if !ok {
		return false
	}
	switch c {
	case LT:
		return n < operand
	case GT:
		return n > operand
	case EQ:
		return n == operand
	case NEQ:
		return n != operand
	default:
		return false
	}
}

func checkText(attr claims.Value, c Condition, operand string) bool {
	s, ok := attr.AsText()
	if !ok {
		return false
	}
	switch c {
	case EQ:
		return s == operand
	case NEQ:
		return s != operand
	default:
		// text has no ordering
		return false
	}
}

// EvaluateEach checks every predicate and reports one outcome per predicate
// in input order. The caller decides what to do with partial results.
func EvaluateEach(view vc.View, ps []Predicate) []Outcome {
	out := make([]Outcome, len(ps))
	for i, p := range ps {
		out[i] = Outcome{
			Index:       i,
			Field:       p.Field,
			Satisfied:   Check(view, p),
			ReturnValue: p.ReturnValue,
		}
	}
	return out
}

// Satisfied returns the return values of the satisfied outcomes in order.
func Satisfied(outcomes []Outcome) []string {
	out := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Satisfied {
			out = append(out, o.ReturnValue)
		}
	}
	return out
}

// Evaluate requires every predicate to hold and returns their return values
// in input order. It stops at the first predicate that does not hold.
//
// Errors: CodePredicateNotSatisfied wrapping a *NotSatisfiedError.
func Evaluate(view vc.View, ps []Predicate) ([]string, error) {
	out := make([]string, 0, len(ps))
	for i, p := range ps {
		if !Check(view, p) {
			cause := &NotSatisfiedError{Index: i, Field: p.Field}
			return nil, dErrors.Wrap(cause, dErrors.CodePredicateNotSatisfied, cause.Error())
		}
		out = append(out, p.ReturnValue)
	}
	return out, nil
}
