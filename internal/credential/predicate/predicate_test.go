package predicate

import (
	"encoding/json"
	"errors"
	"testing"

	"vcproof/internal/credential/claims"
	"vcproof/internal/credential/vc"
	dErrors "vcproof/pkg/domain-errors"

	"github.com/stretchr/testify/suite"
)

type PredicateSuite struct {
	suite.Suite
	view vc.View
}

func TestPredicateSuite(t *testing.T) {
	suite.Run(t, new(PredicateSuite))
}

func (s *PredicateSuite) SetupTest() {
	s.view = vc.NewView("did:key:zHolder", "did:key:zIssuer", nil, nil, map[string]claims.Value{
		"date_of_birth": claims.Int(19700101),
		"nationality":   claims.Text("NO"),
		"height":        claims.Number("180.5"),
		"verified":      claims.Bool(true),
		"address":       claims.Object(map[string]claims.Value{"country": claims.Text("NO")}),
	})
}

func (s *PredicateSuite) TestCheckInt() {
	cases := []struct {
		name string
		cond Condition
		n    uint32
		want bool
	}{
		{name: "GT smaller operand", cond: GT, n: 19000101, want: true},
		{name: "GT larger operand", cond: GT, n: 19791001, want: false},
		{name: "GT equal operand", cond: GT, n: 19700101, want: false},
		{name: "LT larger operand", cond: LT, n: 19791001, want: true},
		{name: "LT equal operand", cond: LT, n: 19700101, want: false},
		{name: "EQ", cond: EQ, n: 19700101, want: true},
		{name: "EQ differs", cond: EQ, n: 19700102, want: false},
		{name: "NEQ", cond: NEQ, n: 19700102, want: true},
		{name: "NEQ same", cond: NEQ, n: 19700101, want: false},
		{name: "unknown condition", cond: Condition("GTE"), n: 1, want: false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			p := Predicate{Field: "date_of_birth", Condition: tc.cond, Value: Int(tc.n), ReturnValue: "label"}
			s.Equal(tc.want, Check(s.view, p))
		})
	}
}

func (s *PredicateSuite) TestCheckText() {
	cases := []struct {
		name    string
		cond    Condition
		operand string
		want    bool
	}{
		{name: "EQ", cond: EQ, operand: "NO", want: true},
		{name: "EQ is case sensitive", cond: EQ, operand: "no", want: false},
		{name: "NEQ", cond: NEQ, operand: "SE", want: true},
		{name: "NEQ same", cond: NEQ, operand: "NO", want: false},
		{name: "LT has no ordering", cond: LT, operand: "ZZ", want: false},
		{name: "GT has no ordering", cond: GT, operand: "AA", want: false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			p := Predicate{Field: "nationality", Condition: tc.cond, Value: Text(tc.operand)}
			s.Equal(tc.want, Check(s.view, p))
		})
	}
}

func (s *PredicateSuite) TestTypeMismatchIsFalse() {
	for _, n := range []uint32{0, 1, 19791001, 4294967295} {
		for _, cond := range []Condition{LT, GT, EQ, NEQ} {
			s.False(Check(s.view, Predicate{Field: "nationality", Condition: cond, Value: Int(n)}),
				"Int(%d) %s against text", n, cond)
		}
	}
	for _, field := range []string{"date_of_birth", "height", "verified", "address"} {
		for _, cond := range []Condition{EQ, NEQ} {
			s.False(Check(s.view, Predicate{Field: field, Condition: cond, Value: Text("NO")}),
				"Text %s against %s", cond, field)
		}
	}
	s.False(Check(s.view, Predicate{Field: "height", Condition: NEQ, Value: Int(1)}), "non-u32 number never compares")
	s.False(Check(s.view, Predicate{Field: "missing", Condition: NEQ, Value: Int(1)}), "absent field")
	s.False(Check(s.view, Predicate{Field: "date_of_birth", Condition: EQ}), "missing operand")
}

func (s *PredicateSuite) TestEvaluateConjunction() {
	older := Predicate{Field: "date_of_birth", Condition: GT, Value: Int(19000101), ReturnValue: "born after 1900"}
	norwegian := Predicate{Field: "nationality", Condition: EQ, Value: Text("NO"), ReturnValue: "norwegian"}
	swedish := Predicate{Field: "nationality", Condition: EQ, Value: Text("SE"), ReturnValue: "swedish"}
	tooOld := Predicate{Field: "date_of_birth", Condition: LT, Value: Int(19000101), ReturnValue: "born before 1900"}

	s.Run("all hold", func() {
		got, err := Evaluate(s.view, []Predicate{older, norwegian})
		s.Require().NoError(err)
		s.Equal([]string{"born after 1900", "norwegian"}, got)
	})

	s.Run("second fails", func() {
		_, err := Evaluate(s.view, []Predicate{older, swedish})
		s.assertNotSatisfied(err, 1, "nationality")
	})

	s.Run("first fails", func() {
		_, err := Evaluate(s.view, []Predicate{tooOld, norwegian})
		s.assertNotSatisfied(err, 0, "date_of_birth")
	})

	s.Run("first failure wins", func() {
		_, err := Evaluate(s.view, []Predicate{norwegian, tooOld, swedish})
		s.assertNotSatisfied(err, 1, "date_of_birth")
	})

	s.Run("error does not leak the attribute value", func() {
		_, err := Evaluate(s.view, []Predicate{swedish})
		s.Require().Error(err)
		s.NotContains(err.Error(), "NO")
		s.NotContains(err.Error(), "SE")
	})

	s.Run("empty list", func() {
		got, err := Evaluate(s.view, nil)
		s.Require().NoError(err)
		s.Empty(got)
	})
}

func (s *PredicateSuite) assertNotSatisfied(err error, index int, field string) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePredicateNotSatisfied))
	var ns *NotSatisfiedError
	s.Require().True(errors.As(err, &ns))
	s.Equal(index, ns.Index)
	s.Equal(field, ns.Field)
}

func (s *PredicateSuite) TestEvaluateEach() {
	ps := []Predicate{
		{Field: "nationality", Condition: EQ, Value: Text("SE"), ReturnValue: "swedish"},
		{Field: "nationality", Condition: EQ, Value: Text("NO"), ReturnValue: "norwegian"},
		{Field: "missing", Condition: EQ, Value: Int(1), ReturnValue: "never"},
	}

	outcomes := EvaluateEach(s.view, ps)
	s.Equal([]Outcome{
		{Index: 0, Field: "nationality", Satisfied: false, ReturnValue: "swedish"},
		{Index: 1, Field: "nationality", Satisfied: true, ReturnValue: "norwegian"},
		{Index: 2, Field: "missing", Satisfied: false, ReturnValue: "never"},
	}, outcomes)
	s.Equal([]string{"norwegian"}, Satisfied(outcomes))
}

func (s *PredicateSuite) TestValidate() {
	s.NoError(Predicate{Field: "f", Condition: GT, Value: Int(1)}.Validate())
	s.NoError(Predicate{Field: "f", Condition: LT, Value: Text("x")}.Validate(), "ordered text is legal and evaluates false")
	s.NoError(Predicate{Condition: EQ, Value: Int(1)}.Validate(), "the empty member name is a legal key")

	cases := map[string]Predicate{
		"unknown condition": {Field: "f", Condition: "GTE", Value: Int(1)},
		"missing value":     {Field: "f", Condition: EQ},
	}
	for name, p := range cases {
		s.Run(name, func() {
			s.True(dErrors.HasCode(p.Validate(), dErrors.CodeInvalidPredicate))
		})
	}

	err := ValidateAll([]Predicate{{Field: "f", Condition: EQ, Value: Int(1)}, {Field: "f", Condition: "??", Value: Int(1)}})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidPredicate))
	s.Contains(err.Error(), "predicate 1")

	_, err = ParseCondition("NEQ")
	s.NoError(err)
	_, err = ParseCondition("neq")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidPredicate))
}

func (s *PredicateSuite) TestEmptyFieldName() {
	p := Predicate{Field: "", Condition: EQ, Value: Text("anon"), ReturnValue: "has empty key"}

	s.False(Check(s.view, p), "absent member is false")
	_, err := Evaluate(s.view, []Predicate{p})
	var notSatisfied *NotSatisfiedError
	s.Require().ErrorAs(err, &notSatisfied)
	s.Equal(0, notSatisfied.Index)

	withEmptyKey := vc.NewView("did:key:zHolder", "did:key:zIssuer", nil, nil, map[string]claims.Value{
		"": claims.Text("anon"),
	})
	got, err := Evaluate(withEmptyKey, []Predicate{p})
	s.Require().NoError(err)
	s.Equal([]string{"has empty key"}, got)
}

func (s *PredicateSuite) TestJSONWireShape() {
	raw := `[
		{"field":"date_of_birth","condition":"GT","value":{"Int":19791001},"return_value":"older than 40"},
		{"field":"nationality","condition":"EQ","value":{"Text":"NO"},"return_value":"norwegian"}
	]`

	var ps []Predicate
	s.Require().NoError(json.Unmarshal([]byte(raw), &ps))
	s.Equal([]Predicate{
		{Field: "date_of_birth", Condition: GT, Value: Int(19791001), ReturnValue: "older than 40"},
		{Field: "nationality", Condition: EQ, Value: Text("NO"), ReturnValue: "norwegian"},
	}, ps)

	encoded, err := json.Marshal(ps[0])
	s.Require().NoError(err)
	s.JSONEq(`{"field":"date_of_birth","condition":"GT","value":{"Int":19791001},"return_value":"older than 40"}`, string(encoded))

	for name, value := range map[string]string{
		"negative int":   `{"Int":-1}`,
		"int above u32":  `{"Int":4294967296}`,
		"fractional int": `{"Int":1.5}`,
		"int as string":  `{"Int":"1"}`,
		"text as number": `{"Text":1}`,
		"both variants":  `{"Int":1,"Text":"x"}`,
		"unknown tag":    `{"Float":1}`,
		"bare number":    `1`,
	} {
		s.Run(name, func() {
			var o Operand
			s.Error(json.Unmarshal([]byte(value), &o))
		})
	}
}
