package rules

import (
	"fmt"
	"math"
)

type operandKind uint8

const (
	literalOperand operandKind = iota
	expressionOperand
	referenceOperand
)

// Operand is a compiled condition or action value: a literal, an
// arithmetic expression, or a variable reference. Tolerance is set only by
// the {"value": ..., "tolerance": n} object form.
type Operand struct {
	kind      operandKind
	lit       Value
	expr      *Expression
	ref       Reference
	Tolerance *float64
}

// Literal builds a literal operand.
func Literal(v Value) Operand { return Operand{kind: literalOperand, lit: v} }

// CompileOperand classifies a decoded JSON value. Strings are tried as an
// expression first, then as a reference, and are otherwise literal text.
func CompileOperand(raw any) (Operand, error) {
	switch v := raw.(type) {
	case float64:
		return Literal(NumberValue(v)), nil
	case string:
		return compileString(v), nil
	case map[string]any:
		inner, ok := v["value"]
		if !ok {
			return Operand{}, fmt.Errorf("variable object has no value")
		}
		var op Operand
		switch iv := inner.(type) {
		case float64:
			op = Literal(NumberValue(iv))
		case string:
			op = compileString(iv)
		default:
			return Operand{}, fmt.Errorf("variable value must be a number or string, got %T", inner)
		}
		if tol, ok := v["tolerance"]; ok {
			f, ok := tol.(float64)
			if !ok || f < 0 || math.IsNaN(f) {
				return Operand{}, fmt.Errorf("tolerance must be a non-negative number, got %v", tol)
			}
			op.Tolerance = &f
		}
		return op, nil
	}
	return Operand{}, fmt.Errorf("unsupported value type %T", raw)
}

func compileString(s string) Operand {
	if IsExpression(s) {
		return Operand{kind: expressionOperand, expr: CompileExpression(s)}
	}
	if ref, ok := ParseReference(s); ok {
		return Operand{kind: referenceOperand, ref: ref}
	}
	return Literal(TextValue(s))
}

// IsExpression reports whether the operand is arithmetic.
func (o Operand) IsExpression() bool { return o.kind == expressionOperand }

// IsReference reports whether the operand is a variable reference.
func (o Operand) IsReference() bool { return o.kind == referenceOperand }

// Expression returns the compiled expression, or nil.
func (o Operand) Expression() *Expression { return o.expr }

// Resolve produces the operand's value in ctx. Expressions that fail
// evaluate to 0; references that fail are Unresolved.
func (o Operand) Resolve(ctx Context) Value {
	switch o.kind {
	case expressionOperand:
		f, err := o.expr.Eval(ctx)
		if err != nil {
			ctx.notice("expression evaluated to 0", "error", err)
			return NumberValue(0)
		}
		return NumberValue(f)
	case referenceOperand:
		return ctx.Resolve(o.ref)
	}
	return o.lit
}

// Match compares an actual value with the operand. Tolerance applies only
// when both sides are numbers; the bound is inclusive.
func (o Operand) Match(actual Value, ctx Context) bool {
	expected := o.Resolve(ctx)
	if !actual.Resolved() || !expected.Resolved() {
		return false
	}
	if o.Tolerance != nil && actual.Kind == Number && expected.Kind == Number {
		return math.Abs(actual.Num-expected.Num) <= *o.Tolerance
	}
	return actual.Equal(expected)
}
