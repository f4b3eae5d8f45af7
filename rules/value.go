package rules

import (
	"strconv"
	"strings"
)

// Kind tags a resolved Value.
type Kind uint8

const (
	// Unresolved marks a reference that could not be looked up. It never
	// compares equal to anything, itself included.
	Unresolved Kind = iota
	Number
	Text
)

// Value is the result of resolving an operand against a context.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

func NumberValue(f float64) Value { return Value{Kind: Number, Num: f} }
func TextValue(s string) Value    { return Value{Kind: Text, Str: s} }

func (v Value) Resolved() bool { return v.Kind != Unresolved }

// Equal is strict: kinds must match and both sides must be resolved.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		return v.Num == o.Num
	case Text:
		return v.Str == o.Str
	}
	return false
}

// Float coerces v to a number. Text is accepted when it parses as a number.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case Number:
		return v.Num, true
	case Text:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Any converts v to a plain Go value: float64, string, or nil.
func (v Value) Any() any {
	switch v.Kind {
	case Number:
		return v.Num
	case Text:
		return v.Str
	}
	return nil
}

func (v Value) String() string {
	switch v.Kind {
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Text:
		return strconv.Quote(v.Str)
	}
	return "<unresolved>"
}

// valueOf wraps a decoded JSON scalar or an agent attribute.
func valueOf(x any) Value {
	switch t := x.(type) {
	case float64:
		return NumberValue(t)
	case int:
		return NumberValue(float64(t))
	case string:
		return TextValue(t)
	}
	return Value{}
}
