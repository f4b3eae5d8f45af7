package rules

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// varToken matches the scope.field tokens that may appear inside arithmetic.
// Hyphenated scopes come first so "up-left.r" is not read as "left.r".
var varToken = regexp.MustCompile(`\b(up-left|up-right|down-left|down-right|ant|cell|up|down|left|right)\.(r|g|b|x|y)\b`)

// exprResidue is what may remain once variable tokens are taken out.
var exprResidue = regexp.MustCompile(`^[0-9.+\-*/%()\s]*$`)

// numLiteral matches numeric literals once variable tokens are rewritten;
// the rewritten identifiers carry no digits.
var numLiteral = regexp.MustCompile(`[0-9]+(\.[0-9]*)?|\.[0-9]+`)

var errDivideByZero = errors.New("division by zero")

// fmodOptions route % to math.Mod, since every operand is float64.
var fmodOptions = []expr.Option{
	expr.Function("fmod", func(params ...any) (any, error) {
		return math.Mod(params[0].(float64), params[1].(float64)), nil
	}, new(func(float64, float64) float64)),
	expr.Operator("%", "fmod"),
}

// IsExpression reports whether s should be evaluated as arithmetic: it has
// an operator and either a variable token or a digit.
func IsExpression(s string) bool {
	if !strings.ContainsAny(s, "+-*/%") {
		return false
	}
	return varToken.MatchString(s) || strings.ContainsAny(s, "0123456789")
}

type exprVar struct {
	ident string
	ref   Reference
}

// Expression is an arithmetic string compiled once and evaluated per tick.
// An expression that failed to compile evaluates to 0 with its compile error.
type Expression struct {
	src     string
	program *vm.Program
	vars    []exprVar
	err     error
}

// CompileExpression rewrites variable tokens into identifiers bound at
// evaluation time and compiles the rest with expr. The grammar is limited to
// numbers, + - * / %, unary minus and parentheses.
func CompileExpression(src string) *Expression {
	e := &Expression{src: src}

	if strings.Contains(src, "**") || strings.Contains(src, "..") ||
		!exprResidue.MatchString(varToken.ReplaceAllString(src, "")) {
		e.err = fmt.Errorf("expression %q: unsupported syntax", src)
		return e
	}

	env := make(map[string]any)
	rewritten := varToken.ReplaceAllStringFunc(src, func(tok string) string {
		ident := "v_" + strings.NewReplacer("-", "_", ".", "_").Replace(tok)
		if _, seen := env[ident]; !seen {
			ref, _ := ParseReference(tok)
			e.vars = append(e.vars, exprVar{ident: ident, ref: ref})
			env[ident] = 0.0
		}
		return ident
	})
	rewritten = numLiteral.ReplaceAllStringFunc(rewritten, floatLiteral)

	program, err := compileProgram(rewritten, env)
	if err != nil {
		e.err = fmt.Errorf("expression %q: %w", src, err)
		return e
	}
	e.program = program
	return e
}

func (e *Expression) String() string { return e.src }

// Err is the compile error, if any.
func (e *Expression) Err() error { return e.err }

// Eval binds the referenced variables and runs the program. Any failure,
// including a non-numeric variable or a division by zero, is returned as an
// error; callers treat the value as 0.
func (e *Expression) Eval(ctx Context) (float64, error) {
	if e.err != nil {
		return 0, e.err
	}

	env := make(map[string]any, len(e.vars))
	for _, v := range e.vars {
		val := ctx.Resolve(v.ref)
		if val.Kind != Number {
			return 0, fmt.Errorf("expression %q: %s is not numeric", e.src, v.ref)
		}
		env[v.ident] = val.Num
	}

	out, err := runProgram(e.program, env)
	if err != nil {
		return 0, fmt.Errorf("expression %q: %w", e.src, err)
	}
	f, ok := toFloat(out)
	if !ok {
		return 0, fmt.Errorf("expression %q: result %v is not a number", e.src, out)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("expression %q: %w", e.src, errDivideByZero)
	}
	return f, nil
}

func compileProgram(src string, env map[string]any) (program *vm.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compile: %v", r)
		}
	}()
	opts := append([]expr.Option{expr.Env(env), expr.Optimize(false)}, fmodOptions...)
	return expr.Compile(src, opts...)
}

// runProgram recovers runtime panics such as integer modulo by zero.
func runProgram(program *vm.Program, env map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run: %v", r)
		}
	}()
	return expr.Run(program, env)
}

// floatLiteral writes a literal so expr types it as float64. All arithmetic
// runs in double precision.
func floatLiteral(lit string) string {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
