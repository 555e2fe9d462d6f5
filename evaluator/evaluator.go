package evaluator

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/titivuk/apl/ast"
	"github.com/titivuk/apl/object"
	"github.com/titivuk/apl/token"
)

// ErrEvaluation is matched by every error raised while walking the tree.
var ErrEvaluation = errors.New("evaluation error")

// UndeclaredVariableError reports a read or reassignment of a name that
// was never declared with var.
type UndeclaredVariableError struct {
	Name string
}

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("undeclared variable '%s'", e.Name)
}

func (e *UndeclaredVariableError) Unwrap() error {
	return ErrEvaluation
}

// ArithmeticError reports an operation with no numeric result.
type ArithmeticError struct {
	Operator string
	Left     object.Value
	Right    object.Value
	Reason   string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s: %s %s %s", e.Reason, e.Left.Inspect(), e.Operator, e.Right.Inspect())
}

func (e *ArithmeticError) Unwrap() error {
	return ErrEvaluation
}

// Evaluator walks a tree and applies it to its store. A Program evaluates to
// object.UNIT, an Assignation to the assigned value, a target to its name
// and an expression to its number.
type Evaluator struct {
	store *object.Store
}

// New returns an evaluator working on store. A nil store gets a fresh one.
func New(store *object.Store) *Evaluator {
	if store == nil {
		store = object.NewStore()
	}

	return &Evaluator{store: store}
}

func (e *Evaluator) Store() *object.Store {
	return e.store
}

func (e *Evaluator) Eval(node ast.Node) (object.Value, error) {
	return ast.Visit[object.Value](e, node)
}

func (e *Evaluator) VisitProgram(p *ast.Program) (object.Value, error) {
	// no rollback: instructions before a failing one stay applied
	for _, ins := range p.Instructions {
		if _, err := e.Eval(ins); err != nil {
			return nil, err
		}
	}

	return object.UNIT, nil
}

func (e *Evaluator) VisitAssignation(a *ast.Assignation) (object.Value, error) {
	target, err := e.Eval(a.Target)
	if err != nil {
		return nil, err
	}

	value, err := e.number(a.Value)
	if err != nil {
		return nil, err
	}

	name := target.(*object.Name).Value

	switch a.Target.(type) {
	case *ast.VarInit:
		e.store.Declare(name, value)
	default:
		if !e.store.Assign(name, value) {
			return nil, &UndeclaredVariableError{Name: name}
		}
	}

	return value, nil
}

func (e *Evaluator) VisitBinaryOperator(b *ast.BinaryOperator) (object.Value, error) {
	left, err := e.number(b.Left)
	if err != nil {
		return nil, err
	}

	right, err := e.number(b.Right)
	if err != nil {
		return nil, err
	}

	return evalInfixExpression(left, b.Operator.Literal, right)
}

func (e *Evaluator) VisitNumber(n *ast.Number) (object.Value, error) {
	lit := n.Token.Literal

	if !strings.Contains(lit, ".") {
		if v, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return &object.Integer{Value: v}, nil
		}
	}

	// written with a decimal point, or too large for an int64
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse %q as a number", ErrEvaluation, lit)
	}

	return &object.Float{Value: v}, nil
}

func (e *Evaluator) VisitVar(v *ast.Var) (object.Value, error) {
	if !e.store.Has(v.Name) {
		return nil, &UndeclaredVariableError{Name: v.Name}
	}

	return &object.Name{Value: v.Name}, nil
}

func (e *Evaluator) VisitVarInit(v *ast.VarInit) (object.Value, error) {
	return &object.Name{Value: v.Name}, nil
}

func (e *Evaluator) VisitVarEval(v *ast.VarEval) (object.Value, error) {
	value, ok := e.store.Get(v.Name)
	if !ok {
		return nil, &UndeclaredVariableError{Name: v.Name}
	}

	return value, nil
}

// number evaluates an expression node, which always yields a number
func (e *Evaluator) number(node ast.Expression) (object.Number, error) {
	v, err := e.Eval(node)
	if err != nil {
		return nil, err
	}

	n, ok := v.(object.Number)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a number", ErrEvaluation, v.Inspect())
	}

	return n, nil
}

func evalInfixExpression(left object.Number, operator string, right object.Number) (object.Number, error) {
	if operator == token.SLASH {
		// true division, 7 / 2 is 3.5 and 6 / 3 is 2.0
		if right.IsZero() {
			return nil, &ArithmeticError{Operator: operator, Left: left, Right: right, Reason: "division by zero"}
		}

		return &object.Float{Value: left.Float64() / right.Float64()}, nil
	}

	l, lok := left.(*object.Integer)
	r, rok := right.(*object.Integer)
	if lok && rok {
		return evalIntegerInfixExpression(l, operator, r)
	}

	return evalFloatInfixExpression(left.Float64(), operator, right.Float64())
}

func evalIntegerInfixExpression(left *object.Integer, operator string, right *object.Integer) (object.Number, error) {
	a, b := left.Value, right.Value

	var result int64
	var overflow bool

	switch operator {
	case token.PLUS:
		result = a + b
		overflow = (a >= 0) == (b >= 0) && (result >= 0) != (a >= 0)
	case token.MINUS:
		result = a - b
		overflow = (a >= 0) != (b >= 0) && (result >= 0) != (a >= 0)
	case token.ASTERISK:
		result, overflow = mulInt64(a, b)
	default:
		return nil, fmt.Errorf("%w: unknown operator: %s", ErrEvaluation, operator)
	}

	// past int64 the result is a Float, like a literal too large for int64
	if overflow {
		return evalFloatInfixExpression(left.Float64(), operator, right.Float64())
	}

	return &object.Integer{Value: result}, nil
}

func evalFloatInfixExpression(a float64, operator string, b float64) (object.Number, error) {
	switch operator {
	case token.PLUS:
		return &object.Float{Value: a + b}, nil
	case token.MINUS:
		return &object.Float{Value: a - b}, nil
	case token.ASTERISK:
		return &object.Float{Value: a * b}, nil
	default:
		return nil, fmt.Errorf("%w: unknown operator: %s", ErrEvaluation, operator)
	}
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, true
	}

	hi, lo := bits.Mul64(uint64(abs(a)), uint64(abs(b)))
	if hi != 0 || lo > math.MaxInt64 {
		// MinInt64 itself is the one product that fits without a positive twin
		if hi == 0 && lo == 1<<63 && (a < 0) != (b < 0) {
			return math.MinInt64, false
		}
		return 0, true
	}

	result := int64(lo)
	if (a < 0) != (b < 0) {
		result = -result
	}

	return result, false
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
