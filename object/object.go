package object

import (
	"math"
	"strconv"
	"strings"
)

type ObjectType string

const (
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	NAME_OBJ    = "NAME"
	UNIT_OBJ    = "UNIT"
)

// Value is the result of evaluating a node.
type Value interface {
	Type() ObjectType
	Inspect() string
}

// Number is a Value that can be stored in a variable.
type Number interface {
	Value
	Float64() float64
	IsZero() bool
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Float64() float64 { return float64(i.Value) }
func (i *Integer) IsZero() bool     { return i.Value == 0 }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Float64() float64 { return f.Value }
func (f *Float) IsZero() bool     { return f.Value == 0 }

// Inspect prints positional notation for decimal exponents in [-4, 16) and
// exponent notation outside it, keeping a decimal point on integral values
// so 2.0 does not read as an integer.
func (f *Float) Inspect() string {
	if math.IsInf(f.Value, 0) || math.IsNaN(f.Value) {
		return strconv.FormatFloat(f.Value, 'g', -1, 64)
	}

	e := strconv.FormatFloat(f.Value, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}

	s := strconv.FormatFloat(f.Value, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}

	return s + ".0"
}

// Name is what an assignment target evaluates to.
type Name struct {
	Value string
}

func (n *Name) Type() ObjectType { return NAME_OBJ }
func (n *Name) Inspect() string  { return n.Value }

// Unit is the result of a whole program.
type Unit struct{}

func (u *Unit) Type() ObjectType { return UNIT_OBJ }
func (u *Unit) Inspect() string  { return "None" }

// reuse, there is nothing to distinguish one unit from another
var UNIT = &Unit{}
