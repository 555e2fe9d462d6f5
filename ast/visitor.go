package ast

import (
	"fmt"

	"github.com/segmentio/fasthash/fnv1a"
)

// Visitor handles every node variant. Adding a variant to the package means
// adding a method here, so every traversal has to deal with it.
type Visitor[T any] interface {
	VisitProgram(*Program) (T, error)
	VisitAssignation(*Assignation) (T, error)
	VisitBinaryOperator(*BinaryOperator) (T, error)
	VisitNumber(*Number) (T, error)
	VisitVar(*Var) (T, error)
	VisitVarInit(*VarInit) (T, error)
	VisitVarEval(*VarEval) (T, error)
}

// UnhandledNodeError is returned by Visit for a node it cannot dispatch.
type UnhandledNodeError struct {
	Node Node
}

func (e *UnhandledNodeError) Error() string {
	return fmt.Sprintf("no handler for variant %T", e.Node)
}

// Visit calls the method of v that matches the variant of n.
func Visit[T any](v Visitor[T], n Node) (T, error) {
	switch n := n.(type) {
	case *Program:
		return v.VisitProgram(n)
	case *Assignation:
		return v.VisitAssignation(n)
	case *BinaryOperator:
		return v.VisitBinaryOperator(n)
	case *Number:
		return v.VisitNumber(n)
	case *Var:
		return v.VisitVar(n)
	case *VarInit:
		return v.VisitVarInit(n)
	case *VarEval:
		return v.VisitVarEval(n)
	}

	var zero T
	return zero, &UnhandledNodeError{Node: n}
}

// Fingerprint hashes the debug string of n. Structurally identical trees
// have the same fingerprint.
func Fingerprint(n Node) uint64 {
	if n == nil {
		return fnv1a.HashString64("")
	}

	return fnv1a.HashString64(n.String())
}
