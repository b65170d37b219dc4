package ruleengine

import (
	"errors"
	"fmt"
)

// Sentinel errors for rule compilation.
var (
	// ErrMalformedRule indicates the rule text could not be parsed into a tree.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrRuleNotFound indicates a named rule is not registered.
	ErrRuleNotFound = errors.New("rule not found")
)

// Sentinel errors for evaluation.
var (
	// ErrInvalidNode indicates the evaluator was handed a node it cannot walk.
	ErrInvalidNode = errors.New("invalid node")

	// ErrMalformedOperand indicates a leaf condition is not of the form key OP value.
	ErrMalformedOperand = errors.New("malformed operand")

	// ErrInvalidOperator indicates a comparison operator outside >, < and =.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrUnsupportedValue indicates a context value that is neither numeric nor textual.
	ErrUnsupportedValue = errors.New("unsupported context value")
)

// MalformedRuleError describes why a rule could not be parsed.
type MalformedRuleError struct {
	// Rule is the source text, when known.
	Rule string
	// Reason is a short description of the structural problem.
	Reason string
}

// Error implements the error interface.
func (e *MalformedRuleError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("malformed rule: %s", e.Reason)
	}
	return fmt.Sprintf("malformed rule %q: %s", e.Rule, e.Reason)
}

// Unwrap returns ErrMalformedRule for errors.Is support.
func (e *MalformedRuleError) Unwrap() error {
	return ErrMalformedRule
}

// InvalidNodeError is returned when evaluation reaches a nil node, a node of
// an unknown type, or an operator with an unknown combinator.
type InvalidNodeError struct {
	Node Node
}

// Error implements the error interface.
func (e *InvalidNodeError) Error() string {
	if e.Node == nil {
		return "invalid node: <nil>"
	}
	return fmt.Sprintf("invalid node: %T", e.Node)
}

// Unwrap returns ErrInvalidNode for errors.Is support.
func (e *InvalidNodeError) Unwrap() error {
	return ErrInvalidNode
}

// MalformedOperandError is returned when a leaf condition does not match
// `key OP value`.
type MalformedOperandError struct {
	Condition string
}

// Error implements the error interface.
func (e *MalformedOperandError) Error() string {
	return fmt.Sprintf("malformed operand: %q", e.Condition)
}

// Unwrap returns ErrMalformedOperand for errors.Is support.
func (e *MalformedOperandError) Unwrap() error {
	return ErrMalformedOperand
}

// InvalidOperatorError is returned when a comparison is asked to apply an
// operator other than >, < or =.
type InvalidOperatorError struct {
	Operator string
}

// Error implements the error interface.
func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid operator: %q", e.Operator)
}

// Unwrap returns ErrInvalidOperator for errors.Is support.
func (e *InvalidOperatorError) Unwrap() error {
	return ErrInvalidOperator
}
