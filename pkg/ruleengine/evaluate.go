package ruleengine

import (
	"regexp"
	"strings"
)

// operandPattern is the shape of a leaf condition: a field name, one
// comparison symbol and a word, number or quoted string.
var operandPattern = regexp.MustCompile(`^(\w+)\s*([<>=])\s*('[^']*'|[\w.]+)$`)

// EvaluateRule walks the tree against ctx and returns the verdict.
//
// Both sides of every operator are evaluated, so an error anywhere in the
// tree is reported even when the other side already decides the result.
// A condition whose field is missing from ctx evaluates to false.
func EvaluateRule(node Node, ctx Context) (bool, error) {
	switch n := node.(type) {
	case Operand:
		return evaluateOperand(n.Condition, ctx)

	case *Operator:
		if n == nil {
			return false, &InvalidNodeError{Node: node}
		}
		left, err := EvaluateRule(n.Left, ctx)
		if err != nil {
			return false, err
		}
		right, err := EvaluateRule(n.Right, ctx)
		if err != nil {
			return false, err
		}
		switch n.Kind {
		case And:
			return left && right, nil
		case Or:
			return left || right, nil
		default:
			return false, &InvalidNodeError{Node: node}
		}

	default:
		return false, &InvalidNodeError{Node: node}
	}
}

// Condition is a parsed leaf: Key Op Value, with quotes already stripped
// from Value.
type Condition struct {
	Key   string
	Op    string
	Value string
}

// ParseCondition splits a leaf condition into its parts, failing with
// *MalformedOperandError when it does not match `key OP value`.
func ParseCondition(condition string) (Condition, error) {
	m := operandPattern.FindStringSubmatch(strings.TrimSpace(condition))
	if m == nil {
		return Condition{}, &MalformedOperandError{Condition: condition}
	}
	return Condition{Key: m[1], Op: m[2], Value: unquote(m[3])}, nil
}

func evaluateOperand(condition string, ctx Context) (bool, error) {
	c, err := ParseCondition(condition)
	if err != nil {
		return false, err
	}
	actual, ok := ctx[c.Key]
	if !ok {
		return false, nil
	}
	return Compare(actual, c.Op, c.Value)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
