package ruleengine

import "strings"

// Combinator is the boolean operator joining two sub-rules.
type Combinator int

const (
	// Or is satisfied when either side is.
	Or Combinator = iota + 1
	// And is satisfied when both sides are.
	And
)

// String returns the keyword for the combinator.
func (c Combinator) String() string {
	switch c {
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return "UNKNOWN"
	}
}

// precedence returns the binding strength of a combinator. Higher binds
// tighter; anything that is not a combinator has precedence 0.
func (c Combinator) precedence() int {
	switch c {
	case And:
		return 2
	case Or:
		return 1
	default:
		return 0
	}
}

// Node is a node of a rule syntax tree: either an Operand leaf or an
// *Operator joining two subtrees.
type Node interface {
	// String renders the subtree as rule text. Operators are fully
	// parenthesised so the output parses back to an equivalent tree.
	String() string

	node()
}

// Operand is a leaf holding an unparsed `key OP value` condition. The
// condition is only interpreted at evaluation time.
type Operand struct {
	Condition string
}

func (Operand) node() {}

// String returns the condition text.
func (o Operand) String() string {
	return o.Condition
}

// Operator joins two subtrees with AND or OR. Both children are always set
// and are owned exclusively by this node.
type Operator struct {
	Kind  Combinator
	Left  Node
	Right Node
}

func (*Operator) node() {}

// String returns the parenthesised rule text of the subtree.
func (o *Operator) String() string {
	if o == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(nodeString(o.Left))
	b.WriteByte(' ')
	b.WriteString(o.Kind.String())
	b.WriteByte(' ')
	b.WriteString(nodeString(o.Right))
	b.WriteByte(')')
	return b.String()
}

func nodeString(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}
