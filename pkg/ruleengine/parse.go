package ruleengine

import (
	"fmt"
	"strings"
)

// CreateRule tokenizes and parses a single rule string.
func CreateRule(rule string) (Node, error) {
	return parse(rule, Tokenize(rule))
}

// Parse builds a syntax tree from a token sequence using operator-precedence
// (shunting-yard) parsing.
//
// Consecutive condition tokens (words, comparison symbols and quoted strings)
// form a single Operand whose condition is the token texts joined by one
// space. Parse returns a *MalformedRuleError when the sequence is empty, the
// parentheses do not balance, or an operator lacks an operand.
func Parse(tokens []Token) (Node, error) {
	return parse("", tokens)
}

func parse(rule string, tokens []Token) (Node, error) {
	if len(tokens) == 0 {
		return nil, &MalformedRuleError{Rule: rule, Reason: "empty rule"}
	}

	p := &parser{rule: rule}
	for _, tok := range tokens {
		switch tok.Type {
		case TokenLParen:
			p.flush()
			p.ops = append(p.ops, tok)

		case TokenRParen:
			p.flush()
			if err := p.closeGroup(); err != nil {
				return nil, err
			}

		case TokenAnd, TokenOr:
			p.flush()
			incoming := combinatorOf(tok).precedence()
			for len(p.ops) > 0 && combinatorOf(p.top()).precedence() >= incoming {
				if err := p.reduce(); err != nil {
					return nil, err
				}
			}
			p.ops = append(p.ops, tok)

		default:
			p.pending = append(p.pending, tok.Value)
		}
	}
	p.flush()

	for len(p.ops) > 0 {
		if p.top().Type == TokenLParen {
			return nil, p.malformed("unmatched '('")
		}
		if err := p.reduce(); err != nil {
			return nil, err
		}
	}

	if len(p.operands) != 1 {
		return nil, p.malformed(fmt.Sprintf("expected one expression, found %d", len(p.operands)))
	}
	return p.operands[0], nil
}

// parser holds the two stacks of a single Parse call.
type parser struct {
	rule     string
	operands []Node
	ops      []Token
	pending  []string
}

func (p *parser) top() Token {
	return p.ops[len(p.ops)-1]
}

// flush turns the buffered condition tokens into an Operand.
func (p *parser) flush() {
	if len(p.pending) == 0 {
		return
	}
	p.operands = append(p.operands, Operand{Condition: strings.Join(p.pending, " ")})
	p.pending = p.pending[:0]
}

// closeGroup reduces back to the nearest '(' and discards it.
func (p *parser) closeGroup() error {
	for {
		if len(p.ops) == 0 {
			return p.malformed("unmatched ')'")
		}
		if p.top().Type == TokenLParen {
			p.ops = p.ops[:len(p.ops)-1]
			return nil
		}
		if err := p.reduce(); err != nil {
			return err
		}
	}
}

// reduce pops one operator and two operands and pushes the joined node.
// The right operand is popped first, so the earlier operand becomes Left.
func (p *parser) reduce() error {
	op := p.top()
	p.ops = p.ops[:len(p.ops)-1]

	if len(p.operands) < 2 {
		return p.malformed(fmt.Sprintf("missing operand for %s", op.Value))
	}
	right := p.operands[len(p.operands)-1]
	left := p.operands[len(p.operands)-2]
	p.operands = p.operands[:len(p.operands)-2]

	p.operands = append(p.operands, &Operator{
		Kind:  combinatorOf(op),
		Left:  left,
		Right: right,
	})
	return nil
}

func (p *parser) malformed(reason string) error {
	return &MalformedRuleError{Rule: p.rule, Reason: reason}
}

// combinatorOf returns the combinator for an AND/OR token, or zero for
// anything else (which has precedence 0).
func combinatorOf(tok Token) Combinator {
	switch tok.Type {
	case TokenAnd:
		return And
	case TokenOr:
		return Or
	default:
		return 0
	}
}
