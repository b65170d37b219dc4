package ruleengine

import "fmt"

// CombineRules parses each rule independently and joins the results into a
// single conjunction, folding from the left: [r1, r2, r3] becomes
// AND(AND(r1, r2), r3).
//
// It returns a nil Node and nil error when rules is empty. The first rule
// that fails to parse aborts the combination.
func CombineRules(rules []string) (Node, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	nodes := make([]Node, 0, len(rules))
	for i, rule := range rules {
		n, err := CreateRule(rule)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	return Combine(nodes...), nil
}

// Combine folds already built trees into a left-associative AND chain. Each
// fold allocates a new Operator; the input trees are not modified.
// Combine returns nil when called without nodes.
func Combine(nodes ...Node) Node {
	if len(nodes) == 0 {
		return nil
	}
	result := nodes[0]
	for _, n := range nodes[1:] {
		result = &Operator{Kind: And, Left: result, Right: n}
	}
	return result
}
