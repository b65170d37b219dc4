package ruleengine

import (
	"strconv"
	"strings"
)

// Compare applies op to a context value and a literal taken from a rule.
//
// When actual is a Number and literal parses as a float64 the comparison is
// numeric, with exact equality for "=". Otherwise actual's string form is
// compared with literal byte by byte. Any op other than ">", "<" or "=" fails
// with *InvalidOperatorError.
func Compare(actual Value, op, literal string) (bool, error) {
	if n, ok := actual.Float(); ok {
		if lit, err := strconv.ParseFloat(literal, 64); err == nil {
			return compareNumbers(n, op, lit)
		}
	}
	return compareStrings(actual.String(), op, literal)
}

func compareNumbers(l float64, op string, r float64) (bool, error) {
	switch op {
	case ">":
		return l > r, nil
	case "<":
		return l < r, nil
	case "=":
		return l == r, nil
	default:
		return false, &InvalidOperatorError{Operator: op}
	}
}

func compareStrings(l, op, r string) (bool, error) {
	c := strings.Compare(l, r)
	switch op {
	case ">":
		return c > 0, nil
	case "<":
		return c < 0, nil
	case "=":
		return c == 0, nil
	default:
		return false, &InvalidOperatorError{Operator: op}
	}
}
