// Package ruleset keeps named, compiled rules and evaluates them together.
//
// A Set is the routing side of the rule engine: load a handful of rules
// once, then ask which of them a record satisfies.
//
//	set := ruleset.New()
//	_ = set.Add("senior_sales", "age > 30 AND department = 'Sales'")
//	_ = set.Add("well_paid", "salary > 50000")
//
//	matched, err := set.Match(ctx, nil, ruleengine.Context{
//	    "age":        ruleengine.Number(35),
//	    "department": ruleengine.Text("Sales"),
//	    "salary":     ruleengine.Number(60000),
//	})
//	// matched == []string{"senior_sales", "well_paid"}
//
// Rules can also be joined into one conjunction with Combined, which folds
// them left to right in the order given.
//
// # Thread Safety
//
// All Set methods are safe for concurrent use. Range iterates over a
// snapshot, so it may call Add or Delete without affecting the iteration.
package ruleset
