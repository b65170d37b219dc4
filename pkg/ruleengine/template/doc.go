/*
Package template substitutes named parameters into rule text.

# Overview

Rules often share thresholds and labels. Instead of repeating literals,
a rule can reference a parameter with ${name} or $name and have it filled
in before compilation:

	params := map[string]any{"min_age": 30, "dept": "Sales"}
	rule, _ := template.Expand("age > ${min_age} AND department = $dept", params)
	// rule: "age > 30 AND department = Sales"

Expansion is a single pass. Text produced by a substitution is never
scanned again, so a parameter value containing "$x" stays literal.

# Values

Numbers are written in their shortest decimal form. Strings made only of
word characters are written as-is; any other string is wrapped in single
quotes so the rule tokenizer keeps it as one literal:

	template.Expand("department = ${dept}", map[string]any{"dept": "Sales Ops"})
	// "department = 'Sales Ops'"

A string that contains a single quote cannot be represented in rule text
and is rejected with ErrUnquotable. Disable quoting with WithQuoting(false)
when parameters hold pre-formatted rule fragments.

# Missing Parameters

By default, missing parameters are kept as-is. Configure with options:

	exp := template.NewExpander(template.WithMissingAction(template.MissingError))
	_, err := exp.Expand("age > ${min_age}", nil)
	// err: "undefined parameter: min_age"

# Thread Safety

Expander is safe for concurrent use after construction.
*/
package template
