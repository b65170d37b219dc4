/*
Package ruleengine compiles boolean rule strings into syntax trees and
evaluates them against key/value records.

# Overview

A rule is a set of conditions joined by AND and OR, optionally grouped with
parentheses. Each condition compares a record field with a literal:

	age > 30
	department = 'Sales'
	((age > 30 AND department = 'Sales') OR age < 25) AND salary > 50000

AND binds tighter than OR, and operators of the same precedence associate to
the left. There is no negation.

# Basic Usage

Compile once, evaluate many times:

	ast, err := ruleengine.CreateRule("age > 30 AND department = 'Sales'")
	if err != nil {
	    log.Fatal(err)
	}

	ok, err := ruleengine.EvaluateRule(ast, ruleengine.Context{
	    "age":        ruleengine.Number(35),
	    "department": ruleengine.Text("Sales"),
	})
	// ok == true

Several independently written rules can be joined into one conjunction:

	ast, err := ruleengine.CombineRules([]string{
	    "age > 30",
	    "salary > 50000 OR experience > 5",
	})
	// AND(age > 30, salary > 50000 OR experience > 5)

CombineRules returns a nil Node when given no rules.

# Comparison Semantics

Conditions have the shape `key OP value` where OP is one of >, < or =.
Values are words, numbers or single-quoted strings; surrounding quotes are
stripped before comparing.

  - If the field is missing from the context the condition is false.
  - If the field holds a Number and the literal parses as a number, the two
    are compared numerically. Equality is exact.
  - Otherwise the field's string form is compared with the literal in byte
    order.

# Tokenization

The scanner is lenient: whitespace and characters that are not part of the
grammar are skipped rather than reported. `age >= 30` therefore reads as
`age > = 30`, which later fails as a malformed condition.

# Engine

Engine wraps the same pipeline with structured logging, OpenTelemetry
metrics and tracing, and an optional decision audit store:

	eng := ruleengine.New(
	    ruleengine.WithLogger(logger),
	    ruleengine.WithMetrics(true),
	    ruleengine.WithAuditStore(audit.NewMemoryStore()),
	)
	ast, _ := eng.Compile(ctx, rule)
	ok, err := eng.Evaluate(ctx, "eligibility", ast, data)

# Thread Safety

Trees are immutable once built. The same Node may be evaluated from many
goroutines at once against independent contexts.
*/
package ruleengine
