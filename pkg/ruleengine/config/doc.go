/*
Package config loads rules files for the rule engine.

# Overview

A rules file names the rules to compile, the parameters substituted into
them, sample records to evaluate, and how the engine should log, measure
and audit its work. YAML and JSON are both accepted:

	params:
	  min_age: 30
	rules:
	  - name: senior_sales
	    rule: "age > ${min_age} AND department = 'Sales'"
	  - name: experienced
	    rule: "experience > 5 OR salary > 100000"
	combine: [senior_sales, experienced]
	contexts:
	  alice: {age: 35, department: Sales, salary: 60000, experience: 3}
	audit:
	  driver: sqlite
	  path: ./decisions.db
	logging:
	  level: debug
	  format: json
	metrics:
	  enabled: true

# Loading

	f, err := config.FromFile("rules.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	if err := f.Validate(); err != nil {
	    log.Fatal(err)
	}

Unknown keys are rejected so that typos surface at load time.

# Parameters

ExpandedRules substitutes params into every rule with
template.MissingError, so a rule that references an undefined parameter
fails instead of compiling with a literal "${name}" in it.

# Defaults

Accessors fill in defaults for omitted settings: LogLevel is info,
LogFormat is text and AuditDriver is none.
*/
package config
