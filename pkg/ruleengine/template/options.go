package template

// MissingAction specifies how to handle missing parameters.
type MissingAction int

const (
	// MissingKeep keeps the placeholder as-is when the parameter is not found.
	// This is the default behavior.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the placeholder with an empty string.
	MissingEmpty

	// MissingError returns an *UndefinedParamError listing every missing name.
	MissingError
)

// String returns the configuration name of the action.
func (a MissingAction) String() string {
	switch a {
	case MissingEmpty:
		return "empty"
	case MissingError:
		return "error"
	default:
		return "keep"
	}
}

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how missing parameters are handled.
//
// Default: MissingKeep
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) {
		e.missingAction = action
	}
}

// WithQuoting controls whether string values that are not a single word are
// wrapped in single quotes.
//
// Default: true
//
// Example:
//
//	exp := NewExpander(WithQuoting(false))
//	rule, _ := exp.Expand("${cond} AND x = 1", map[string]any{"cond": "age > 30"})
//	// rule: "age > 30 AND x = 1"
func WithQuoting(enabled bool) Option {
	return func(e *Expander) {
		e.quote = enabled
	}
}
