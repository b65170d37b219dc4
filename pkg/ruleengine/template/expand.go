package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// paramPattern matches ${name} or $name. The bare form is greedy, so $port
// never matches inside $portNumber.
var paramPattern = regexp.MustCompile(`\$\{([A-Za-z_]\w*)\}|\$([A-Za-z_]\w*)`)

var wordPattern = regexp.MustCompile(`^\w+$`)

// keywords are words the rule grammar reads as combinators.
var keywords = []string{"AND", "OR"}

var (
	// ErrUndefinedParam is the sentinel wrapped by *UndefinedParamError.
	ErrUndefinedParam = errors.New("undefined parameter")

	// ErrUnquotable indicates a string value containing a single quote,
	// which rule text has no way to escape.
	ErrUnquotable = errors.New("value cannot be quoted")
)

// UndefinedParamError is returned when MissingError is set and one or more
// parameters are not found. Names are listed in order of first appearance.
type UndefinedParamError struct {
	Names []string
}

// Error implements the error interface.
func (e *UndefinedParamError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined parameter: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined parameters: %s", strings.Join(e.Names, ", "))
}

// Unwrap returns ErrUndefinedParam.
func (e *UndefinedParamError) Unwrap() error {
	return ErrUndefinedParam
}

// Expander substitutes parameters into rule text.
type Expander struct {
	missingAction MissingAction
	quote         bool
}

// NewExpander creates an Expander.
//
// Default configuration:
//   - MissingAction: MissingKeep
//   - Quoting: enabled
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingKeep,
		quote:         true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand substitutes params into rule.
func (e *Expander) Expand(rule string, params map[string]any) (string, error) {
	matches := paramPattern.FindAllStringSubmatchIndex(rule, -1)
	if len(matches) == 0 {
		return rule, nil
	}

	var (
		b       strings.Builder
		missing []string
		last    int
	)
	for _, m := range matches {
		b.WriteString(rule[last:m[0]])
		last = m[1]

		name := submatch(rule, m)
		val, ok := params[name]
		if !ok {
			switch e.missingAction {
			case MissingEmpty:
			case MissingError:
				if !slices.Contains(missing, name) {
					missing = append(missing, name)
				}
				b.WriteString(rule[m[0]:m[1]])
			default:
				b.WriteString(rule[m[0]:m[1]])
			}
			continue
		}

		text, err := e.format(val)
		if err != nil {
			return "", fmt.Errorf("parameter %s: %w", name, err)
		}
		b.WriteString(text)
	}
	b.WriteString(rule[last:])

	if len(missing) > 0 {
		return b.String(), &UndefinedParamError{Names: missing}
	}
	return b.String(), nil
}

// MustExpand is like Expand but panics on error.
func (e *Expander) MustExpand(rule string, params map[string]any) string {
	out, err := e.Expand(rule, params)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return out
}

// ExpandAll expands every rule, stopping at the first error.
func (e *Expander) ExpandAll(rules []string, params map[string]any) ([]string, error) {
	if rules == nil {
		return nil, nil
	}
	out := make([]string, len(rules))
	for i, rule := range rules {
		expanded, err := e.Expand(rule, params)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out[i] = expanded
	}
	return out, nil
}

// ExpandNamed expands every value of a name-to-rule map.
func (e *Expander) ExpandNamed(rules map[string]string, params map[string]any) (map[string]string, error) {
	if rules == nil {
		return nil, nil
	}
	out := make(map[string]string, len(rules))
	for name, rule := range rules {
		expanded, err := e.Expand(rule, params)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		out[name] = expanded
	}
	return out, nil
}

// format renders a parameter value as rule text.
func (e *Expander) format(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return e.formatText(val)
	case bool:
		return strconv.FormatBool(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return "", err
		}
		return formatNumber(f), nil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return "", err
		}
		return formatNumber(f), nil
	default:
		s, err := cast.ToStringE(val)
		if err != nil {
			return "", err
		}
		return e.formatText(s)
	}
}

// formatNumber writes negative numbers as quoted literals; the tokenizer
// has no minus sign and a quoted numeric literal still compares numerically.
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f < 0 {
		return "'" + s + "'"
	}
	return s
}

func (e *Expander) formatText(s string) (string, error) {
	if !e.quote {
		return s, nil
	}
	if wordPattern.MatchString(s) && !slices.Contains(keywords, s) {
		return s, nil
	}
	if strings.ContainsRune(s, '\'') {
		return "", ErrUnquotable
	}
	return "'" + s + "'", nil
}

func submatch(s string, m []int) string {
	if m[2] >= 0 {
		return s[m[2]:m[3]]
	}
	return s[m[4]:m[5]]
}

var defaultExpander = NewExpander()

// Expand substitutes params into rule using the default expander. Missing
// parameters are kept as-is.
func Expand(rule string, params map[string]any) (string, error) {
	return defaultExpander.Expand(rule, params)
}
