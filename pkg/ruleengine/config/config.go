package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/randalmurphal/ruleengine/pkg/ruleengine"
	"github.com/randalmurphal/ruleengine/pkg/ruleengine/template"
)

// Audit drivers.
const (
	AuditNone   = "none"
	AuditMemory = "memory"
	AuditSQLite = "sqlite"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	// ErrInvalidConfig is wrapped by every error returned from Validate.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnknownContext indicates a context name not defined in the file.
	ErrUnknownContext = errors.New("unknown context")
)

// File is a decoded rules file.
type File struct {
	Params   map[string]any            `yaml:"params" json:"params"`
	Rules    []Rule                    `yaml:"rules" json:"rules"`
	Combine  []string                  `yaml:"combine" json:"combine"`
	Contexts map[string]map[string]any `yaml:"contexts" json:"contexts"`
	Audit    Audit                     `yaml:"audit" json:"audit"`
	Logging  Logging                   `yaml:"logging" json:"logging"`
	Metrics  Toggle                    `yaml:"metrics" json:"metrics"`
	Tracing  Toggle                    `yaml:"tracing" json:"tracing"`
}

// Rule is a named rule as written in the file, before parameter expansion.
type Rule struct {
	Name string `yaml:"name" json:"name"`
	Rule string `yaml:"rule" json:"rule"`
}

// Audit selects where evaluation decisions are recorded.
type Audit struct {
	Driver string `yaml:"driver" json:"driver"`
	Path   string `yaml:"path" json:"path"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Toggle is an on/off section.
type Toggle struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Validate checks the file for structural problems and reports all of them
// in a single error wrapping ErrInvalidConfig.
func (f *File) Validate() error {
	var problems []string

	seen := make(map[string]bool, len(f.Rules))
	for i, r := range f.Rules {
		switch {
		case r.Name == "":
			problems = append(problems, fmt.Sprintf("rules[%d]: name is required", i))
		case seen[r.Name]:
			problems = append(problems, fmt.Sprintf("rules[%d]: duplicate name %q", i, r.Name))
		}
		if strings.TrimSpace(r.Rule) == "" {
			problems = append(problems, fmt.Sprintf("rules[%d]: rule is required", i))
		}
		seen[r.Name] = true
	}

	for _, name := range f.Combine {
		if !seen[name] {
			problems = append(problems, fmt.Sprintf("combine: unknown rule %q", name))
		}
	}

	switch f.AuditDriver() {
	case AuditNone, AuditMemory:
	case AuditSQLite:
		if f.Audit.Path == "" {
			problems = append(problems, "audit: path is required for sqlite")
		}
	default:
		problems = append(problems, fmt.Sprintf("audit: unknown driver %q", f.Audit.Driver))
	}

	if _, err := parseLevel(f.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("logging: unknown level %q", f.Logging.Level))
	}
	switch f.LogFormat() {
	case FormatText, FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("logging: unknown format %q", f.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ExpandedRules returns the rules with params substituted. Every parameter a
// rule references must be defined.
func (f *File) ExpandedRules() ([]Rule, error) {
	exp := template.NewExpander(template.WithMissingAction(template.MissingError))

	out := make([]Rule, len(f.Rules))
	for i, r := range f.Rules {
		text, err := exp.Expand(r.Rule, f.Params)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		out[i] = Rule{Name: r.Name, Rule: text}
	}
	return out, nil
}

// Context converts the named sample record into an evaluation context.
func (f *File) Context(name string) (ruleengine.Context, error) {
	data, ok := f.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContext, name)
	}
	ctx, err := ruleengine.ContextFrom(data)
	if err != nil {
		return nil, fmt.Errorf("context %s: %w", name, err)
	}
	return ctx, nil
}

// ContextNames returns the names of all sample records, sorted.
func (f *File) ContextNames() []string {
	names := make([]string, 0, len(f.Contexts))
	for name := range f.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogLevel returns the configured level, or slog.LevelInfo when unset or
// unrecognised.
func (f *File) LogLevel() slog.Level {
	level, err := parseLevel(f.Logging.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// LogFormat returns the configured format, or FormatText when unset.
func (f *File) LogFormat() string {
	if f.Logging.Format == "" {
		return FormatText
	}
	return strings.ToLower(f.Logging.Format)
}

// AuditDriver returns the configured driver, or AuditNone when unset.
func (f *File) AuditDriver() string {
	if f.Audit.Driver == "" {
		return AuditNone
	}
	return strings.ToLower(f.Audit.Driver)
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
