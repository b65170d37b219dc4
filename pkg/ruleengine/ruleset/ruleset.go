package ruleset

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/randalmurphal/ruleengine/pkg/ruleengine"
)

// ErrEmptyName indicates a rule was added without a name.
var ErrEmptyName = errors.New("rule name is required")

// Rule is a named rule and its compiled tree.
type Rule struct {
	Name   string
	Source string
	AST    ruleengine.Node
}

// Set is a thread-safe collection of compiled rules indexed by name.
type Set struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// New creates an empty Set.
func New() *Set {
	return &Set{rules: make(map[string]Rule)}
}

// Add compiles source and stores it under name, replacing any rule with the
// same name. Nothing is stored if compilation fails.
func (s *Set) Add(name, source string) error {
	if name == "" {
		return ErrEmptyName
	}
	ast, err := ruleengine.CreateRule(source)
	if err != nil {
		return fmt.Errorf("rule %s: %w", name, err)
	}
	return s.Put(Rule{Name: name, Source: source, AST: ast})
}

// Put stores an already compiled rule, replacing any rule with the same name.
func (s *Set) Put(r Rule) error {
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.AST == nil {
		return fmt.Errorf("rule %s: %w", r.Name, &ruleengine.InvalidNodeError{})
	}
	if r.Source == "" {
		r.Source = r.AST.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.Name] = r
	return nil
}

// Get returns the rule stored under name and whether it exists.
func (s *Set) Get(name string) (Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[name]
	return r, ok
}

// MustGet returns the rule stored under name, panicking if not found.
func (s *Set) MustGet(name string) Rule {
	r, ok := s.Get(name)
	if !ok {
		panic(fmt.Sprintf("ruleset: rule %q not found", name))
	}
	return r
}

// Has reports whether a rule is stored under name.
func (s *Set) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Delete removes a rule. Deleting an unknown name is a no-op.
func (s *Set) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, name)
}

// Names returns all rule names in sorted order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.rules))
	for name := range s.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored rules.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Range calls fn for each rule in name order until fn returns false.
// It iterates over a snapshot taken when Range is called.
func (s *Set) Range(fn func(Rule) bool) {
	s.mu.RLock()
	snapshot := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		snapshot = append(snapshot, r)
	}
	s.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Name < snapshot[j].Name
	})
	for _, r := range snapshot {
		if !fn(r) {
			return
		}
	}
}

// Combined joins the named rules into one left-folded AND tree, in the order
// given. It returns a nil Node when called without names and an error
// wrapping ruleengine.ErrRuleNotFound for an unknown name.
func (s *Set) Combined(names ...string) (ruleengine.Node, error) {
	if len(names) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]ruleengine.Node, 0, len(names))
	for _, name := range names {
		r, ok := s.rules[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ruleengine.ErrRuleNotFound, name)
		}
		nodes = append(nodes, r.AST)
	}
	return ruleengine.Combine(nodes...), nil
}

// Evaluate runs the named rule against data. A nil engine evaluates without
// observability.
func (s *Set) Evaluate(ctx context.Context, eng *ruleengine.Engine, name string, data ruleengine.Context) (bool, error) {
	r, ok := s.Get(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ruleengine.ErrRuleNotFound, name)
	}
	if eng == nil {
		eng = ruleengine.New()
	}
	return eng.Evaluate(ctx, name, r.AST, data)
}

// Match evaluates every rule against data and returns the names of those
// that hold, sorted. The first evaluation error aborts the match.
func (s *Set) Match(ctx context.Context, eng *ruleengine.Engine, data ruleengine.Context) ([]string, error) {
	if eng == nil {
		eng = ruleengine.New()
	}

	var (
		matched []string
		evalErr error
	)
	s.Range(func(r Rule) bool {
		ok, err := eng.Evaluate(ctx, r.Name, r.AST, data)
		if err != nil {
			evalErr = fmt.Errorf("rule %s: %w", r.Name, err)
			return false
		}
		if ok {
			matched = append(matched, r.Name)
		}
		return true
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return matched, nil
}
