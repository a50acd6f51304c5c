// Package patterns holds the static lexical registries used by validators,
// gates and the generation output guard. Every registry is an ordered list of
// categorised, pre-compiled rules; order is significant because callers take
// the first match.
package patterns

import (
	"regexp"
)

// Category names the class of content a rule detects.
type Category string

// Rule is a single categorised pattern.
type Rule struct {
	Category Category
	Pattern  string
	regex    *regexp.Regexp
}

// Match reports whether the rule matches text.
func (r Rule) Match(text string) bool {
	return r.regex.MatchString(text)
}

// Registry is an ordered, read-only set of rules.
type Registry struct {
	name  string
	rules []Rule
}

// entry is the declaration form used by the tables in this package.
type entry struct {
	category Category
	pattern  string
}

// newRegistry compiles the entries case-insensitively. It panics on a bad
// pattern since the tables are package constants.
func newRegistry(name string, entries []entry) *Registry {
	rules := make([]Rule, 0, len(entries))
	for _, e := range entries {
		rules = append(rules, Rule{
			Category: e.category,
			Pattern:  e.pattern,
			regex:    regexp.MustCompile(`(?i)` + e.pattern),
		})
	}
	return &Registry{name: name, rules: rules}
}

// Name identifies the registry in logs.
func (r *Registry) Name() string {
	return r.name
}

// Rules returns a copy of the rules in declaration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// FirstMatch returns the first rule, in declaration order, that matches text.
func (r *Registry) FirstMatch(text string) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.Match(text) {
			return rule, true
		}
	}
	return Rule{}, false
}

// FirstMatchIn checks categories in the given order and returns the first
// category with any matching rule. Categories not listed are ignored.
func (r *Registry) FirstMatchIn(text string, order ...Category) (Category, bool) {
	for _, cat := range order {
		if r.MatchesCategory(text, cat) {
			return cat, true
		}
	}
	return "", false
}

// MatchesCategory reports whether any rule of the category matches text.
func (r *Registry) MatchesCategory(text string, cat Category) bool {
	for _, rule := range r.rules {
		if rule.Category == cat && rule.Match(text) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether any rule matches text.
func (r *Registry) MatchesAny(text string) bool {
	_, ok := r.FirstMatch(text)
	return ok
}

// Categories lists the distinct categories matched by text, in rule order.
func (r *Registry) Categories(text string) []Category {
	var cats []Category
	seen := make(map[Category]bool)
	for _, rule := range r.rules {
		if seen[rule.Category] {
			continue
		}
		if rule.Match(text) {
			seen[rule.Category] = true
			cats = append(cats, rule.Category)
		}
	}
	return cats
}
