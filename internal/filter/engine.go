// Package filter implements keyword matching over sweepstakes entries.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"sweep_radar/internal/model"
)

// regexPrefix marks a rule value as a regular expression.
const regexPrefix = "re:"

// Match checks whether an entry passes the given set of filters.
// If no filters are provided, the entry always passes.
// Include filters use OR logic (at least one must match).
// Exclude filters use AND logic (none must match).
func Match(e model.Entry, filters []model.Filter) bool {
	if len(filters) == 0 {
		return true
	}

	hasIncludes := false
	anyIncludeMatched := false

	for _, f := range filters {
		switch f.Kind {
		case model.FilterInclude, model.FilterIncludeRe:
			hasIncludes = true
			if matchesFilter(e, f) {
				anyIncludeMatched = true
			}
		case model.FilterExclude, model.FilterExcludeRe:
			if matchesFilter(e, f) {
				return false
			}
		}
	}

	return !hasIncludes || anyIncludeMatched
}

func matchesFilter(e model.Entry, f model.Filter) bool {
	text := textForScope(e, f.Scope)
	switch f.Kind {
	case model.FilterInclude, model.FilterExclude:
		return strings.Contains(text, strings.ToLower(f.Value))
	case model.FilterIncludeRe, model.FilterExcludeRe:
		re, err := regexp.Compile("(?i)" + f.Value)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	return false
}

func textForScope(e model.Entry, scope model.FilterScope) string {
	content := e.PrizeSummary + " " + e.Eligibility
	switch scope {
	case model.ScopeTitle:
		return strings.ToLower(e.Title)
	case model.ScopeContent:
		return strings.ToLower(content)
	default:
		return strings.ToLower(e.Title + " " + content)
	}
}

// ParseRules turns include and exclude values into filters. A value may start
// with "title:" or "content:" to narrow where it matches, then "re:" to be
// treated as a regular expression, as in "title:re:^win".
func ParseRules(include, exclude []string) ([]model.Filter, error) {
	var filters []model.Filter
	add := func(values []string, word, re model.FilterKind) error {
		for _, raw := range values {
			raw = strings.TrimSpace(raw)
			scope, v := splitScope(raw)
			if v == "" {
				continue
			}
			if pattern, ok := strings.CutPrefix(v, regexPrefix); ok {
				if err := ValidateRegex(pattern); err != nil {
					return fmt.Errorf("rule %q: %w", raw, err)
				}
				filters = append(filters, model.Filter{Kind: re, Scope: scope, Value: pattern})
				continue
			}
			filters = append(filters, model.Filter{Kind: word, Scope: scope, Value: v})
		}
		return nil
	}
	if err := add(include, model.FilterInclude, model.FilterIncludeRe); err != nil {
		return nil, err
	}
	if err := add(exclude, model.FilterExclude, model.FilterExcludeRe); err != nil {
		return nil, err
	}
	return filters, nil
}

func splitScope(v string) (model.FilterScope, string) {
	for _, scope := range []model.FilterScope{model.ScopeTitle, model.ScopeContent} {
		if rest, ok := strings.CutPrefix(v, string(scope)+":"); ok {
			return scope, strings.TrimSpace(rest)
		}
	}
	return model.ScopeAll, v
}

// ValidateRegex checks whether a pattern is a valid regular expression.
func ValidateRegex(pattern string) error {
	_, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	return nil
}
