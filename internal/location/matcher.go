// Package location decides whether a free-text location query matches a
// listing address. Both inputs are expected to be normalized with textnorm.
package location

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"casaleon/server/config"
	"casaleon/server/internal/textnorm"
)

// Matcher applies a set of location rules. It is safe for concurrent use.
type Matcher struct {
	minChars int
	short    map[string]struct{}
	synonyms map[string][]string

	// variant -> *regexp.Regexp
	patterns sync.Map
}

// NewMatcher builds a matcher from rules. Short tokens and synonyms are
// normalized like queries and addresses. A non-positive MinQueryChars means
// every token is significant.
func NewMatcher(rules config.LocationRules) *Matcher {
	m := &Matcher{
		minChars: rules.MinQueryChars,
		short:    make(map[string]struct{}, len(rules.ShortTokens)),
		synonyms: make(map[string][]string, len(rules.Synonyms)),
	}
	for _, t := range rules.ShortTokens {
		if t = textnorm.Normalize(t); t != "" {
			m.short[t] = struct{}{}
		}
	}
	for token, variants := range rules.Synonyms {
		token = textnorm.Normalize(token)
		if token == "" {
			continue
		}
		for _, v := range variants {
			if v = textnorm.Normalize(v); v != "" {
				m.synonyms[token] = append(m.synonyms[token], v)
			}
		}
	}
	return m
}

// Tokens splits a query on commas and whitespace, dropping empty tokens.
func Tokens(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		switch r {
		case ',', ' ', '\t', '\n', '\r', '\f', '\v':
			return true
		}
		return false
	})
}

// Significant reports whether a token takes part in matching.
func (m *Matcher) Significant(token string) bool {
	if utf8.RuneCountInString(token) >= m.minChars {
		return true
	}
	_, ok := m.short[token]
	return ok
}

// ShouldApply reports whether the query has at least one significant token.
// Callers use it to skip the location clause for weak queries like "a b".
func (m *Matcher) ShouldApply(query string) bool {
	for _, t := range Tokens(query) {
		if m.Significant(t) {
			return true
		}
	}
	return false
}

// Expand returns the spelling variants of a token, or the token itself.
func (m *Matcher) Expand(token string) []string {
	if variants, ok := m.synonyms[token]; ok {
		return variants
	}
	return []string{token}
}

// Matches reports whether every significant query token, through at least
// one of its variants, starts a word in the address. A query without
// significant tokens matches everything.
func (m *Matcher) Matches(address, query string) bool {
	for _, t := range Tokens(query) {
		if !m.Significant(t) {
			continue
		}
		found := false
		for _, variant := range m.Expand(t) {
			if m.pattern(variant).MatchString(address) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *Matcher) pattern(variant string) *regexp.Regexp {
	if re, ok := m.patterns.Load(variant); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(variant))
	actual, _ := m.patterns.LoadOrStore(variant, re)
	return actual.(*regexp.Regexp)
}
