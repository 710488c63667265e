package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"casaleon/server/internal/textnorm"
)

// LocationRules drives the free-text location filter. Thresholds are kept as
// data so they can be tuned without a release.
type LocationRules struct {
	// Tokens shorter than this are ignored unless listed in ShortTokens
	MinQueryChars int `json:"min_query_chars"`

	// Abbreviations that count as significant despite their length
	ShortTokens []string `json:"short_tokens"`

	// Token -> spelling variants, each variant matched at a word start
	Synonyms map[string][]string `json:"synonyms"`

	// Service area every visible listing must belong to
	City string `json:"city"`
}

// DefaultLocationRules returns the built-in rules for the León service area.
func DefaultLocationRules() LocationRules {
	return LocationRules{
		MinQueryChars: 3,
		ShortTokens:   []string{"av", "blvd", "lib", "col"},
		Synonyms: map[string][]string{
			"blvd":  {"blvd", "bulevar", "boulevard", "blvrd", "blv"},
			"av":    {"av", "avenida"},
			"lib":   {"lib", "libramiento"},
			"col":   {"col", "colonia"},
			"calle": {"calle", "c", "cll"},
		},
		City: DefaultCity,
	}
}

// LoadLocationRules reads a rules override file. Fields absent from the file
// keep their default value. An empty path returns the defaults.
func LoadLocationRules(path string) (LocationRules, error) {
	rules := DefaultLocationRules()
	if path == "" {
		return rules, nil
	}

	// Get absolute path to config file
	absPath, err := filepath.Abs(path)
	if err != nil {
		return rules, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return rules, fmt.Errorf("failed to read location rules: %w", err)
	}

	var override LocationRules
	if err := json.Unmarshal(data, &override); err != nil {
		return rules, fmt.Errorf("failed to parse location rules: %w", err)
	}

	if override.MinQueryChars > 0 {
		rules.MinQueryChars = override.MinQueryChars
	}
	if override.ShortTokens != nil {
		rules.ShortTokens = normalizeAll(override.ShortTokens)
	}
	for token, variants := range override.Synonyms {
		if token = textnorm.Normalize(token); token != "" {
			rules.Synonyms[token] = normalizeAll(variants)
		}
	}
	if override.City != "" {
		if GetCityByName(override.City) == nil {
			return rules, fmt.Errorf("unsupported city in location rules: %s", override.City)
		}
		rules.City = NormalizeCity(override.City)
	}

	return rules, nil
}

// ServiceArea resolves the configured city, falling back to DefaultCity.
func (r LocationRules) ServiceArea() City {
	if city := GetCityByName(r.City); city != nil {
		return *city
	}
	return *GetCityByName(DefaultCity)
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = textnorm.Normalize(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
