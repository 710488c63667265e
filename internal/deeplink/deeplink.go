// Package deeplink resolves URL fragments, the ?go= parameter and navbar
// shortcuts into filter changes and page sections.
package deeplink

import (
	"strings"

	"casaleon/server/internal/filter"
)

// Section is a named part of the home page.
type Section string

const (
	SectionNone     Section = ""
	SectionSearch   Section = "search-form"
	SectionSellForm Section = "owner-form"
	SectionAbout    Section = "nosotros"
	SectionListings Section = "property"
	SectionHero     Section = "hero"
)

// Action is what the page should do for a link.
type Action struct {
	// Empty when the link does not select an operation
	Want filter.Want `json:"want,omitempty"`

	// Reset restores the search controls to their defaults
	Reset bool `json:"reset,omitempty"`

	Section Section `json:"section,omitempty"`
}

// None reports whether the action changes nothing.
func (a Action) None() bool {
	return a.Want == "" && !a.Reset && a.Section == SectionNone
}

// Apply returns the criteria after the action.
func (a Action) Apply(c filter.Criteria) filter.Criteria {
	if a.Reset {
		return filter.ParseCriteria("", "", "")
	}
	if a.Want != "" {
		c.Want = a.Want
	}
	return c
}

func validWant(s string) (filter.Want, bool) {
	switch w := filter.Want(s); w {
	case filter.WantBuy, filter.WantRent, filter.WantSell:
		return w, true
	}
	return "", false
}

// selectWant moves to the sell form for sell and to the search bar otherwise.
func selectWant(w filter.Want) Action {
	if w == filter.WantSell {
		return Action{Want: w, Section: SectionSellForm}
	}
	return Action{Want: w, Section: SectionSearch}
}

// Resolve handles a page load or fragment change. A "go=" fragment wins over
// the ?go= parameter; an operation outside buy/rent/sell is ignored. Without
// an operation the fragment may still name the about or listings section.
func Resolve(fragment, goParam string) Action {
	hash := strings.TrimSpace(strings.TrimPrefix(fragment, "#"))

	var selected string
	if strings.HasPrefix(hash, "go=") {
		selected = strings.SplitN(hash, "=", 3)[1]
	} else if goParam != "" {
		selected = goParam
	}

	if w, ok := validWant(selected); ok {
		return selectWant(w)
	}

	switch hash {
	case string(SectionAbout):
		return Action{Section: SectionAbout}
	case string(SectionListings):
		return Action{Section: SectionListings}
	}
	return Action{}
}

// Nav handles a navbar or footer link. Links with a real href are left to
// the browser. The key is the link's data-nav value or its text.
func Nav(key, href string) Action {
	if href != "" && href != "#" && !strings.HasPrefix(href, "#") {
		return Action{}
	}

	key = strings.ToLower(key)
	switch {
	case strings.Contains(key, "rentar"):
		return selectWant(filter.WantRent)
	case strings.Contains(key, "comprar"):
		return selectWant(filter.WantBuy)
	case strings.Contains(key, "vender"):
		return selectWant(filter.WantSell)
	case strings.Contains(key, "nosotros") || href == "#nosotros":
		return Action{Section: SectionAbout}
	case strings.Contains(key, "inicio"):
		return Action{Reset: true, Section: SectionHero}
	}
	return Action{}
}
