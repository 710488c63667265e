package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"casaleon/server/internal/filter"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		goParam  string
		expected Action
	}{
		{name: "Fragment rent", fragment: "#go=rent", expected: Action{Want: filter.WantRent, Section: SectionSearch}},
		{name: "Fragment without hash", fragment: "go=buy", expected: Action{Want: filter.WantBuy, Section: SectionSearch}},
		{name: "Fragment sell", fragment: "#go=sell", expected: Action{Want: filter.WantSell, Section: SectionSellForm}},
		{name: "Query parameter", goParam: "sell", expected: Action{Want: filter.WantSell, Section: SectionSellForm}},
		{name: "Fragment wins over query", fragment: "#go=rent", goParam: "sell", expected: Action{Want: filter.WantRent, Section: SectionSearch}},
		{name: "Query wins over anchor", fragment: "#nosotros", goParam: "buy", expected: Action{Want: filter.WantBuy, Section: SectionSearch}},
		{name: "Invalid operation ignored", fragment: "#go=lease", expected: Action{}},
		{name: "About anchor", fragment: "#nosotros", expected: Action{Section: SectionAbout}},
		{name: "Listings anchor", fragment: "#property", expected: Action{Section: SectionListings}},
		{name: "Unknown anchor", fragment: "#contacto", expected: Action{}},
		{name: "Nothing", expected: Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.fragment, tt.goParam))
		})
	}
}

func TestNav(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		href     string
		expected Action
	}{
		{name: "Rentar", key: "Rentar", href: "#", expected: Action{Want: filter.WantRent, Section: SectionSearch}},
		{name: "Comprar", key: "comprar", expected: Action{Want: filter.WantBuy, Section: SectionSearch}},
		{name: "Vender", key: "Quiero vender", href: "#vender", expected: Action{Want: filter.WantSell, Section: SectionSellForm}},
		{name: "Nosotros by key", key: "Nosotros", expected: Action{Section: SectionAbout}},
		{name: "Nosotros by href", key: "Conócenos", href: "#nosotros", expected: Action{Section: SectionAbout}},
		{name: "Inicio", key: "Inicio", href: "#", expected: Action{Reset: true, Section: SectionHero}},
		{name: "Real href is not intercepted", key: "rentar", href: "/propiedad?id=3", expected: Action{}},
		{name: "Unknown key", key: "blog", expected: Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Nav(tt.key, tt.href))
		})
	}
}

func TestAction_Apply(t *testing.T) {
	c := filter.ParseCriteria("rent", "casa", "centro")

	assert.Equal(t, filter.Criteria{Want: filter.WantSell, Type: "casa", Location: "centro"}, Resolve("#go=sell", "").Apply(c))
	assert.Equal(t, c, Resolve("#nosotros", "").Apply(c))
	assert.Equal(t, filter.Criteria{Want: filter.WantBuy, Type: filter.AnyType}, Nav("inicio", "#").Apply(c))
}

func TestAction_None(t *testing.T) {
	assert.True(t, Action{}.None())
	assert.False(t, Resolve("#property", "").None())
	assert.False(t, Nav("inicio", "").None())
}
