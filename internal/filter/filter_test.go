package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casaleon/server/config"
	"casaleon/server/internal/models"
)

func testCards() []models.Card {
	return []models.Card{
		{ID: "1", Operation: "comprar", Type: "casa", Address: "Boulevard Adolfo López Mateos 1200, León, Gto."},
		{ID: "2", Operation: "rentar", Type: "departamento", Address: "Av. Insurgentes 300, Col. Jardines del Moral, León, Guanajuato"},
		{ID: "3", Operation: "comprar", Type: "terreno", Address: "Libramiento Norte km 3, León de los Aldama, Gto."},
		{ID: "4", Operation: "comprar", Type: "casa", Address: "Centro, Silao, Gto."},
		{ID: "5", Operation: "comprar", Type: "Casa", Address: "Col. Centro, León, Jalisco"},
		{ID: "6", Operation: "COMPRAR", Type: "loft", Address: "Calle Madero 10, Centro, León, GTO"},
	}
}

func visibleIDs(d Decision) []string {
	ids := []string{}
	for _, c := range d.VisibleCards() {
		ids = append(ids, c.ID)
	}
	return ids
}

func newTestFilter() *Filter {
	return New(config.DefaultLocationRules())
}

func TestParseCriteria(t *testing.T) {
	c := ParseCriteria("", "", "  Centro ")
	assert.Equal(t, WantBuy, c.Want)
	assert.Equal(t, AnyType, c.Type)
	assert.Equal(t, "  Centro ", c.Location)

	c = ParseCriteria(" RENT ", "Casa", "")
	assert.Equal(t, WantRent, c.Want)
	assert.Equal(t, "casa", c.Type)
}

func TestOperationFor(t *testing.T) {
	op, ok := OperationFor(WantBuy)
	assert.True(t, ok)
	assert.Equal(t, "comprar", op)

	op, ok = OperationFor(WantRent)
	assert.True(t, ok)
	assert.Equal(t, "rentar", op)

	_, ok = OperationFor(WantSell)
	assert.False(t, ok)
	_, ok = OperationFor("lease")
	assert.False(t, ok)
}

func TestFilter_Decide(t *testing.T) {
	f := newTestFilter()

	tests := []struct {
		name     string
		criteria Criteria
		expected []string
	}{
		{name: "Default buy in service area", criteria: ParseCriteria("", "", ""), expected: []string{"1", "3", "6"}},
		{name: "Rent", criteria: ParseCriteria("rent", "any", ""), expected: []string{"2"}},
		{name: "Type clause", criteria: ParseCriteria("buy", "terreno", ""), expected: []string{"3"}},
		{name: "Type is case-insensitive", criteria: ParseCriteria("buy", "LOFT", ""), expected: []string{"6"}},
		{name: "Location with synonym", criteria: ParseCriteria("buy", "any", "Blvd Adolfo"), expected: []string{"1"}},
		{name: "Location short abbreviation", criteria: ParseCriteria("buy", "any", "lib"), expected: []string{"3"}},
		{name: "Weak location ignored", criteria: ParseCriteria("buy", "any", "a b"), expected: []string{"1", "3", "6"}},
		{name: "Location no match", criteria: ParseCriteria("buy", "any", "Zapopan"), expected: []string{}},
		{name: "Location with accents", criteria: ParseCriteria("rent", "any", "Jardínes"), expected: []string{"2"}},
		{name: "Unknown want hides everything", criteria: ParseCriteria("lease", "any", ""), expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.Decide(tt.criteria, testCards())
			assert.Equal(t, ModeShowListings, d.Mode)
			assert.False(t, d.ListingsHidden())
			assert.True(t, d.SellFormHidden())
			assert.Equal(t, tt.expected, visibleIDs(d))
			assert.Equal(t, len(testCards())-len(tt.expected), d.HiddenCount())
		})
	}
}

func TestFilter_DecideSellAlwaysShowsForm(t *testing.T) {
	f := newTestFilter()

	for _, typ := range []string{"any", "casa", "bodega"} {
		for _, loc := range []string{"", "centro", "blvd adolfo"} {
			d := f.Decide(ParseCriteria("sell", typ, loc), testCards())
			require.Equal(t, ModeShowSellForm, d.Mode)
			assert.True(t, d.ListingsHidden())
			assert.False(t, d.SellFormHidden())
			assert.Empty(t, d.VisibleCards())
			for _, c := range testCards() {
				assert.False(t, d.Visible(c.ID))
			}
		}
	}
}

func TestFilter_DecideIsIdempotent(t *testing.T) {
	f := newTestFilter()
	cards := testCards()
	c := ParseCriteria("buy", "casa", "blvd")

	first := f.Decide(c, cards)
	second := f.Decide(c, cards)
	assert.Equal(t, visibleIDs(first), visibleIDs(second))
	assert.Equal(t, first.Mode, second.Mode)
}

func TestFilter_WeakQueryNeverRemovesCards(t *testing.T) {
	f := newTestFilter()
	cards := testCards()
	base := visibleIDs(f.Decide(ParseCriteria("buy", "any", ""), cards))

	for _, q := range []string{"a", "de la", "x, y, z", "  ", "12"} {
		assert.Equal(t, base, visibleIDs(f.Decide(ParseCriteria("buy", "any", q), cards)), "query %q", q)
	}
}

func TestFilter_InServiceArea(t *testing.T) {
	f := newTestFilter()
	assert.True(t, f.InServiceArea("centro, leon, gto"))
	assert.True(t, f.InServiceArea("leon de los aldama, guanajuato"))
	assert.False(t, f.InServiceArea("centro, leon, jalisco"))
	assert.False(t, f.InServiceArea("silao, gto"))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "idle", ModeIdle.String())
	assert.Equal(t, "listings", ModeShowListings.String())
	assert.Equal(t, "sell_form", ModeShowSellForm.String())
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestFilter_DecideSharedIDs(t *testing.T) {
	f := newTestFilter()
	cards := []models.Card{
		{ID: "", Operation: "comprar", Type: "casa", Address: "Centro, León, Gto."},
		{ID: "", Operation: "rentar", Type: "casa", Address: "Centro, León, Gto."},
		{ID: "9", Operation: "rentar", Type: "casa", Address: "Centro, León, Gto."},
		{ID: "9", Operation: "comprar", Type: "casa", Address: "Centro, León, Gto."},
	}

	d := f.Decide(ParseCriteria("buy", "any", ""), cards)
	require.Len(t, d.VisibleCards(), 2)
	assert.Equal(t, "comprar", d.VisibleCards()[0].Operation)
	assert.Equal(t, "comprar", d.VisibleCards()[1].Operation)
	assert.Equal(t, 2, d.HiddenCount())

	assert.True(t, d.VisibleAt(0))
	assert.False(t, d.VisibleAt(1))
	assert.False(t, d.VisibleAt(2))
	assert.True(t, d.VisibleAt(3))
	assert.False(t, d.VisibleAt(4))
	assert.False(t, d.VisibleAt(-1))
}
