// Package filter decides which listing cards are visible for a set of search
// criteria. Decisions are pure; rendering them is left to the caller.
package filter

import (
	"strings"

	"casaleon/server/config"
	"casaleon/server/internal/location"
	"casaleon/server/internal/models"
	"casaleon/server/internal/textnorm"
)

// Want is the operation the visitor is after.
type Want string

const (
	WantBuy  Want = "buy"
	WantRent Want = "rent"
	WantSell Want = "sell"
)

// AnyType disables the type clause.
const AnyType = "any"

// Mode is the page state produced by a decision.
type Mode int

const (
	ModeIdle Mode = iota
	ModeShowListings
	ModeShowSellForm
)

// String returns the string representation of a Mode
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeShowListings:
		return "listings"
	case ModeShowSellForm:
		return "sell_form"
	default:
		return "unknown"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Criteria is derived from the three search controls each time filtering runs.
type Criteria struct {
	Want     Want   `json:"want"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

// ParseCriteria applies the control defaults: want=buy, type=any. The
// location is kept as typed; it is normalized when the filter runs.
func ParseCriteria(want, propertyType, loc string) Criteria {
	c := Criteria{
		Want:     Want(strings.ToLower(strings.TrimSpace(want))),
		Type:     strings.ToLower(strings.TrimSpace(propertyType)),
		Location: loc,
	}
	if c.Want == "" {
		c.Want = WantBuy
	}
	if c.Type == "" {
		c.Type = AnyType
	}
	return c
}

// OperationFor maps a Want onto the catalog operation. Sell and unknown
// values have no listing operation.
func OperationFor(want Want) (string, bool) {
	switch want {
	case WantBuy:
		return models.OperationBuy, true
	case WantRent:
		return models.OperationRent, true
	default:
		return "", false
	}
}

// Decision is the outcome of one filter run.
type Decision struct {
	Mode     Mode            `json:"mode"`
	Criteria Criteria        `json:"criteria"`
	cards    []models.Card
	// visible[i] is the outcome for cards[i]
	visible []bool
}

// ListingsHidden reports whether the listings section is hidden.
func (d Decision) ListingsHidden() bool { return d.Mode == ModeShowSellForm }

// SellFormHidden reports whether the seller lead form is hidden.
func (d Decision) SellFormHidden() bool { return d.Mode != ModeShowSellForm }

// Visible reports whether a card with the given id is shown. Ids are not
// unique in every catalog; VisibleAt is exact.
func (d Decision) Visible(id string) bool {
	for i, c := range d.cards {
		if c.ID == id && d.visible[i] {
			return true
		}
	}
	return false
}

// VisibleAt reports whether the i-th card is shown.
func (d Decision) VisibleAt(i int) bool {
	return i >= 0 && i < len(d.visible) && d.visible[i]
}

// VisibleCards returns the shown cards in catalog order.
func (d Decision) VisibleCards() []models.Card {
	out := make([]models.Card, 0, len(d.cards))
	for i, c := range d.cards {
		if d.visible[i] {
			out = append(out, c)
		}
	}
	return out
}

// HiddenCount returns how many cards are hidden.
func (d Decision) HiddenCount() int {
	return len(d.cards) - len(d.VisibleCards())
}

// Filter holds the fixed service area and the location matcher.
type Filter struct {
	cityTags  []string
	stateTags []string
	matcher   *location.Matcher
}

// New builds a filter restricted to the rules' service area.
func New(rules config.LocationRules) *Filter {
	area := rules.ServiceArea()
	return &Filter{
		cityTags:  area.Tags,
		stateTags: area.StateTags,
		matcher:   location.NewMatcher(rules),
	}
}

// Matcher exposes the location matcher used by the filter.
func (f *Filter) Matcher() *location.Matcher { return f.matcher }

// Decide evaluates every card against the criteria. Choosing to sell hides
// all cards without evaluating them.
func (f *Filter) Decide(c Criteria, cards []models.Card) Decision {
	d := Decision{
		Criteria: c,
		cards:    cards,
		visible:  make([]bool, len(cards)),
	}

	if c.Want == WantSell {
		d.Mode = ModeShowSellForm
		return d
	}
	d.Mode = ModeShowListings

	expected, ok := OperationFor(c.Want)
	query := textnorm.Normalize(c.Location)
	useLocation := f.matcher.ShouldApply(query)

	for i, card := range cards {
		d.visible[i] = ok && f.cardVisible(card, expected, c.Type, query, useLocation)
	}
	return d
}

func (f *Filter) cardVisible(card models.Card, operation, propertyType, query string, useLocation bool) bool {
	if strings.ToLower(card.Operation) != operation {
		return false
	}

	addr := textnorm.Normalize(card.Address)
	if !f.InServiceArea(addr) {
		return false
	}

	if propertyType != AnyType && strings.ToLower(card.Type) != propertyType {
		return false
	}

	if useLocation {
		return f.matcher.Matches(addr, query)
	}
	return true
}

// InServiceArea reports whether a normalized address names both the city and
// the state of the service area.
func (f *Filter) InServiceArea(addrNorm string) bool {
	return containsAny(addrNorm, f.cityTags) && containsAny(addrNorm, f.stateTags)
}

func containsAny(s string, tags []string) bool {
	for _, t := range tags {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
