package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Operation values used by the catalog
const (
	OperationBuy  = "comprar"
	OperationRent = "rentar"
)

// TypeOption is one entry of the property-type select.
type TypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PropertyTypes lists the searchable property types in display order.
var PropertyTypes = []TypeOption{
	{Value: "casa", Label: "Casa"},
	{Value: "departamento", Label: "Departamento"},
	{Value: "terreno", Label: "Terreno"},
	{Value: "loft", Label: "Loft"},
	{Value: "local", Label: "Local comercial"},
	{Value: "oficina", Label: "Oficina"},
	{Value: "bodega", Label: "Bodega"},
}

// TypeLabel returns the display label of a type value, or "" when the value
// is not one of PropertyTypes.
func TypeLabel(value string) string {
	for _, t := range PropertyTypes {
		if t.Value == value {
			return t.Label
		}
	}
	return ""
}

// PropertyID accepts a JSON string or number. Numbers are kept in their
// shortest decimal form, so "7", 7 and 7.0 identify the same record.
type PropertyID string

func (id *PropertyID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = PropertyID(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	f, err := num.Float64()
	if err != nil {
		return err
	}
	*id = PropertyID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

func (id PropertyID) String() string { return string(id) }

// Property is one record of the static catalog. Numeric fields are pointers
// because the catalog omits whatever is unknown.
type Property struct {
	ID              PropertyID `json:"id"`
	Title           string     `json:"title"`
	Address         string     `json:"address"`
	Latitude        *float64   `json:"lat,omitempty"`
	Longitude       *float64   `json:"lng,omitempty"`
	MapQuery        string     `json:"map_query,omitempty"`
	Operation       string     `json:"operation"`
	Type            string     `json:"type"`
	Status          string     `json:"status,omitempty"`
	Price           *float64   `json:"price,omitempty"`
	PriceFrom       *float64   `json:"price_from,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	Bedrooms        *float64   `json:"bedrooms,omitempty"`
	Bathrooms       *float64   `json:"bathrooms,omitempty"`
	AreaM2          *float64   `json:"area_m2,omitempty"`
	BuiltM2         *float64   `json:"built_m2,omitempty"`
	Features        []string   `json:"features,omitempty"`
	Images          []string   `json:"images,omitempty"`
	DescriptionLong string     `json:"description_long,omitempty"`
	Description     string     `json:"description,omitempty"`
	Excerpt         string     `json:"excerpt,omitempty"`
}

type propertyFields Property

// UnmarshalJSON decodes a catalog record. A numeric field holding anything
// other than a JSON number is treated as unknown instead of failing the
// whole catalog.
func (p *Property) UnmarshalJSON(b []byte) error {
	aux := struct {
		*propertyFields
		Latitude  json.RawMessage `json:"lat"`
		Longitude json.RawMessage `json:"lng"`
		Price     json.RawMessage `json:"price"`
		PriceFrom json.RawMessage `json:"price_from"`
		Bedrooms  json.RawMessage `json:"bedrooms"`
		Bathrooms json.RawMessage `json:"bathrooms"`
		AreaM2    json.RawMessage `json:"area_m2"`
		BuiltM2   json.RawMessage `json:"built_m2"`
	}{propertyFields: (*propertyFields)(p)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	p.Latitude = number(aux.Latitude)
	p.Longitude = number(aux.Longitude)
	p.Price = number(aux.Price)
	p.PriceFrom = number(aux.PriceFrom)
	p.Bedrooms = number(aux.Bedrooms)
	p.Bathrooms = number(aux.Bathrooms)
	p.AreaM2 = number(aux.AreaM2)
	p.BuiltM2 = number(aux.BuiltM2)
	return nil
}

// number returns the value of a raw JSON number, or nil for any other token.
func number(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil
	}
	return &f
}

// HasCoordinates reports whether both latitude and longitude are known.
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Card is the filterable summary of a listing: operation and type as
// attributes, the address as visible text.
type Card struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Operation string `json:"operation"`
	Type      string `json:"type"`
	Address   string `json:"address"`
	Image     string `json:"image,omitempty"`
}

// CardFor builds the listing card of a catalog record.
func CardFor(p Property) Card {
	card := Card{
		ID:        p.ID.String(),
		Title:     p.Title,
		Operation: strings.ToLower(p.Operation),
		Type:      strings.ToLower(p.Type),
		Address:   p.Address,
	}
	if len(p.Images) > 0 {
		card.Image = p.Images[0]
	}
	return card
}

// CardsFor converts a catalog into listing cards, preserving order.
func CardsFor(properties []Property) []Card {
	cards := make([]Card, len(properties))
	for i, p := range properties {
		cards[i] = CardFor(p)
	}
	return cards
}
