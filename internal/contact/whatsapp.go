// Package contact builds outbound WhatsApp links with a prefilled message.
package contact

import (
	"fmt"
	"net/url"
	"strings"

	"casaleon/server/internal/models"
)

const waBase = "https://wa.me/"

var wantText = map[string]string{
	"buy":  "comprar",
	"rent": "rentar",
	"sell": "vender",
}

// Linker builds links for one business number.
type Linker struct {
	number string
}

// NewLinker takes the number as country code + area code + number. Anything
// but digits is dropped.
func NewLinker(number string) *Linker {
	return &Linker{number: digitsOnly(number)}
}

func (l *Linker) Number() string { return l.number }

// URL returns the chat link for msg, or "#" when no number is configured.
func (l *Linker) URL(msg string) string {
	if l.number == "" {
		return "#"
	}
	return waBase + l.number + "?text=" + EncodeURIComponent(msg)
}

// ForSearch links the message describing the visitor's current search.
func (l *Linker) ForSearch(want, propertyType, location string) string {
	return l.URL(SearchMessage(want, propertyType, location))
}

// ForProperty links the message asking about one listing.
func (l *Linker) ForProperty(title string) string {
	return l.URL(PropertyMessage(title))
}

// SearchMessage describes the current search. Unknown wants read as
// "comprar"; an empty or "any" type reads as "cualquier tipo".
func SearchMessage(want, propertyType, location string) string {
	wt, ok := wantText[strings.ToLower(strings.TrimSpace(want))]
	if !ok {
		wt = "comprar"
	}

	typ := "cualquier tipo"
	if v := strings.ToLower(strings.TrimSpace(propertyType)); v != "" && v != "any" {
		if label := models.TypeLabel(v); label != "" {
			typ = label
		} else {
			typ = propertyType
		}
	}

	loc := ""
	if trimmed := strings.TrimSpace(location); trimmed != "" {
		loc = ` en "` + trimmed + `"`
	}

	return fmt.Sprintf("Hola 👋, me gustaría %s una propiedad (%s)%s.\n¿Me pueden apoyar?", wt, typ, loc)
}

func PropertyMessage(title string) string {
	return `Hola, me interesa "` + title + `".`
}

var uriComponentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s the way browsers do for a URI component:
// letters, digits and -_.!~*'() are kept, everything else is UTF-8
// percent-encoded.
func EncodeURIComponent(s string) string {
	return uriComponentUnescape.Replace(url.QueryEscape(s))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
