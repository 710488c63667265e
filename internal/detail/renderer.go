// Package detail turns a catalog record into the fields of the property
// detail page.
package detail

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"casaleon/server/internal/contact"
	"casaleon/server/internal/models"
)

// Placeholder shown in every field of the fallback view.
const Placeholder = "—"

const (
	defaultTitle        = "Propiedad"
	defaultAvailability = "Disponible"
	defaultHeroAlt      = "Imagen de la propiedad"
	defaultVisitTitle   = "esta propiedad"
	notAvailableTitle   = "Propiedad no disponible"
)

// Settings are the page constants of the detail view.
type Settings struct {
	ImageBase    string
	HeroFallback string
	GallerySize  int
	MapZoom      int
}

// View is everything the detail page displays.
type View struct {
	Available    bool     `json:"available"`
	ID           string   `json:"id,omitempty"`
	HeroImage    string   `json:"hero_image"`
	HeroAlt      string   `json:"hero_alt"`
	Title        string   `json:"title"`
	Address      string   `json:"address"`
	Availability string   `json:"availability"`
	Price        string   `json:"price"`
	Operation    string   `json:"operation"`
	Type         string   `json:"type"`
	Bedrooms     string   `json:"bedrooms"`
	Bathrooms    string   `json:"bathrooms"`
	Size         string   `json:"size"`
	Features     []string `json:"features"`
	Description  string   `json:"description"`
	WhatsAppURL  string   `json:"whatsapp_url,omitempty"`
	VisitTitle   string   `json:"visit_title,omitempty"`
	Gallery      []Slide  `json:"gallery"`
	Map          *Map     `json:"map,omitempty"`
}

// Slide is one gallery thumbnail.
type Slide struct {
	Index int    `json:"index"`
	Src   string `json:"src"`
	Alt   string `json:"alt"`
}

// Renderer builds views. It holds no per-request state.
type Renderer struct {
	settings Settings
	linker   *contact.Linker
}

func NewRenderer(settings Settings, linker *contact.Linker) *Renderer {
	if settings.GallerySize <= 0 {
		settings.GallerySize = 5
	}
	if settings.MapZoom <= 0 {
		settings.MapZoom = 15
	}
	settings.ImageBase = strings.TrimRight(settings.ImageBase, "/")
	return &Renderer{settings: settings, linker: linker}
}

func (r *Renderer) Settings() Settings { return r.settings }

// Render fills every field of the view from p.
func (r *Renderer) Render(p *models.Property) View {
	v := View{
		Available:    true,
		ID:           p.ID.String(),
		HeroImage:    r.settings.HeroFallback,
		HeroAlt:      orDefault(p.Title, defaultHeroAlt),
		Title:        orDefault(p.Title, defaultTitle),
		Address:      p.Address,
		Availability: orDefault(p.Status, defaultAvailability),
		Price:        PriceText(p),
		Operation:    OperationBadge(p.Operation),
		Type:         capitalize(p.Type),
		Bedrooms:     number(p.Bedrooms) + " rec",
		Bathrooms:    number(p.Bathrooms) + " baños",
		Size:         number(firstKnown(p.AreaM2, p.BuiltM2)) + " m²",
		Features:     append([]string{}, p.Features...),
		Description:  firstNonEmpty(p.DescriptionLong, p.Description, p.Excerpt),
		VisitTitle:   orDefault(p.Title, defaultVisitTitle),
		Gallery:      r.Gallery(p),
		Map:          BuildMap(p, r.settings.MapZoom),
	}
	if len(p.Images) > 0 && p.Images[0] != "" {
		v.HeroImage = p.Images[0]
	}
	if r.linker != nil {
		v.WhatsAppURL = r.linker.ForProperty(p.Title)
	}
	return v
}

// NotAvailable is the single fallback view for a missing id, an unknown id
// and a catalog that could not be loaded.
func (r *Renderer) NotAvailable() View {
	return View{
		HeroImage:    r.settings.HeroFallback,
		HeroAlt:      defaultHeroAlt,
		Title:        notAvailableTitle,
		Address:      Placeholder,
		Availability: Placeholder,
		Price:        Placeholder,
		Operation:    Placeholder,
		Type:         Placeholder,
		Bedrooms:     Placeholder,
		Bathrooms:    Placeholder,
		Size:         Placeholder,
		Features:     []string{},
		Gallery:      []Slide{},
	}
}

// GalleryPaths returns the fixed carousel image paths for a property id.
// They depend on the id only, never on the record's image list.
func (r *Renderer) GalleryPaths(id string) []string {
	paths := make([]string, r.settings.GallerySize)
	for i := range paths {
		paths[i] = fmt.Sprintf("%s/property-%s-carrusel-%d.jpg", r.settings.ImageBase, id, i+1)
	}
	return paths
}

func (r *Renderer) Gallery(p *models.Property) []Slide {
	paths := r.GalleryPaths(p.ID.String())
	slides := make([]Slide, len(paths))
	for i, src := range paths {
		slides[i] = Slide{Index: i, Src: src, Alt: "Foto de " + p.Title}
	}
	return slides
}

// PriceText formats the exact price, or "Desde" and the floor price when only
// that is known. Amounts are rounded to whole units.
func PriceText(p *models.Property) string {
	currency := orDefault(strings.ToUpper(p.Currency), "MXN")
	switch {
	case p.Price != nil:
		return FormatMoney(*p.Price, currency)
	case p.PriceFrom != nil:
		return "Desde " + FormatMoney(*p.PriceFrom, currency)
	default:
		return ""
	}
}

// FormatMoney renders an amount the way es-MX currency formatting does with
// no decimals: "$1,500,000" for pesos, "USD 1,500,000" for anything else.
func FormatMoney(amount float64, currency string) string {
	rounded := int64(math.Round(amount))
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	digits := humanize.Comma(rounded)
	if currency == "MXN" {
		return sign + "$" + digits
	}
	return sign + currency + " " + digits
}

func OperationBadge(operation string) string {
	if operation == models.OperationRent {
		return "Renta"
	}
	return "Venta"
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func number(v *float64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func firstKnown(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
