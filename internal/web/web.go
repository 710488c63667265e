// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"html/template"

	"casaleon/server/internal/detail"
	"casaleon/server/internal/filter"
	"casaleon/server/internal/leads"
	"casaleon/server/internal/models"
)

//go:embed templates/*.html
var files embed.FS

// Page template names
const (
	HomeTemplate     = "home.html"
	PropertyTemplate = "property.html"
)

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.html"))
}

// HomePage is the data of the landing page.
type HomePage struct {
	Criteria       filter.Criteria
	Mode           string
	Cards          []models.Card
	HiddenCount    int
	ListingsHidden bool
	SellFormHidden bool
	Types          []models.TypeOption
	ContactURL     string
	Section        string
	Owner          leads.OwnerForm
	Alert          string
	Preview        string
}

// PropertyPage is the data of the detail page.
type PropertyPage struct {
	View     detail.View
	Lightbox *detail.Lightbox
	Visit    leads.VisitForm
	Alert    string
	Preview  string
}
