package detail

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"

	"casaleon/server/internal/contact"
	"casaleon/server/internal/models"
)

const mapsBase = "https://www.google.com/maps"

// Map is the embedded map of a listing.
type Map struct {
	Query    string     `json:"query"`
	Point    *orb.Point `json:"point,omitempty"`
	EmbedURL string     `json:"embed_url"`
	OpenURL  string     `json:"open_url"`
}

// BuildMap picks the map query from coordinates, then map_query, then the
// address.
func BuildMap(p *models.Property, zoom int) *Map {
	m := &Map{}
	switch {
	case p.HasCoordinates():
		pt := orb.Point{*p.Longitude, *p.Latitude}
		m.Point = &pt
		m.Query = coordText(pt)
	case p.MapQuery != "":
		m.Query = p.MapQuery
	default:
		m.Query = p.Address
	}

	q := contact.EncodeURIComponent(m.Query)
	m.EmbedURL = fmt.Sprintf("%s?q=%s&z=%d&output=embed", mapsBase, q, zoom)
	m.OpenURL = fmt.Sprintf("%s?q=%s", mapsBase, q)
	return m
}

// coordText writes "lat,lng"; orb points are (lng, lat).
func coordText(pt orb.Point) string {
	return strconv.FormatFloat(pt.Lat(), 'f', -1, 64) + "," + strconv.FormatFloat(pt.Lon(), 'f', -1, 64)
}
