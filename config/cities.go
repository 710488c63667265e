package config

import (
	"strings"

	"casaleon/server/internal/textnorm"
)

// City represents the service area a listing must fall in to be shown.
// Tags and StateTags are matched against normalized addresses.
type City struct {
	Name      string    `json:"name"`
	Tags      []string  `json:"tags"`
	StateTags []string  `json:"state_tags"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// SupportedCities is a list of cities supported by the application
var SupportedCities = []City{
	{
		Name:      "leon",
		Tags:      []string{"leon", "leon de los aldama"},
		StateTags: []string{"gto", "guanajuato"},
		Center:    []float64{21.1250, -101.6860},
		ZoomLevel: 13,
	},
}

// DefaultCity is the single city the listing filter is restricted to.
const DefaultCity = "leon"

// GetCityNames returns a list of supported city names
func GetCityNames() []string {
	names := make([]string, len(SupportedCities))
	for i, city := range SupportedCities {
		names[i] = city.Name
	}
	return names
}

// GetCityByName returns a city configuration by name
func GetCityByName(name string) *City {
	key := NormalizeCity(name)
	for i := range SupportedCities {
		if SupportedCities[i].Name == key {
			city := SupportedCities[i]
			return &city
		}
	}
	return nil
}

// NormalizeCity turns a display name into the lookup key used by SupportedCities.
func NormalizeCity(name string) string {
	return strings.Join(strings.Fields(textnorm.Normalize(name)), "-")
}
