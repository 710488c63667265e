// Package geometry exposes listing coordinates as GeoJSON for map clients.
package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"casaleon/server/internal/models"
)

// DetailURL is the page a map marker links to
const DetailURL = "/propiedad?id="

// Point returns the listing position, or false when a coordinate is missing.
func Point(p models.Property) (orb.Point, bool) {
	if !p.HasCoordinates() {
		return orb.Point{}, false
	}
	return orb.Point{*p.Longitude, *p.Latitude}, true
}

// ListingFeatures builds one point feature per listing with coordinates.
// visible filters the listings by position; nil keeps them all.
func ListingFeatures(properties []models.Property, visible func(i int) bool) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, p := range properties {
		if visible != nil && !visible(i) {
			continue
		}
		id := p.ID.String()
		pt, ok := Point(p)
		if !ok {
			continue
		}

		feature := geojson.NewFeature(pt)
		feature.ID = id
		feature.Properties = geojson.Properties{
			"id":        id,
			"title":     p.Title,
			"operation": p.Operation,
			"type":      p.Type,
			"address":   p.Address,
			"url":       DetailURL + id,
		}
		fc.Append(feature)
	}
	return fc
}

// Bounds returns the bounding box of the collection's points.
func Bounds(fc *geojson.FeatureCollection) (orb.Bound, bool) {
	if fc == nil || len(fc.Features) == 0 {
		return orb.Bound{}, false
	}
	bound := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		bound = bound.Union(f.Geometry.Bound())
	}
	return bound, true
}

// CoverageFeature returns the convex hull of the collection's points as a
// polygon feature, or nil with fewer than three distinct points.
func CoverageFeature(fc *geojson.FeatureCollection) *geojson.Feature {
	points := make([]orb.Point, 0, len(fc.Features))
	for _, f := range fc.Features {
		if pt, ok := f.Geometry.(orb.Point); ok {
			points = append(points, pt)
		}
	}

	hull := ConvexHull(points)
	if hull == nil {
		return nil
	}

	centroid, area := planar.CentroidArea(orb.Polygon{hull})
	feature := geojson.NewFeature(orb.Polygon{hull})
	feature.Properties = geojson.Properties{
		"geometry_type": "hull",
		"hull_type":     "convex",
		"point_count":   len(points),
		"centroid":      []float64{centroid.Lon(), centroid.Lat()},
		"area_deg2":     math.Abs(area),
	}
	return feature
}

// ConvexHull returns the closed counter-clockwise hull ring of points
// (monotone chain), or nil when the points do not span an area.
func ConvexHull(points []orb.Point) orb.Ring {
	pts := uniquePoints(points)
	if len(pts) < 3 {
		return nil
	}

	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	hull := make([]orb.Point, 0, 2*len(pts))
	// Lower hull
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper hull
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// hull is already closed: the last point equals the first
	if len(hull) < 4 {
		return nil
	}
	return orb.Ring(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func uniquePoints(points []orb.Point) []orb.Point {
	seen := make(map[orb.Point]struct{}, len(points))
	out := make([]orb.Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
