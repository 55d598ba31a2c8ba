// Package track models GPS recordings and implements the merge and
// canonicalization steps of the pipeline: parsing raw GPX documents,
// concatenating them in source order, dropping near-duplicate points and
// emitting the cleaned, time-stripped canonical GPX for a tour.
package track

import (
	"time"

	"github.com/nseriot/hikeandrun/internal/geo"
)

// Point is one recorded trackpoint. Elevation and Time are optional; a
// zero Time means the recording carried no usable timestamp.
type Point struct {
	Lat       float64
	Lon       float64
	Elevation *float64
	Time      time.Time
}

// Segment is an ordered run of points, kept in recording order.
type Segment []Point

// Track is one <trk> element worth of data.
type Track struct {
	Name       string
	Segments   []Segment
	SourceFile string
}

// FlattenLatLon concatenates every point of every track, in order, into a
// bare lat/lon sequence for simplification and encoding.
func FlattenLatLon(tracks []Track) []geo.Point {
	var out []geo.Point
	for _, t := range tracks {
		for _, seg := range t.Segments {
			for _, p := range seg {
				out = append(out, geo.Point{Lat: p.Lat, Lon: p.Lon})
			}
		}
	}
	return out
}

// MaxElevation returns the highest elevation seen across all tracks, or 0
// when no point carries one.
func MaxElevation(tracks []Track) float64 {
	max := 0.0
	for _, t := range tracks {
		for _, seg := range t.Segments {
			for _, p := range seg {
				if p.Elevation != nil && *p.Elevation > max {
					max = *p.Elevation
				}
			}
		}
	}
	return max
}
