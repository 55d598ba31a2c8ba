// Package geo holds the small planar geometry pieces shared by the track
// pipeline: Ramer-Douglas-Peucker simplification and the compact polyline
// encoding used for map previews.
package geo

// Point is a bare lat/lon pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}
