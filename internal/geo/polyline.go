package geo

import (
	"fmt"
	"math"
	"strings"
)

// Coordinates are scaled by 1e5 before delta encoding, per the standard
// polyline format.
const polylineScale = 1e5

// EncodePolyline converts points into the compact reversible polyline
// string used by map-preview front ends.
func EncodePolyline(points []Point) string {
	var sb strings.Builder

	prevLat, prevLon := 0, 0
	for _, p := range points {
		lat := int(math.Round(p.Lat * polylineScale))
		lon := int(math.Round(p.Lon * polylineScale))
		writeSigned(&sb, lat-prevLat)
		writeSigned(&sb, lon-prevLon)
		prevLat, prevLon = lat, lon
	}

	return sb.String()
}

// DecodePolyline is the exact inverse of EncodePolyline. It exists mainly
// so the encoding can be verified; the pipeline itself only encodes.
func DecodePolyline(encoded string) ([]Point, error) {
	var points []Point

	lat, lon := 0, 0
	i := 0
	for i < len(encoded) {
		dLat, n, err := readSigned(encoded[i:])
		if err != nil {
			return nil, err
		}
		i += n

		dLon, n, err := readSigned(encoded[i:])
		if err != nil {
			return nil, err
		}
		i += n

		lat += dLat
		lon += dLon
		points = append(points, Point{
			Lat: float64(lat) / polylineScale,
			Lon: float64(lon) / polylineScale,
		})
	}

	return points, nil
}

// writeSigned zig-zag encodes v and emits it in 5-bit groups, least
// significant first. Every group except the last is OR'd with 0x20; each
// group is offset by 63 into printable ASCII.
func writeSigned(sb *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte(0x20|(u&0x1f)) + 63)
		u >>= 5
	}
	sb.WriteByte(byte(u) + 63)
}

func readSigned(s string) (int, int, error) {
	u, shift := 0, 0
	for i := 0; i < len(s); i++ {
		c := int(s[i]) - 63
		if c < 0 {
			return 0, 0, fmt.Errorf("invalid polyline byte %q", s[i])
		}
		u |= (c & 0x1f) << shift
		shift += 5
		if c < 0x20 {
			v := u >> 1
			if u&1 != 0 {
				v = ^v
			}
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("truncated polyline chunk")
}
