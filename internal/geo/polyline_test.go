package geo

import (
	"math"
	"testing"
)

func TestEncodePolylineReference(t *testing.T) {
	// Reference vector from the polyline format description.
	points := []Point{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}
	got := EncodePolyline(points)
	want := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	if got != want {
		t.Fatalf("EncodePolyline = %q, want %q", got, want)
	}
}

func TestPolylineRoundTrip(t *testing.T) {
	cases := [][]Point{
		{},
		{{Lat: 0, Lon: 0}},
		{{Lat: 46.0, Lon: 7.0}, {Lat: 46.001, Lon: 7.001}, {Lat: 46.002, Lon: 7.002}},
		{{Lat: -0.00001, Lon: 0.00001}, {Lat: 0.00002, Lon: -0.00002}},
		{{Lat: -89.99999, Lon: 179.99999}, {Lat: 89.99999, Lon: -179.99999}},
	}

	for _, points := range cases {
		decoded, err := DecodePolyline(EncodePolyline(points))
		if err != nil {
			t.Fatalf("decode failed for %v: %v", points, err)
		}
		if len(decoded) != len(points) {
			t.Fatalf("round trip length %d, want %d", len(decoded), len(points))
		}
		for i := range points {
			if math.Abs(decoded[i].Lat-points[i].Lat) > 1e-5 || math.Abs(decoded[i].Lon-points[i].Lon) > 1e-5 {
				t.Fatalf("point %d: got %v, want %v", i, decoded[i], points[i])
			}
		}
	}
}

func TestDecodePolylineRejectsGarbage(t *testing.T) {
	if _, err := DecodePolyline("_p~iF~ps|"); err == nil {
		t.Fatal("expected error for truncated input")
	}
}
