package track

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gogpx "github.com/tkrajina/gpxgo/gpx"
)

// File is the parse result of a single GPX document.
type File struct {
	Tracks []Track
	// FirstTime is the first timestamp found in the document, checking
	// the metadata block before a deep scan of the trackpoints. Zero when
	// the document carries none.
	FirstTime time.Time
}

// ParseFile decodes one GPX document into tracks. A document without any
// tracks but with waypoints yields a single synthesized track holding the
// waypoints as one segment.
func ParseFile(path string) (File, error) {
	doc, err := gogpx.ParseFile(path)
	if err != nil {
		return File{}, fmt.Errorf("parse gpx %s: %w", path, err)
	}
	return fromDocument(doc, path), nil
}

// ParseBytes is ParseFile for in-memory documents; name stands in for the
// file path when deriving fallback track names.
func ParseBytes(data []byte, name string) (File, error) {
	doc, err := gogpx.ParseBytes(data)
	if err != nil {
		return File{}, fmt.Errorf("parse gpx %s: %w", name, err)
	}
	return fromDocument(doc, name), nil
}

// ReadMetadata extracts the document-level name and keywords fields,
// which the canonical writer uses for title and date.
func ReadMetadata(path string) (name, keywords string, err error) {
	doc, err := gogpx.ParseFile(path)
	if err != nil {
		return "", "", fmt.Errorf("parse gpx %s: %w", path, err)
	}
	return doc.Name, doc.Keywords, nil
}

func fromDocument(doc *gogpx.GPX, path string) File {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var tracks []Track
	for _, trk := range doc.Tracks {
		t := Track{Name: trk.Name, SourceFile: base}
		if t.Name == "" {
			t.Name = stem
		}
		for _, seg := range trk.Segments {
			points := convertPoints(seg.Points)
			if len(points) > 0 {
				t.Segments = append(t.Segments, points)
			}
		}
		if len(t.Segments) > 0 {
			tracks = append(tracks, t)
		}
	}

	// A document of bare waypoints still describes an outing; fold them
	// into a synthesized single-segment track.
	if len(tracks) == 0 && len(doc.Waypoints) > 0 {
		points := convertPoints(doc.Waypoints)
		if len(points) > 0 {
			tracks = append(tracks, Track{
				Name:       stem + " (from waypoints)",
				Segments:   []Segment{points},
				SourceFile: base,
			})
		}
	}

	return File{Tracks: tracks, FirstTime: firstTime(doc)}
}

func convertPoints(points []gogpx.GPXPoint) Segment {
	seg := make(Segment, 0, len(points))
	for _, pt := range points {
		p := Point{Lat: pt.Latitude, Lon: pt.Longitude}
		if pt.Elevation.NotNull() {
			v := pt.Elevation.Value()
			p.Elevation = &v
		}
		if !pt.Timestamp.IsZero() {
			p.Time = pt.Timestamp.UTC()
		}
		seg = append(seg, p)
	}
	return seg
}

// firstTime prefers the metadata timestamp, then falls back to the first
// timestamped trackpoint in document order.
func firstTime(doc *gogpx.GPX) time.Time {
	if doc.Time != nil && !doc.Time.IsZero() {
		return doc.Time.UTC()
	}
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				if !pt.Timestamp.IsZero() {
					return pt.Timestamp.UTC()
				}
			}
		}
	}
	return time.Time{}
}
