package track

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gogpx "github.com/tkrajina/gpxgo/gpx"
)

const (
	creatorName     = "HikeAndRun"
	authorName      = "Nicolas Seriot"
	copyrightHolder = "seriot.ch"

	// RaceMarker flags a tour ID as a race, which changes title
	// decoration, date precision and index sort order.
	RaceMarker = "_"
)

// IsRace reports whether a tour ID carries the race marker.
func IsRace(tourID string) bool {
	return strings.HasPrefix(tourID, RaceMarker)
}

// Title synthesizes the canonical display title for a tour. Races get a
// flag prefix, plus the year when a date is known.
func Title(tourID string, date time.Time) string {
	if !IsRace(tourID) {
		return tourID
	}
	if date.IsZero() {
		return "🏁 " + tourID
	}
	return fmt.Sprintf("🏁 %d - %s", date.Year(), tourID)
}

// DateKeywords formats the metadata date string. Races keep the exact
// calendar date; regular tours only record month and year. The index
// sort-key parser relies on this distinction.
func DateKeywords(tourID string, date time.Time) string {
	if date.IsZero() {
		return ""
	}
	if IsRace(tourID) {
		return date.Format("2006-01-02")
	}
	return date.Format("January 2006")
}

// BuildCanonical assembles the canonical GPX document for a tour from a
// merge result. Point times are intentionally dropped; only lat, lon and
// elevation survive into the published file.
func BuildCanonical(res MergeResult, tourID string, now time.Time) *gogpx.GPX {
	title := Title(tourID, res.EarliestTime)

	doc := &gogpx.GPX{
		Version:       "1.1",
		Creator:       creatorName,
		Name:          title,
		Description:   "",
		AuthorName:    authorName,
		Copyright:     copyrightHolder,
		CopyrightYear: strconv.Itoa(now.Year()),
		Keywords:      DateKeywords(tourID, res.EarliestTime),
	}

	for _, t := range res.Tracks {
		name := t.Name
		if name == "" {
			name = title
		}
		gt := gogpx.GPXTrack{Name: name}
		for _, seg := range t.Segments {
			if len(seg) == 0 {
				continue
			}
			gs := gogpx.GPXTrackSegment{Points: make([]gogpx.GPXPoint, 0, len(seg))}
			for _, p := range seg {
				gp := gogpx.GPXPoint{Point: gogpx.Point{Latitude: p.Lat, Longitude: p.Lon}}
				if p.Elevation != nil {
					gp.Elevation = *gogpx.NewNullableFloat64(*p.Elevation)
				}
				gs.Points = append(gs.Points, gp)
			}
			gt.Segments = append(gt.Segments, gs)
		}
		doc.Tracks = append(doc.Tracks, gt)
	}

	return doc
}

// WriteCanonical serializes the document as GPX 1.1 with an XML
// declaration and writes it to path.
func WriteCanonical(doc *gogpx.GPX, path string) error {
	data, err := doc.ToXml(gogpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return fmt.Errorf("serialize gpx: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
