package track

import (
	"strconv"
	"strings"
	"testing"
	"time"

	gogpx "github.com/tkrajina/gpxgo/gpx"
)

func ptr(v float64) *float64 { return &v }

func TestTitle(t *testing.T) {
	date := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		tourID string
		date   time.Time
		want   string
	}{
		{"Matterhorn", date, "Matterhorn"},
		{"Matterhorn", time.Time{}, "Matterhorn"},
		{"_Geneva10k", date, "🏁 2024 - _Geneva10k"},
		{"_Geneva10k", time.Time{}, "🏁 _Geneva10k"},
	}
	for _, c := range cases {
		if got := Title(c.tourID, c.date); got != c.want {
			t.Errorf("Title(%q) = %q, want %q", c.tourID, got, c.want)
		}
	}
}

func TestDateKeywords(t *testing.T) {
	date := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	if got := DateKeywords("_Geneva10k", date); got != "2024-03-10" {
		t.Fatalf("race keywords = %q", got)
	}
	if got := DateKeywords("Matterhorn", date); got != "March 2024" {
		t.Fatalf("tour keywords = %q", got)
	}
	if got := DateKeywords("Matterhorn", time.Time{}); got != "" {
		t.Fatalf("dateless keywords = %q", got)
	}
}

func TestBuildCanonicalStripsTimeAndKeepsElevation(t *testing.T) {
	res := MergeResult{
		Tracks: []Track{{
			Name: "Morning climb",
			Segments: []Segment{{
				{Lat: 46.0, Lon: 7.0, Elevation: ptr(1000), Time: time.Now()},
				{Lat: 46.001, Lon: 7.001, Elevation: ptr(1200), Time: time.Now()},
			}},
		}, {
			// Unnamed track falls back to the synthesized title.
			Segments: []Segment{{
				{Lat: 46.002, Lon: 7.002, Elevation: ptr(1100)},
			}},
		}},
		EarliestTime: time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC),
	}

	doc := BuildCanonical(res, "Matterhorn", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	if doc.Name != "Matterhorn" {
		t.Fatalf("metadata name = %q", doc.Name)
	}
	if doc.Keywords != "May 2023" {
		t.Fatalf("keywords = %q", doc.Keywords)
	}
	if doc.CopyrightYear != "2026" {
		t.Fatalf("copyright year = %q", doc.CopyrightYear)
	}
	if len(doc.Tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(doc.Tracks))
	}
	if doc.Tracks[1].Name != "Matterhorn" {
		t.Fatalf("unnamed track = %q", doc.Tracks[1].Name)
	}

	data, err := doc.ToXml(gogpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		t.Fatal(err)
	}
	xml := string(data)
	if !strings.Contains(xml, `xmlns="http://www.topografix.com/GPX/1/1"`) {
		t.Fatal("missing GPX 1.1 namespace")
	}

	reparsed, err := ParseBytes(data, "canonical.gpx")
	if err != nil {
		t.Fatal(err)
	}

	total := 0
	for _, trk := range reparsed.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg {
				total++
				if !p.Time.IsZero() {
					t.Fatalf("point time survived into canonical output: %+v", p)
				}
				if p.Elevation == nil {
					t.Fatalf("elevation lost: %+v", p)
				}
			}
		}
	}
	if total != 3 {
		t.Fatalf("got %d points, want 3", total)
	}
	if !reparsed.FirstTime.IsZero() {
		t.Fatalf("canonical output still carries a timestamp: %s", reparsed.FirstTime)
	}
}

func TestBuildCanonicalFromMergedFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeGpx(t, dir, "a.gpx", gpxWithTrack)
	b := writeGpx(t, dir, "b.gpx", gpxNoMetadataTime)

	res := MergeFiles([]string{a, b}, DefaultTolerance)
	doc := BuildCanonical(res, "Matterhorn", time.Now())

	if doc.Name != "Matterhorn" {
		t.Fatalf("title = %q", doc.Name)
	}
	if doc.Keywords != "May 2023" {
		t.Fatalf("keywords = %q", doc.Keywords)
	}
	if y, err := strconv.Atoi(doc.CopyrightYear); err != nil || y < 2024 {
		t.Fatalf("copyright year = %q", doc.CopyrightYear)
	}
}
