package track

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const gpxWithTrack = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="test">
  <metadata><time>2023-05-01T07:30:00Z</time></metadata>
  <trk>
    <name>Morning climb</name>
    <trkseg>
      <trkpt lat="46.0" lon="7.0"><ele>1000</ele><time>2023-05-01T08:00:00Z</time></trkpt>
      <trkpt lat="46.001" lon="7.001"><ele>1200</ele><time>2023-05-01T08:05:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

const gpxNoMetadataTime = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="test">
  <trk>
    <trkseg>
      <trkpt lat="46.002" lon="7.002"><ele>1100</ele><time>2023-05-01T08:10:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

const gpxWaypointsOnly = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="test">
  <wpt lat="47.0" lon="8.0"><ele>500</ele></wpt>
  <wpt lat="47.1" lon="8.1"></wpt>
</gpx>`

func writeGpx(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFileTrack(t *testing.T) {
	path := writeGpx(t, t.TempDir(), "a.gpx", gpxWithTrack)

	f, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(f.Tracks))
	}

	trk := f.Tracks[0]
	if trk.Name != "Morning climb" {
		t.Fatalf("track name = %q", trk.Name)
	}
	if trk.SourceFile != "a.gpx" {
		t.Fatalf("source file = %q", trk.SourceFile)
	}
	if len(trk.Segments) != 1 || len(trk.Segments[0]) != 2 {
		t.Fatalf("unexpected segment shape: %+v", trk.Segments)
	}

	p := trk.Segments[0][0]
	if p.Lat != 46.0 || p.Lon != 7.0 {
		t.Fatalf("point = %+v", p)
	}
	if p.Elevation == nil || *p.Elevation != 1000 {
		t.Fatalf("elevation = %v", p.Elevation)
	}
	if p.Time.IsZero() {
		t.Fatal("point time missing")
	}
}

func TestParseFileNameFallsBackToFileStem(t *testing.T) {
	path := writeGpx(t, t.TempDir(), "afternoon.gpx", gpxNoMetadataTime)

	f, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Tracks) != 1 || f.Tracks[0].Name != "afternoon" {
		t.Fatalf("tracks = %+v", f.Tracks)
	}
}

func TestParseFileWaypointFallback(t *testing.T) {
	path := writeGpx(t, t.TempDir(), "summits.gpx", gpxWaypointsOnly)

	f, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(f.Tracks))
	}
	trk := f.Tracks[0]
	if trk.Name != "summits (from waypoints)" {
		t.Fatalf("track name = %q", trk.Name)
	}
	if len(trk.Segments) != 1 || len(trk.Segments[0]) != 2 {
		t.Fatalf("unexpected segment shape: %+v", trk.Segments)
	}
	if trk.Segments[0][0].Elevation == nil || *trk.Segments[0][0].Elevation != 500 {
		t.Fatalf("elevation not preserved: %+v", trk.Segments[0][0])
	}
	if trk.Segments[0][1].Elevation != nil {
		t.Fatalf("second waypoint should have no elevation: %+v", trk.Segments[0][1])
	}
}

func TestFirstTimePrefersMetadata(t *testing.T) {
	dir := t.TempDir()

	f, err := ParseFile(writeGpx(t, dir, "a.gpx", gpxWithTrack))
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2023, 5, 1, 7, 30, 0, 0, time.UTC)
	if !f.FirstTime.Equal(want) {
		t.Fatalf("first time = %s, want %s", f.FirstTime, want)
	}

	f, err = ParseFile(writeGpx(t, dir, "b.gpx", gpxNoMetadataTime))
	if err != nil {
		t.Fatal(err)
	}
	want = time.Date(2023, 5, 1, 8, 10, 0, 0, time.UTC)
	if !f.FirstTime.Equal(want) {
		t.Fatalf("first time = %s, want %s", f.FirstTime, want)
	}

	f, err = ParseFile(writeGpx(t, dir, "c.gpx", gpxWaypointsOnly))
	if err != nil {
		t.Fatal(err)
	}
	if !f.FirstTime.IsZero() {
		t.Fatalf("first time = %s, want zero", f.FirstTime)
	}
}

func TestParseFileRejectsBrokenDocument(t *testing.T) {
	path := writeGpx(t, t.TempDir(), "broken.gpx", "<gpx><trk>")
	if _, err := ParseFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}
