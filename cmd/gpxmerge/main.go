// gpxmerge merges one or more GPX files into a clean canonical file and
// prints an index-style JSON record to stdout. All diagnostics go to
// stderr, so the output can be piped.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nseriot/hikeandrun/internal/geo"
	"github.com/nseriot/hikeandrun/internal/track"
	"github.com/spf13/pflag"
)

type output struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	SummaryPolyline string `json:"summary_polyline"`
}

func main() {
	epsilon := pflag.Float64("epsilon", 1e-4, "Simplification tolerance in degrees for the summary polyline")
	tolerance := pflag.Float64("tolerance", track.DefaultTolerance, "Near-duplicate point threshold in degrees")
	pflag.Parse()

	patterns := pflag.Args()
	if len(patterns) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: gpxmerge [flags] <file-or-glob>...")
		fmt.Fprintln(os.Stderr, "Merges the given GPX files, writes <name>/<name>.gpx and prints a JSON summary.")
		os.Exit(1)
	}

	paths := expandPatterns(patterns)
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "No GPX files found with the provided patterns.")
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Processing %d GPX files...\n", len(paths))
	res := track.MergeFiles(paths, *tolerance)
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "Error reading GPX file %s: %v\n", f.Path, f.Err)
	}
	if len(res.Tracks) == 0 {
		fmt.Fprintln(os.Stderr, "No valid tracks or waypoints found to process.")
		os.Exit(1)
	}
	if res.Removed > 0 {
		fmt.Fprintf(os.Stderr, "Removed %d duplicate points.\n", res.Removed)
	}

	id := outputName(res.SourceFiles)
	if err := os.MkdirAll(id, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory %s: %v\n", id, err)
		os.Exit(1)
	}

	doc := track.BuildCanonical(res, id, time.Now())
	outPath := filepath.Join(id, id+".gpx")
	if err := track.WriteCanonical(doc, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Exported %d track(s) to %s\n", len(res.Tracks), outPath)

	points := track.FlattenLatLon(res.Tracks)
	encoded := geo.EncodePolyline(geo.Simplify(points, *epsilon))

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(output{ID: id, Title: doc.Name, SummaryPolyline: encoded}); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

// expandPatterns resolves globs and plain paths into a deduplicated,
// order-preserving list of .gpx files. Matches of a single glob are
// sorted; the pattern order itself is the caller's.
func expandPatterns(patterns []string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(path string) {
		if !strings.EqualFold(filepath.Ext(path), ".gpx") {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, pattern := range patterns {
		if strings.ContainsAny(pattern, "*?[") {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Bad pattern %q: %v\n", pattern, err)
				continue
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}
		add(pattern)
	}
	return out
}

// outputName concatenates the contributing base names: one input keeps
// its own name, several are joined with underscores.
func outputName(sourceFiles []string) string {
	stems := make([]string, 0, len(sourceFiles))
	for _, f := range sourceFiles {
		stems = append(stems, strings.TrimSuffix(f, filepath.Ext(f)))
	}
	return strings.Join(stems, "_")
}
