package track

import (
	"math"
	"time"
)

// DefaultTolerance is the near-duplicate threshold in degrees, roughly
// eleven meters of latitude.
const DefaultTolerance = 1e-4

// Failure records a source file that could not be parsed during a merge.
type Failure struct {
	Path string
	Err  error
}

// MergeResult is the outcome of merging an ordered list of GPX files.
type MergeResult struct {
	Tracks []Track
	// EarliestTime is the minimum first-timestamp across all input files,
	// regardless of their order. Zero when no file carried a timestamp.
	EarliestTime time.Time
	// SourceFiles lists the base names of files that contributed at least
	// one track, in input order.
	SourceFiles []string
	// Removed counts near-duplicate points dropped by deduplication.
	Removed int
	// Failures lists files skipped because they failed to parse. They do
	// not abort the merge.
	Failures []Failure
}

// MergeFiles parses each path in the order given and concatenates the
// resulting tracks, then removes near-duplicate consecutive points within
// each segment. The caller-supplied ordering is preserved end to end; it
// determines track order in the canonical output.
func MergeFiles(paths []string, tolerance float64) MergeResult {
	var res MergeResult

	for _, path := range paths {
		f, err := ParseFile(path)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Path: path, Err: err})
			continue
		}
		if len(f.Tracks) == 0 {
			continue
		}

		res.Tracks = append(res.Tracks, f.Tracks...)
		res.SourceFiles = append(res.SourceFiles, f.Tracks[0].SourceFile)

		if !f.FirstTime.IsZero() && (res.EarliestTime.IsZero() || f.FirstTime.Before(res.EarliestTime)) {
			res.EarliestTime = f.FirstTime
		}
	}

	res.Removed = Deduplicate(res.Tracks, tolerance)
	return res
}

// Deduplicate drops points that sit within tolerance degrees (both axes)
// of the previously retained point of the same segment. It is a streaming
// single-pass filter: only adjacent retained points are compared, so
// near-duplicates separated by a distinct point survive. Returns the
// number of points removed.
func Deduplicate(tracks []Track, tolerance float64) int {
	removed := 0
	for ti := range tracks {
		for si := range tracks[ti].Segments {
			seg := tracks[ti].Segments[si]
			if len(seg) == 0 {
				continue
			}
			kept := seg[:1]
			for _, p := range seg[1:] {
				last := kept[len(kept)-1]
				if math.Abs(p.Lat-last.Lat) < tolerance && math.Abs(p.Lon-last.Lon) < tolerance {
					removed++
					continue
				}
				kept = append(kept, p)
			}
			tracks[ti].Segments[si] = kept
		}
	}
	return removed
}
