// Package stats derives the cached per-tour summary (simplified polyline
// and peak elevation) from a canonical GPX file and persists it next to
// the source, keyed purely on modification times.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nseriot/hikeandrun/internal/geo"
	"github.com/nseriot/hikeandrun/internal/track"
)

// SummaryEpsilon is the simplification tolerance (degrees) for cached
// summaries.
const SummaryEpsilon = 2e-4

// Stats is the cached summary record, stored as polyline.json beside the
// canonical GPX.
type Stats struct {
	SummaryPolyline string `json:"summary_polyline"`
	MaxElevation    int    `json:"max_elevation"`
}

// Stale reports whether the cache must be recomputed: it is when the
// cache file is absent or the canonical file is strictly newer. The cache
// is never invalidated on content, only on modification time.
func Stale(canonicalPath, cachePath string) (bool, error) {
	src, err := os.Stat(canonicalPath)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", canonicalPath, err)
	}
	cache, err := os.Stat(cachePath)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", cachePath, err)
	}
	return src.ModTime().After(cache.ModTime()), nil
}

// Compute derives the summary for a canonical GPX file. ok is false when
// the file yields no usable points; such a tour has nothing to publish.
func Compute(canonicalPath string, epsilon float64) (s Stats, ok bool, err error) {
	f, err := track.ParseFile(canonicalPath)
	if err != nil {
		return Stats{}, false, err
	}

	points := track.FlattenLatLon(f.Tracks)
	if len(points) == 0 {
		return Stats{}, false, nil
	}

	return Stats{
		SummaryPolyline: geo.EncodePolyline(geo.Simplify(points, epsilon)),
		MaxElevation:    int(track.MaxElevation(f.Tracks)),
	}, true, nil
}

// GetOrCompute returns the summary for canonicalPath, recomputing and
// rewriting the cache only when it is stale. refreshed reports whether a
// recomputation happened; ok is false when the canonical track has no
// usable points.
func GetOrCompute(canonicalPath, cachePath string, epsilon float64) (s Stats, ok, refreshed bool, err error) {
	stale, err := Stale(canonicalPath, cachePath)
	if err != nil {
		return Stats{}, false, false, err
	}

	if !stale {
		if s, err := Read(cachePath); err == nil {
			return s, true, false, nil
		}
		// Unreadable cache falls through to a recompute.
	}

	s, ok, err = Compute(canonicalPath, epsilon)
	if err != nil || !ok {
		return Stats{}, false, false, err
	}
	if err := Write(cachePath, s); err != nil {
		return Stats{}, false, false, err
	}
	return s, true, true, nil
}

// Read loads a cache record.
func Read(path string) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, err
	}
	var s Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return Stats{}, fmt.Errorf("parse cache %s: %w", path, err)
	}
	return s, nil
}

// Write persists a cache record.
func Write(path string, s Stats) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	return nil
}
