// Package index assembles the published tours.json: per-category tour
// lists with decorated titles, sorted by the category rules.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nseriot/hikeandrun/internal/track"
)

var (
	yearPattern           = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	categoryPrefixPattern = regexp.MustCompile(`^\d+[\s_-]*`)
)

// Tour is one published index entry. The unexported fields are transient
// sort keys; they never reach the serialized record.
type Tour struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	SummaryPolyline string `json:"summary_polyline"`

	isRace       bool
	maxElevation int
	sortTime     time.Time
}

// Category is one category block of the index, in source traversal order.
type Category struct {
	Name  string `json:"category"`
	Tours []Tour `json:"tours"`
}

// CleanCategoryName strips the leading numeric ordering prefix from a
// category folder name, e.g. "10 Bas Valais" -> "Bas Valais".
func CleanCategoryName(folder string) string {
	return categoryPrefixPattern.ReplaceAllString(folder, "")
}

// NewTour builds an index entry from the canonical metadata and cached
// stats. Race tours whose title does not already carry the flag marker
// get it prepended, with the year when one can be extracted from the
// metadata date string.
func NewTour(tourID, metaName, metaDate, summaryPolyline string, maxElevation int) Tour {
	title := strings.TrimSpace(metaName)
	if title == "" {
		title = tourID
	}

	isRace := track.IsRace(tourID)
	if isRace && !strings.Contains(title, "🏁") {
		if year := yearPattern.FindString(metaDate); year != "" {
			title = fmt.Sprintf("🏁 %s - %s", year, title)
		} else {
			title = "🏁 " + title
		}
	}

	return Tour{
		ID:              tourID,
		Title:           title,
		SummaryPolyline: summaryPolyline,
		isRace:          isRace,
		maxElevation:    maxElevation,
		sortTime:        parseSortTime(metaDate),
	}
}

// parseSortTime derives the date sort key from the metadata date string:
// exact ISO date first (races), then the coarse month-year form.
// Unparsable dates sort as the zero time.
func parseSortTime(dateStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t
	}
	if t, err := time.Parse("January 2006", dateStr); err == nil {
		return t
	}
	return time.Time{}
}

// SortTours orders a category block in place: non-races first by
// descending max elevation, then races by descending date; titles break
// ties ascending.
func SortTours(tours []Tour) {
	sort.SliceStable(tours, func(i, j int) bool {
		a, b := tours[i], tours[j]
		if a.isRace != b.isRace {
			return !a.isRace
		}
		if a.isRace {
			if !a.sortTime.Equal(b.sortTime) {
				return a.sortTime.After(b.sortTime)
			}
		} else if a.maxElevation != b.maxElevation {
			return a.maxElevation > b.maxElevation
		}
		return a.Title < b.Title
	})
}

// Write serializes the index to path. Non-ASCII (the race flag emoji)
// is written verbatim for the front end.
func Write(path string, categories []Category) error {
	if categories == nil {
		categories = []Category{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(categories); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}
	return nil
}
