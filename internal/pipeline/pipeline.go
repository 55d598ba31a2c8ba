// Package pipeline sequences the whole build: merge raw recordings into
// canonical tours, refresh the stats cache, publish artifacts
// incrementally and regenerate the index.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nir0k/logger"
	"github.com/nseriot/hikeandrun/internal/config"
	"github.com/nseriot/hikeandrun/internal/index"
	"github.com/nseriot/hikeandrun/internal/stats"
	"github.com/nseriot/hikeandrun/internal/track"
)

const cacheFileName = "polyline.json"

// Summary aggregates per-run counters.
type Summary struct {
	ToursMerged   int
	FilesMerged   int
	PointsRemoved int
	CacheUpdates  int
	Copies        int
	Categories    int
	ToursIndexed  int
	Failed        int
}

// Run executes the three pipeline phases over the configured source tree.
// Per-file and per-tour problems are logged and skipped; only a missing
// source root aborts the run. The incremental-copy marker is rewritten
// only when the whole run succeeds.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logCfg := logger.LogConfig{
		FilePath:       opts.LogFile,
		Format:         "standard",
		FileLevel:      opts.LogLevel,
		ConsoleLevel:   "fatal",
		ConsoleOutput:  false,
		EnableRotation: true,
		RotationConfig: logger.RotationConfig{
			MaxSize:    25,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
	}
	logInstance, err := logger.NewLogger(logCfg)
	if err != nil {
		return nil, err
	}

	infof := logInstance.Infof
	warnf := logInstance.Warningf
	errorf := logInstance.Errorf

	infof("Starting build with source=%s publish=%s skipImages=%t", cfg.SourceRoot, cfg.PublishRoot, opts.SkipImages)

	if _, err := os.Stat(cfg.SourceRoot); err != nil {
		return nil, fmt.Errorf("source root %s: %w", cfg.SourceRoot, err)
	}

	r := &runner{
		cfg:     cfg,
		opts:    opts,
		infof:   infof,
		warnf:   warnf,
		errorf:  errorf,
		summary: &Summary{},
	}

	if err := r.processSource(ctx); err != nil {
		return nil, err
	}
	if err := r.publish(ctx); err != nil {
		return nil, err
	}
	if err := r.buildIndex(ctx); err != nil {
		return nil, err
	}

	// Touching the marker last makes the incremental-copy decision atomic
	// per run: a crash leaves it stale and the next run re-copies.
	if err := os.WriteFile(cfg.MarkerFile, []byte("timestamp"), 0o644); err != nil {
		return nil, fmt.Errorf("write marker %s: %w", cfg.MarkerFile, err)
	}

	s := r.summary
	line := fmt.Sprintf("Finished. merged=%d files=%d removed_points=%d cache_updates=%d copies=%d categories=%d indexed=%d failed=%d",
		s.ToursMerged, s.FilesMerged, s.PointsRemoved, s.CacheUpdates, s.Copies, s.Categories, s.ToursIndexed, s.Failed)
	if opts.PrintSummary {
		fmt.Println(line)
	}
	infof("%s", line)
	return s, nil
}

type runner struct {
	cfg     config.Config
	opts    Options
	infof   func(string, ...interface{})
	warnf   func(string, ...interface{})
	errorf  func(string, ...interface{})
	summary *Summary
}

// processSource is phase 1: generate missing canonical files, trash their
// raw inputs and refresh stale stats caches, tour by tour.
func (r *runner) processSource(ctx context.Context) error {
	categories, err := subdirs(r.cfg.SourceRoot)
	if err != nil {
		return err
	}

	for _, category := range categories {
		catPath := filepath.Join(r.cfg.SourceRoot, category)
		tours, err := subdirs(catPath)
		if err != nil {
			return err
		}

		for _, tourID := range tours {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			r.processTour(filepath.Join(catPath, tourID), tourID)
		}
	}
	return nil
}

func (r *runner) processTour(tourPath, tourID string) {
	canonical := filepath.Join(tourPath, tourID+".gpx")
	cachePath := filepath.Join(tourPath, cacheFileName)

	if _, err := os.Stat(canonical); err != nil {
		raws, err := rawInputs(tourPath, tourID)
		if err != nil {
			r.errorf("Listing raw files for %s: %v", tourID, err)
			r.summary.Failed++
			return
		}
		if len(raws) > 0 {
			r.infof("Generating %s from %d raw files", tourID, len(raws))
			if !r.mergeTour(raws, canonical, tourID) {
				return
			}
		}
	}

	if _, err := os.Stat(canonical); err != nil {
		return
	}

	_, ok, refreshed, err := stats.GetOrCompute(canonical, cachePath, r.cfg.SummaryEpsilon)
	if err != nil {
		r.errorf("Stats failed for %s: %v", tourID, err)
		r.summary.Failed++
		return
	}
	if !ok {
		r.warnf("No usable points in %s, tour will not be indexed", canonical)
		return
	}
	if refreshed {
		r.summary.CacheUpdates++
		r.infof("Cached stats for %s", tourID)
	}
}

func (r *runner) mergeTour(raws []string, canonical, tourID string) bool {
	res := track.MergeFiles(raws, r.cfg.DedupeTolerance)
	for _, f := range res.Failures {
		r.warnf("Skipping %s: %v", f.Path, f.Err)
	}
	if len(res.Tracks) == 0 {
		r.warnf("No tracks or waypoints found for %s", tourID)
		return false
	}
	if res.Removed > 0 {
		r.infof("Removed %d duplicate points for %s", res.Removed, tourID)
	}

	doc := track.BuildCanonical(res, tourID, time.Now())
	if err := track.WriteCanonical(doc, canonical); err != nil {
		r.errorf("Failed to create GPX for %s: %v", tourID, err)
		r.summary.Failed++
		return false
	}

	r.summary.ToursMerged++
	r.summary.FilesMerged += len(raws)
	r.summary.PointsRemoved += res.Removed
	r.trashRawFiles(raws, tourID)
	return true
}

// trashRawFiles moves merged inputs out of the source tree. A failed move
// is a warning only; the canonical file already exists.
func (r *runner) trashRawFiles(raws []string, tourID string) {
	if err := os.MkdirAll(r.cfg.TrashDir, 0o755); err != nil {
		r.warnf("Cannot create trash dir %s: %v", r.cfg.TrashDir, err)
		return
	}
	r.infof("Moving %d raw files to %s", len(raws), r.cfg.TrashDir)
	for _, raw := range raws {
		dst := filepath.Join(r.cfg.TrashDir, tourID+"_"+filepath.Base(raw))
		if err := os.Rename(raw, dst); err != nil {
			r.warnf("Failed to trash %s: %v", raw, err)
		}
	}
}

// buildIndex is phase 3: assemble tours.json from published canonical
// files and source-side caches. The index is rebuilt wholesale each run.
func (r *runner) buildIndex(ctx context.Context) error {
	categories, err := subdirs(r.cfg.SourceRoot)
	if err != nil {
		return err
	}

	var blocks []index.Category
	for _, category := range categories {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		catPath := filepath.Join(r.cfg.SourceRoot, category)
		tours, err := subdirs(catPath)
		if err != nil {
			return err
		}

		var entries []index.Tour
		for _, tourID := range tours {
			webGpx := filepath.Join(r.cfg.PublishRoot, tourID, tourID+".gpx")
			cachePath := filepath.Join(catPath, tourID, cacheFileName)

			if _, err := os.Stat(webGpx); err != nil {
				continue
			}
			cached, err := stats.Read(cachePath)
			if err != nil {
				continue
			}

			name, dateStr, err := track.ReadMetadata(webGpx)
			if err != nil {
				r.warnf("Unreadable metadata in %s: %v", webGpx, err)
				name, dateStr = "", ""
			}

			entries = append(entries, index.NewTour(tourID, name, dateStr, cached.SummaryPolyline, cached.MaxElevation))
		}

		if len(entries) > 0 {
			index.SortTours(entries)
			blocks = append(blocks, index.Category{Name: index.CleanCategoryName(category), Tours: entries})
			r.summary.Categories++
			r.summary.ToursIndexed += len(entries)
		}
	}

	return index.Write(filepath.Join(r.cfg.PublishRoot, "tours.json"), blocks)
}

// rawInputs lists the raw GPX files of a tour directory in lexical
// order, excluding the canonical output.
func rawInputs(tourPath, tourID string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(tourPath, "*.gpx"))
	if err != nil {
		return nil, err
	}
	canonical := tourID + ".gpx"
	raws := matches[:0]
	for _, m := range matches {
		if filepath.Base(m) != canonical {
			raws = append(raws, m)
		}
	}
	return raws, nil
}

// subdirs lists visible subdirectories in lexical order (os.ReadDir
// sorts by name), which fixes the traversal order of categories and
// tours.
func subdirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
