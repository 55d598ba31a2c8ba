// Package config loads the pipeline configuration from a YAML file and
// validates it, falling back to the stock layout when no file is given.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every path and tuning knob of the build pipeline.
type Config struct {
	// SourceRoot contains <category>/<tour_id> directories with raw GPX
	// recordings. Its absence is the only fatal input condition.
	SourceRoot string `yaml:"source_root" validate:"required"`
	// PublishRoot receives canonical GPX files, photos and tours.json.
	PublishRoot string `yaml:"publish_root" validate:"required"`
	// TrashDir receives raw inputs after a successful merge.
	TrashDir string `yaml:"trash_dir" validate:"required"`
	// MarkerFile gates incremental publishing by its modification time.
	MarkerFile string `yaml:"marker_file" validate:"required"`

	// DedupeTolerance is the near-duplicate threshold in degrees.
	DedupeTolerance float64 `yaml:"dedupe_tolerance" validate:"gte=0"`
	// SummaryEpsilon is the simplification tolerance for cached summaries.
	SummaryEpsilon float64 `yaml:"summary_epsilon" validate:"gte=0"`
}

// Default returns the stock configuration matching the published site
// layout.
func Default() Config {
	return Config{
		SourceRoot:      "src",
		PublishRoot:     filepath.Join("hike_and_run", "tours"),
		TrashDir:        defaultTrashDir(),
		MarkerFile:      "last_copy.txt",
		DedupeTolerance: 1e-4,
		SummaryEpsilon:  2e-4,
	}
}

// Load reads and validates the configuration at path. An empty path
// yields the defaults. File values override defaults field by field.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func defaultTrashDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trash"
	}
	return filepath.Join(home, ".Trash")
}
