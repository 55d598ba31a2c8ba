package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options represents user-provided CLI parameters.
type Options struct {
	ConfigPath   string
	SkipImages   bool
	LogLevel     string
	LogFile      string
	PrintSummary bool
}

// Validate performs basic validation and assigns defaults where needed.
func (o *Options) Validate() error {
	o.ConfigPath = strings.TrimSpace(o.ConfigPath)
	o.LogLevel = strings.TrimSpace(o.LogLevel)
	o.LogFile = strings.TrimSpace(o.LogFile)

	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
	if o.LogFile == "" {
		defaultPath, err := defaultLogPath()
		if err != nil {
			return err
		}
		o.LogFile = defaultPath
	}
	return nil
}

func defaultLogPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	dir := filepath.Dir(exe)
	// When running via `go run`, executable resides in temp; prefer current working dir then.
	if strings.HasPrefix(dir, os.TempDir()) {
		cwd, err := os.Getwd()
		if err == nil {
			dir = cwd
		}
	}
	return filepath.Join(dir, "hikeandrun.log"), nil
}
