package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nseriot/hikeandrun/internal/pipeline"
	"github.com/spf13/pflag"
)

func main() {
	var opts pipeline.Options

	pflag.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file (defaults to the stock layout)")
	pflag.BoolVarP(&opts.SkipImages, "skip-images", "s", false, "Skip copying photos to the publish tree")
	pflag.StringVarP(&opts.LogLevel, "log-level", "l", "info", "Logging level for the log file")
	pflag.StringVar(&opts.LogFile, "log-file", "", "Optional log file path (defaults to a file next to the binary)")

	pflag.Parse()

	opts.PrintSummary = true

	ctx := context.Background()
	if _, err := pipeline.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "hikeandrun failed: %v\n", err)
		os.Exit(1)
	}
}
