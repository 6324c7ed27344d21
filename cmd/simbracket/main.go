package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/Tencide/matsim/internal/simrun"
)

// Default configuration constants.
const (
	defaultNumRuns         = 1000
	defaultBracketSize     = 8
	defaultWorkers         = 2 // multiplier for runtime.NumCPU()
	defaultTimeout         = 30 * time.Second
	defaultExerciseTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numRuns     = flag.Int("runs", defaultNumRuns, "Number of bracket runs to submit")
		bracketSize = flag.Int("size", defaultBracketSize, "Bracket size for generated runs (8 or 16)")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for submitted runs (default: submitted_runs_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for exercise output (default: simrun_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simrun.ShowHelp()
		return
	}

	if *bracketSize != 8 && *bracketSize != 16 {
		os.Stderr.WriteString("bracket size must be 8 or 16\n")
		return
	}

	// Setup logging
	if err := simrun.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultExerciseTimeout)
	defer cancel()

	// Create exercise configuration
	config := &simrun.Config{
		BaseURL:     *baseURL,
		NumRuns:     *numRuns,
		BracketSize: *bracketSize,
		Workers:     *workers,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the exercise
	if err := simrun.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Exercise failed: " + err.Error() + "\n")
		return
	}
}
