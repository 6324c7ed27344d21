package simrun

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tencide/matsim/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete bracket run exercise.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting matsim bracket run exercise",
		logger.String("baseURL", config.BaseURL),
		logger.Int("runs", config.NumRuns),
		logger.Int("bracketSize", config.BracketSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate run submissions
	runs, err := generateRuns(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("run generation failed: %w", err)
	}

	// Step 3: Submit runs concurrently
	if err := submitRuns(ctx, config, runs, stats); err != nil {
		return fmt.Errorf("run submission failed: %w", err)
	}

	// Step 4: Poll results concurrently
	results, err := retrieveResults(ctx, config, runs, stats)
	if err != nil {
		return fmt.Errorf("result retrieval failed: %w", err)
	}

	// Step 5: Verify results
	if err := verifyResults(config, results, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 6: Save submitted runs to file
	if err := saveRunsToFile(ctx, config, runs); err != nil {
		logger.Get().Warn(ctx, "failed to save runs to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "exercise completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveRunsToFile saves the submitted runs to a JSON file.
func saveRunsToFile(ctx context.Context, config *Config, runs []RunSubmission) error {
	if len(runs) == 0 {
		return fmt.Errorf("no runs to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "submitted_runs_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write runs to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, run := range runs {
		jsonData, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write run %d: %w", i, err)
		}

		// Add comma except for last run
		if i < len(runs)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "runs saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final exercise statistics.
func displayFinalStats(stats *Stats) {
	var successRate, runsPerSecond float64

	if stats.RunsSubmitted > 0 {
		successRate = float64(stats.RunsSuccessful) / float64(stats.RunsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		runsPerSecond = float64(stats.RunsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("runsGenerated", stats.RunsGenerated),
		logger.Int("runsSubmitted", stats.RunsSubmitted),
		logger.Int("runsSuccessful", stats.RunsSuccessful),
		logger.Int("runsFailed", stats.RunsFailed),
		logger.Int("runsRetrieved", stats.RunsRetrieved),
		logger.Int("runsVerified", stats.RunsVerified),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("runsPerSecond", runsPerSecond))
}
