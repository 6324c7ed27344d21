package simrun

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Tencide/matsim/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simrun_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the bracket run tool.
func ShowHelp() {
	os.Stdout.WriteString(`Matsim Bracket Run Tool
=======================

A concurrent tool for exercising the matsim bracket simulation service.

Usage:
  go run cmd/simbracket/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -runs int
        Number of bracket runs to submit (default 1000)
  -size int
        Bracket size for generated runs, 8 or 16 (default 8)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for submitted runs (default: submitted_runs_TIMESTAMP.json)
  -log string
        Log file for exercise output (default: simrun_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Exercise with default settings
  go run cmd/simbracket/main.go

  # Exercise with custom parameters
  go run cmd/simbracket/main.go -runs 5000 -workers 16 -url http://localhost:8080

  # 16-man brackets with verbose output
  go run cmd/simbracket/main.go -verbose -runs 1000 -size 16
`)
}
