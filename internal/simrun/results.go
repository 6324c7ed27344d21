package simrun

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveResults polls the service for every submitted run until each
// record is available or the poll window expires.
func retrieveResults(ctx context.Context, config *Config, runs []RunSubmission, stats *Stats) ([]RunResult, error) {
	log.Printf("🏆 Retrieving results for %d runs with %d workers...", len(runs), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	results := make([]RunResult, len(runs))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	runChan := make(chan int, config.Workers*WorkerChannelMultiplier) // Send indices instead of IDs
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range runChan {
				select {
				case <-ctx.Done():
					return
				default:
					runID := runs[index].RunID
					result, err := pollSingleResult(ctx, client, config.BaseURL, runID)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get result for %s: %v", runID, err)
						}
					} else {
						results[index] = result
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Result progress: %d/%d retrieved (success: %d, failed: %d)",
								total, len(runs), ret, fail)
						} else {
							log.Printf("\r🏆 Results: %d/%d retrieved (success: %d, failed: %d)",
								total, len(runs), ret, fail)
						}
					}
				}
			}
		}()
	}

	// Send run indices to workers
	go func() {
		defer close(runChan)
		for i := range runs {
			select {
			case <-ctx.Done():
				return
			case runChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Filter out empty entries (failed retrievals)
	validResults := make([]RunResult, 0, len(results))
	for _, result := range results {
		if result.RunID != "" { // Empty RunID indicates failed retrieval
			validResults = append(validResults, result)
		}
	}

	// Update stats
	stats.RunsRetrieved = len(validResults)

	log.Printf(`✅ Result retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validResults), int(atomic.LoadInt64(&failed)))

	return validResults, nil
}

// pollSingleResult fetches one run record, retrying until the worker pool
// has completed it or the poll window expires.
func pollSingleResult(ctx context.Context, client *HTTPClient, baseURL, runID string) (RunResult, error) {
	url := fmt.Sprintf("%s/brackets/%s", baseURL, runID)
	deadline := time.Now().Add(ResultPollTimeout)

	for {
		result, err := fetchResult(client, url)
		if err == nil {
			return result, nil
		}
		if time.Now().After(deadline) {
			return RunResult{}, fmt.Errorf("poll window expired for %s: %w", runID, err)
		}

		select {
		case <-ctx.Done():
			return RunResult{}, fmt.Errorf("context cancelled while polling %s: %w", runID, ctx.Err())
		case <-time.After(ResultPollInterval):
		}
	}
}

// fetchResult performs one GET for a run record.
func fetchResult(client *HTTPClient, url string) (RunResult, error) {
	resp, err := client.Get(url)
	if err != nil {
		return RunResult{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return RunResult{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result RunResult
	if err := json.Unmarshal(body, &result); err != nil {
		return RunResult{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}
