package simrun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitRuns submits bracket runs concurrently using worker pools
func submitRuns(ctx context.Context, config *Config, runs []RunSubmission, stats *Stats) error {
	log.Printf("📤 Submitting %d bracket runs with %d workers...", len(runs), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/brackets"

	// Counters for statistics
	var (
		successful int64
		failed     int64
		submitted  int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	runChan := make(chan RunSubmission, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for run := range runChan {
				select {
				case <-ctx.Done():
					return
				default:
					ok := submitSingleRun(client, url, run)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					if ok {
						atomic.AddInt64(&successful, 1)
					} else {
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (accepted: %d, failed: %d)",
								total, len(runs), succ, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (accepted: %d, failed: %d)",
								total, len(runs), succ, fail)
						}
					}
				}
			}
		}()
	}

	// Send runs to workers
	go func() {
		defer close(runChan)
		for _, run := range runs {
			select {
			case <-ctx.Done():
				return
			case runChan <- run:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.RunsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RunsSuccessful = int(atomic.LoadInt64(&successful))
	stats.RunsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Run submission completed:
   Accepted: %d
   Failed: %d
`, stats.RunsSuccessful, stats.RunsFailed)

	return nil
}

// submitSingleRun submits a single run and reports whether it was accepted
func submitSingleRun(client *HTTPClient, url string, run RunSubmission) bool {
	resp, err := client.Post(url, run)
	if err != nil {
		return false
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return false
	}

	if resp.StatusCode != StatusAccepted {
		return false
	}

	var ack AckResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return false
	}
	return ack.Status == "accepted"
}
