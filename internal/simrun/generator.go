package simrun

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/Tencide/matsim/pkg/logger"
	"github.com/google/uuid"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	archetypeDivisor   = 4
)

// Constants for player rating ranges.
const (
	journeymanMin   = 55.0
	journeymanRange = 10.0
	contenderMin    = 65.0
	contenderRange  = 10.0
	eliteMin        = 78.0
	eliteRange      = 12.0
	longshotMin     = 40.0
	longshotRange   = 12.0
)

// Constants for archetype cases.
const (
	caseJourneyman = 0
	caseContender  = 1
	caseElite      = 2
	caseLongshot   = 3
)

// Baseline player condition.
const (
	fullEnergy   = 100.0
	healthyMin   = 80.0
	healthyRange = 20.0
	ratingSpread = 8.0
	ratingHalf   = 4.0
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateRuns creates the specified number of run submissions with unique
// run IDs and varied player archetypes.
func generateRuns(ctx context.Context, config *Config, stats *Stats) ([]RunSubmission, error) {
	logger.Get().Info(ctx, "generating bracket runs", logger.Int("numRuns", config.NumRuns), logger.Int("bracketSize", config.BracketSize))

	runs := make([]RunSubmission, config.NumRuns)

	runIDs := make([]string, config.NumRuns)
	for i := 0; i < config.NumRuns; i++ {
		runIDs[i] = uuid.New().String()
	}

	type runResult struct {
		index int
		run   RunSubmission
		err   error
	}

	resultChan := make(chan runResult, config.NumRuns)

	// Use worker pool for run generation
	workerCount := minInt(config.Workers, config.NumRuns)
	runsPerWorker := config.NumRuns / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * runsPerWorker
		end := start + runsPerWorker
		if worker == workerCount-1 {
			end = config.NumRuns // Last worker gets remaining runs
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- runResult{index: i, err: ctx.Err()}
					return
				default:
					run := generateSingleRun(runIDs[i], config.BracketSize)
					resultChan <- runResult{index: i, run: run, err: nil}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumRuns; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during run generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate run %d: %w", result.index, result.err)
			}
			runs[result.index] = result.run
		}
	}

	stats.RunsGenerated = len(runs)
	logger.Get().Info(ctx, "generated runs successfully", logger.Int("count", len(runs)))

	return runs, nil
}

// generateSingleRun creates a single run submission with a varied player.
func generateSingleRun(runID string, bracketSize int) RunSubmission {
	rating := generateVariedRating()

	return RunSubmission{
		RunID:       runID,
		Seed:        uuid.New().String(),
		BracketSize: bracketSize,
		Player: PlayerPayload{
			Technique:     jitter(rating),
			MatIQ:         jitter(rating),
			Conditioning:  jitter(rating),
			Strength:      jitter(rating),
			Speed:         jitter(rating),
			Flexibility:   jitter(rating),
			Energy:        fullEnergy,
			Health:        healthyMin + getRandomFloat()*healthyRange,
			OverallRating: rating,
		},
	}
}

// generateVariedRating draws an overall rating from one of four archetypes
// so the exercise covers favorites, peers, and longshots.
func generateVariedRating() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(archetypeDivisor))

	switch n.Int64() {
	case caseJourneyman:
		return journeymanMin + getRandomFloat()*journeymanRange
	case caseContender:
		return contenderMin + getRandomFloat()*contenderRange
	case caseElite:
		return eliteMin + getRandomFloat()*eliteRange
	case caseLongshot:
		return longshotMin + getRandomFloat()*longshotRange
	default:
		return contenderMin + getRandomFloat()*contenderRange
	}
}

// jitter spreads an attribute around the overall rating.
func jitter(rating float64) float64 {
	v := rating + getRandomFloat()*ratingSpread - ratingHalf
	if v < 1 {
		v = 1
	}
	if v > 99 {
		v = 99
	}
	return v
}

// minInt returns the smaller of two ints.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
