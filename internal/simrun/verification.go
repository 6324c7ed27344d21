package simrun

import (
	"fmt"
	"log"
	"sort"
)

// Double-elimination invariants.
const (
	maxLosses    = 2
	topPlacement = 1
)

// verifyResults checks every retrieved run against the double-elimination
// placement and match-log invariants.
func verifyResults(config *Config, results []RunResult, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(results) == 0 {
		return fmt.Errorf("no results to verify")
	}

	verified := 0
	for _, result := range results {
		if err := verifySingleResult(result); err != nil {
			log.Printf("⚠️  Run %s failed verification: %v", result.RunID, err)
			continue
		}
		verified++
	}

	stats.RunsVerified = verified

	displayPlacementSpread(results, config.Verbose)

	if verified != len(results) {
		return fmt.Errorf("%d of %d runs failed verification", len(results)-verified, len(results))
	}

	log.Println("✅ Result verification completed")
	return nil
}

// verifySingleResult checks one run record.
func verifySingleResult(result RunResult) error {
	placement := result.Result.Placement
	if placement < topPlacement || placement > result.BracketSize {
		return fmt.Errorf("placement %d outside 1..%d", placement, result.BracketSize)
	}

	losses := 0
	wins := 0
	for _, m := range result.Result.Matches {
		if m.Won {
			wins++
		} else {
			losses++
		}
	}

	if losses > maxLosses {
		return fmt.Errorf("%d losses in a double-elimination run", losses)
	}

	if len(result.Result.Matches) == 0 {
		return fmt.Errorf("empty match log")
	}

	// The champion always wins the last match played.
	last := result.Result.Matches[len(result.Result.Matches)-1]
	if placement == topPlacement && !last.Won {
		return fmt.Errorf("champion lost the final match")
	}
	if placement == topPlacement && losses > 1 {
		return fmt.Errorf("champion with %d losses", losses)
	}

	return nil
}

// displayPlacementSpread shows how the runs placed across the bracket.
func displayPlacementSpread(results []RunResult, verbose bool) {
	spread := make(map[int]int)
	for _, result := range results {
		spread[result.Result.Placement]++
	}

	placements := make([]int, 0, len(spread))
	for p := range spread {
		placements = append(placements, p)
	}
	sort.Ints(placements)

	log.Println("🏆 Placement spread:")
	for _, p := range placements {
		log.Printf("   place %2d: %d runs", p, spread[p])
	}

	if verbose {
		champions := spread[topPlacement]
		rate := float64(champions) / float64(len(results)) * PercentageMultiplier
		log.Printf(`📊 Run statistics:
   Runs: %d
   Titles: %d
   Title rate: %.1f%%
`, len(results), champions, rate)
	}
}
