// Package repository defines the bracket-run result store interface and errors.
package repository

import (
	"context"

	"github.com/Tencide/matsim/internal/domain/model"
)

// Store provides read/write access to completed bracket-run records.
type Store interface {
	// SaveRun stores the record for a completed run, replacing any
	// previous record with the same run ID.
	SaveRun(ctx context.Context, rec model.BracketRunRecord) error

	// Run returns the record for a run ID.
	// Returns ErrNotFound if the run is unknown.
	Run(ctx context.Context, runID string) (model.BracketRunRecord, error)

	// RecentRuns returns up to n records ordered by completion time desc.
	RecentRuns(ctx context.Context, n int) ([]model.BracketRunRecord, error)

	// Count returns the number of records tracked in the store.
	Count(ctx context.Context) int
}
