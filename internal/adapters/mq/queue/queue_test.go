package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Tencide/matsim/internal/domain/model"
)

func testJob(id string) model.BracketRunRequest {
	return model.BracketRunRequest{
		RunID:       id,
		Seed:        "seed-" + id,
		BracketSize: 8,
		SubmittedAt: time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	// Test enqueue
	if !q.Enqueue(ctx, testJob("run-1")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	// Test dequeue
	dequeueCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	got := <-q.Dequeue(dequeueCtx)
	if got.RunID != "run-1" {
		t.Errorf("expected run-1, got %s", got.RunID)
	}
}

func TestInMemoryQueue_CapacityLimit(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(3), WithBufferSize(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !q.Enqueue(ctx, testJob(fmt.Sprintf("run-%d", i))) {
			t.Fatalf("expected enqueue %d to succeed", i)
		}
	}

	// Queue is full; the next job must be rejected without blocking.
	if q.Enqueue(ctx, testJob("overflow")) {
		t.Error("expected enqueue to fail at capacity")
	}
	if l := q.Len(ctx); l != 3 {
		t.Errorf("expected length 3, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if q.IsClosed() {
		t.Error("expected queue to start open")
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}

	// Enqueue after close must fail.
	if q.Enqueue(ctx, testJob("late")) {
		t.Error("expected enqueue to fail on closed queue")
	}

	// Double close is a no-op.
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to be nil, got %v", err)
	}
}

func TestInMemoryQueue_DrainAfterClose(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10), WithBufferSize(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, testJob("drain-1")) {
		t.Fatal("enqueue failed")
	}
	if !q.Enqueue(ctx, testJob("drain-2")) {
		t.Fatal("enqueue failed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Buffered jobs remain consumable after close.
	drainCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var drained []string
	for j := range q.Dequeue(drainCtx) {
		drained = append(drained, j.RunID)
	}
	if len(drained) != 2 || drained[0] != "drain-1" || drained[1] != "drain-2" {
		t.Errorf("unexpected drain order: %v", drained)
	}
}
