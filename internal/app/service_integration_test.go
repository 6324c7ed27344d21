package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	service "github.com/Tencide/matsim/internal/app"
	"github.com/Tencide/matsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func awaitRun(ctx context.Context, svc *service.Service, runID string, timeout time.Duration) (model.BracketRunRecord, error) {
	deadline := time.Now().Add(timeout)
	var rec model.BracketRunRecord
	var err error
	for time.Now().Before(deadline) {
		rec, err = svc.BracketResult(ctx, runID)
		if err == nil {
			return rec, nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return rec, err
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with full integration", t, func() {
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)

		Convey("When submitting a batch of runs end-to-end", func() {
			const runs = 20
			ids := make([]string, 0, runs)
			for i := 0; i < runs; i++ {
				size := 8
				if i%2 == 1 {
					size = 16
				}
				id, accepted := svc.SubmitBracketRun(ctx, model.BracketRunRequest{
					RunID:       fmt.Sprintf("itest-run-%02d", i),
					Seed:        fmt.Sprintf("itest-seed-%02d", i),
					BracketSize: size,
					Player:      testPlayer(),
				})
				So(accepted, ShouldBeTrue)
				ids = append(ids, id)
			}

			Convey("Then every run completes with a valid record", func() {
				for _, id := range ids {
					rec, err := awaitRun(ctx, svc, id, 15*time.Second)
					So(err, ShouldBeNil)
					So(rec.RunID, ShouldEqual, id)
					So(rec.Result.Placement, ShouldBeGreaterThanOrEqualTo, 1)
					So(rec.Result.Placement, ShouldBeLessThanOrEqualTo, rec.BracketSize)
					So(rec.CompletedAt.IsZero(), ShouldBeFalse)
				}
			})

			Convey("And the recent-runs listing covers the batch", func() {
				for _, id := range ids {
					_, err := awaitRun(ctx, svc, id, 15*time.Second)
					So(err, ShouldBeNil)
				}

				recent, err := svc.RecentRuns(ctx, runs)
				So(err, ShouldBeNil)
				So(len(recent), ShouldEqual, runs)
				for i := 1; i < len(recent); i++ {
					So(recent[i].CompletedAt.After(recent[i-1].CompletedAt), ShouldBeFalse)
				}
			})
		})

		Convey("When the same seed is submitted under two run IDs", func() {
			reqA := model.BracketRunRequest{RunID: "det-a", Seed: "same-seed", BracketSize: 8, Player: testPlayer()}
			reqB := model.BracketRunRequest{RunID: "det-b", Seed: "same-seed", BracketSize: 8, Player: testPlayer()}
			_, okA := svc.SubmitBracketRun(ctx, reqA)
			_, okB := svc.SubmitBracketRun(ctx, reqB)
			So(okA, ShouldBeTrue)
			So(okB, ShouldBeTrue)

			Convey("Then both runs resolve identically", func() {
				recA, errA := awaitRun(ctx, svc, "det-a", 15*time.Second)
				recB, errB := awaitRun(ctx, svc, "det-b", 15*time.Second)
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(recA.Result, ShouldResemble, recB.Result)
				So(recA.FinalState, ShouldResemble, recB.FinalState)
			})
		})
	})
}
