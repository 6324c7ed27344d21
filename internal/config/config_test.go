package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/Tencide/matsim/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RunQueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.DefaultBracketSize, convey.ShouldEqual, 8)
			convey.So(cfg.ExchangeDecisionTimerMS, convey.ShouldEqual, 10_000)
			convey.So(cfg.ExchangesPerPeriod, convey.ShouldEqual, 4)
		})
	})
}
