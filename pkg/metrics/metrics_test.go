package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithMetricPrefix(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should survive the empty overrides", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "matsim")
				So(manager.subsystem, ShouldEqual, "simulation")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestSimulationMetricsRecording(t *testing.T) {
	Convey("Given simulation metrics recording", t, func() {
		Convey("When recording match outcomes", func() {
			So(func() {
				RecordMatchSimulated(true)
				RecordMatchSimulated(false)
				RecordMatchSimulated(true)
			}, ShouldNotPanic)
		})

		Convey("When recording calibration signals", func() {
			So(func() {
				RecordUpset()
				RecordProbabilityFloor()
				RecordProbabilityFloor()
			}, ShouldNotPanic)
		})

		Convey("When recording injuries", func() {
			So(func() {
				RecordInjury()
				RecordInjury()
			}, ShouldNotPanic)
		})

		Convey("When recording bracket completions", func() {
			So(func() {
				RecordBracketCompleted(8, 1)
				RecordBracketCompleted(8, 7)
				RecordBracketCompleted(16, 13)
				RecordBracketRunDuration(1.5)
			}, ShouldNotPanic)
		})

		Convey("When recording exchange resolutions", func() {
			So(func() {
				RecordExchangeResolved(true)
				RecordExchangeResolved(false)
			}, ShouldNotPanic)
		})
	})
}

func TestOperationalMetricsRecording(t *testing.T) {
	Convey("Given operational metrics recording", t, func() {
		Convey("When updating gauges", func() {
			So(func() {
				UpdateQueueSize(1000)
				UpdateQueueSize(500)
				UpdateWorkerCount(8)
				UpdateCompletedRuns(42)
				UpdateActiveSessions(3)
			}, ShouldNotPanic)
		})

		Convey("When recording queue activity", func() {
			So(func() {
				UpdateQueueCapacity(10000)
				UpdateQueueUtilization(0.25)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(12.5)
			}, ShouldNotPanic)
		})

		Convey("When recording worker activity", func() {
			So(func() {
				RecordWorkerProcessingLatency(3.0)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("When recording repository activity", func() {
			So(func() {
				UpdateRepositoryShardCount(32)
				UpdateRepositoryRecordsTotal(1234)
				RecordRepositoryUpdateLatency(0.2)
				RecordRepositoryQueryLatency(0.1)
			}, ShouldNotPanic)
		})
	})
}

func TestHTTPAndErrorMetricsRecording(t *testing.T) {
	Convey("Given HTTP and error metrics recording", t, func() {
		Convey("When recording HTTP requests", func() {
			So(func() {
				RecordHTTPRequest("/matches", "POST", "200")
				RecordHTTPRequestDuration("/matches", "POST", "200", 5.5)
				RecordHTTPRequest("/brackets", "GET", "404")
			}, ShouldNotPanic)
		})

		Convey("When recording component errors", func() {
			So(func() {
				RecordErrorByComponent("worker", "simulation")
				RecordErrorByComponent("queue", "full")
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("Then it should be available for a /metrics handler", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
