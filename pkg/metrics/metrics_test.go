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
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
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
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording poll pipeline metrics", func() {
			Convey("Then it should record poll cycles", func() {
				So(func() {
					RecordPollCycle()
					RecordPollStageError("profile_fetch")
					RecordPollSkippedOffline()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording ingestion metrics", func() {
			Convey("Then it should record ingest outcomes", func() {
				So(func() {
					RecordProfileIngest()
					RecordProfileIngestError()
					UpdateScheduleBreakpoints("basal", 3)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording reconciliation metrics", func() {
			Convey("Then it should record pass counters and gauges", func() {
				So(func() {
					RecordReconcilePass()
					RecordReconcileEntry()
					RecordReconcileEntrySkipped()
					UpdateOverrideActive(true)
					UpdateOverrideActive(false)
					RecordReconcileDuration(12.5)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording dispatch metrics", func() {
			Convey("Then it should record per-transport outcomes", func() {
				So(func() {
					RecordDispatch("shortcut", "success")
					RecordDispatch("push", "failure")
					RecordDispatch("sms", "success")
					RecordDispatchLatency("sms", 840.0)
					RecordAuthFailure()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording slot and HTTP metrics", func() {
			Convey("Then it should record writes and requests", func() {
				So(func() {
					RecordSlotWrite()
					RecordSlotNotification()
					RecordHTTPRequest("/status", "GET", "200")
					RecordHTTPRequestDuration("/status", "GET", "200", 3.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording system metrics", func() {
			Convey("Then it should update gauges", func() {
				So(func() {
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(42)
					RecordSystemGCPauseTime(0.7)
				}, ShouldNotPanic)
			})
		})
	})
}
