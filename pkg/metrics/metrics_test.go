package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with every option", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.metricPrefix, ShouldEqual, "prefix")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
				So(manager.customLabels["env"], ShouldEqual, "test")
			})

			Convey("And metrics are registered on the given registry", func() {
				manager.totalWorkouts.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_prefix_workouts")
			})
		})

		Convey("When zero values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "mapty")
				So(manager.subsystem, ShouldEqual, "tracker")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When workouts are recorded and removed", func() {
			before := testutil.ToFloat64(globalManager.Load().workoutsRecorded.WithLabelValues("running"))
			RecordWorkoutRecorded("running")
			RecordWorkoutRecorded("running")
			removedBefore := testutil.ToFloat64(globalManager.Load().workoutsRemoved)
			RecordWorkoutRemoved()

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.Load().workoutsRecorded.WithLabelValues("running")), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.Load().workoutsRemoved), ShouldEqual, removedBefore+1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateTotalWorkouts(7)
			UpdateMarkerCount(5)
			UpdateQueueSize(2)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.Load().totalWorkouts), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.Load().markerCount), ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.Load().queueSize), ShouldEqual, 2)
			})
		})

		Convey("When persistence fails", func() {
			before := testutil.ToFloat64(globalManager.Load().persistenceErrors.WithLabelValues("save"))
			RecordPersistenceError("save")

			Convey("Then both the storage and component counters move", func() {
				So(testutil.ToFloat64(globalManager.Load().persistenceErrors.WithLabelValues("save")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.Load().errorRateByComponent.WithLabelValues("storage", "save")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordValidationError("distance")
				RecordAction("sort")
				RecordRestore("empty")
				RecordGeolocation("ok")
				RecordStorageLatency("save", 1.5)
				UpdateQueueCapacity(1024)
				UpdateQueueUtilization(0.25)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordEventLatency("record_workout", 0.3)
				RecordEventError("record_workout")
				RecordHTTPRequest("workouts", "POST", "201")
				RecordHTTPRequestDuration("workouts", "POST", "201", 2)
				RecordErrorByComponent("queue", "full")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("workouts", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 1)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("When gathering from the registry", func() {
			RecordAction("reset")
			families, err := GetRegistry().Gather()

			Convey("Then the tracker metrics are exported", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		before := testutil.ToFloat64(globalManager.Load().actions.WithLabelValues("focus"))
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					RecordAction("focus")
				}
			}()
		}
		wg.Wait()

		So(testutil.ToFloat64(globalManager.Load().actions.WithLabelValues("focus")), ShouldEqual, before+1000)
	})
}

func TestInit(t *testing.T) {
	Convey("Given metrics initialized as disabled", t, func() {
		So(Init(WithMetricsEnabled(false), WithRefreshInterval(3*time.Second)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("Then helpers record nothing", func() {
			RecordAction("sort")
			UpdateTotalWorkouts(9)

			So(testutil.ToFloat64(globalManager.Load().actions.WithLabelValues("sort")), ShouldEqual, 0)
			So(testutil.ToFloat64(globalManager.Load().totalWorkouts), ShouldEqual, 0)
			So(globalManager.Load().Enabled(), ShouldBeFalse)
		})

		Convey("Then the refresh interval is the configured one", func() {
			So(RefreshInterval(), ShouldEqual, 3*time.Second)
		})
	})

	Convey("Given metrics initialized again with defaults", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then helpers record on a fresh registry", func() {
			RecordAction("sort")
			So(testutil.ToFloat64(globalManager.Load().actions.WithLabelValues("sort")), ShouldEqual, 1)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
