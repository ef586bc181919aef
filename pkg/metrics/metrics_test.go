package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom naming", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithRankingBuckets(1, 2),
				WithHTTPBuckets(5, 50),
				WithRegisterer(registry),
			)

			Convey("Then collectors are registered under that namespace", func() {
				So(m, ShouldNotBeNil)
				m.entriesRegistered.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_entries_registered_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When recording is disabled", func() {
			m := NewManager(WithRegisterer(registry), WithRecording(false))

			Convey("Then the manager reports it", func() {
				So(m.enabled, ShouldBeFalse)
			})
		})
	})
}

func TestPackageRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording domain activity", func() {
			before := testutil.ToFloat64(globalManager.startListOps.WithLabelValues("publish"))
			RecordStartListOperation("publish")
			RecordScoreSubmission("written", 3)
			RecordScoreSubmission("written", 0)
			RecordHTTPRequest("/events/:id/awards", "GET", "200", 4)

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.startListOps.WithLabelValues("publish")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.scoreSubmissions.WithLabelValues("written")), ShouldBeGreaterThanOrEqualTo, 3)
			})

			Convey("And the registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "pirouette_engine_http_requests_total")
			})
		})
	})
}
