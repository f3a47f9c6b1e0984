package mapview

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mapty/internal/domain/workout"
)

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("h%d", n)
	}
}

func TestWidget(t *testing.T) {
	Convey("Given a widget with no map", t, func() {
		ctx := context.Background()
		w := New(WithHandleGenerator(sequence()), WithPanDuration(2*time.Second))
		home := workout.Coordinates{Lat: 51.5, Lng: -0.09}

		Convey("Then map operations are rejected", func() {
			_, err := w.AddMarker(ctx, "h1", home, "x")
			So(err, ShouldEqual, ErrNoMap)
			So(w.Click(ctx, home), ShouldEqual, ErrNoMap)
			So(w.Snapshot().Ready, ShouldBeFalse)
		})

		Convey("When a map is created", func() {
			id, err := w.CreateMap(ctx, home, 13)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "h1")

			snap := w.Snapshot()
			So(snap.Ready, ShouldBeTrue)
			So(snap.View.Zoom, ShouldEqual, 13)
			So(snap.View.Animate, ShouldBeFalse)
			So(snap.View.Center.Lat, ShouldEqual, 51.5)

			Convey("And markers are added and removed", func() {
				m1, err := w.AddMarker(ctx, id, workout.Coordinates{Lat: 1, Lng: 2}, "🏃‍♂️ Running on October 17")
				So(err, ShouldBeNil)
				m2, err := w.AddMarker(ctx, id, workout.Coordinates{Lat: 3, Lng: 4}, "🚴‍♀️ Cycling on October 17")
				So(err, ShouldBeNil)
				So(m1, ShouldNotEqual, m2)
				So(w.Snapshot().Markers, ShouldHaveLength, 2)

				So(w.RemoveMarker(ctx, id, m1), ShouldBeNil)
				markers := w.Snapshot().Markers
				So(markers, ShouldHaveLength, 1)
				So(markers[0].Handle, ShouldEqual, m2)
				So(markers[0].Popup, ShouldEqual, "🚴‍♀️ Cycling on October 17")

				So(w.RemoveMarker(ctx, id, m1), ShouldEqual, ErrUnknownMarker)
			})

			Convey("And the view is moved with animation", func() {
				before := w.Snapshot().View.Revision
				So(w.SetView(ctx, id, workout.Coordinates{Lat: 10, Lng: 20}, 13, true), ShouldBeNil)
				v := w.Snapshot().View
				So(v.Revision, ShouldBeGreaterThan, before)
				So(v.Animate, ShouldBeTrue)
				So(v.PanSeconds, ShouldEqual, 2)
				So(v.Center.Lng, ShouldEqual, 20)
			})

			Convey("And a stale handle is used", func() {
				So(w.SetView(ctx, "other", home, 13, false), ShouldEqual, ErrUnknownMap)
			})

			Convey("And an invalid point is given", func() {
				_, err := w.AddMarker(ctx, id, workout.Coordinates{Lat: 91}, "x")
				So(errors.Is(err, ErrInvalidPoint), ShouldBeTrue)
			})

			Convey("And clicks are delivered to subscribers", func() {
				var got []workout.Coordinates
				w.OnClick(func(_ context.Context, at workout.Coordinates) error {
					got = append(got, at)
					return nil
				})
				So(w.Click(ctx, workout.Coordinates{Lat: 5, Lng: 6}), ShouldBeNil)
				So(got, ShouldResemble, []workout.Coordinates{{Lat: 5, Lng: 6}})
			})

			Convey("And a subscriber fails", func() {
				boom := errors.New("boom")
				w.OnClick(func(context.Context, workout.Coordinates) error { return boom })
				So(w.Click(ctx, home), ShouldEqual, boom)
			})

			Convey("And the map is destroyed", func() {
				_, _ = w.AddMarker(ctx, id, home, "x")
				So(w.DestroyMap(ctx, id), ShouldBeNil)
				snap := w.Snapshot()
				So(snap.Ready, ShouldBeFalse)
				So(snap.View, ShouldBeNil)
				So(snap.Markers, ShouldBeEmpty)
			})

			Convey("And a new map replaces it", func() {
				_, _ = w.AddMarker(ctx, id, home, "x")
				id2, err := w.CreateMap(ctx, home, 10)
				So(err, ShouldBeNil)
				So(id2, ShouldNotEqual, id)
				So(w.Snapshot().Markers, ShouldBeEmpty)
			})
		})
	})
}
