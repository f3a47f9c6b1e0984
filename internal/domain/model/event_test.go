package model_test

import (
	"context"
	"errors"
	"testing"
	"time"

	model "github.com/okian/mapty/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestEvent(t *testing.T) {
	convey.Convey("Given a new event", t, func() {
		before := time.Now()
		called := false
		event := model.NewEvent("event-123", "record_workout", func(context.Context) error {
			called = true
			return errors.New("boom")
		})

		convey.Convey("Then it carries its id, name and enqueue time", func() {
			convey.So(event.EventID, convey.ShouldEqual, "event-123")
			convey.So(event.Name, convey.ShouldEqual, "record_workout")
			convey.So(event.TS, convey.ShouldHappenOnOrAfter, before)
			convey.So(called, convey.ShouldBeFalse)
		})

		convey.Convey("Then its reply channel holds one result without a reader", func() {
			convey.So(cap(event.Done), convey.ShouldEqual, 1)

			event.Done <- event.Apply(context.Background())

			convey.So(called, convey.ShouldBeTrue)
			convey.So((<-event.Done).Error(), convey.ShouldEqual, "boom")
		})
	})

	convey.Convey("Given a zero event", t, func() {
		event := model.Event{}

		convey.Convey("Then it has no reply channel or work", func() {
			convey.So(event.Done, convey.ShouldBeNil)
			convey.So(event.Apply, convey.ShouldBeNil)
		})
	})
}
