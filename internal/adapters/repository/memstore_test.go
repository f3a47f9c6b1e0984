package repository

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()

		Convey("When loading before any save", func() {
			_, err := s.Load(ctx)
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("When saving a blob", func() {
			buf := []byte(`[1,2]`)
			So(s.Save(ctx, buf), ShouldBeNil)
			buf[1] = '9'

			Convey("Then the stored copy is unaffected by caller mutation", func() {
				got, err := s.Load(ctx)
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, "[1,2]")
			})

			Convey("And clearing forgets it", func() {
				So(s.Clear(ctx), ShouldBeNil)
				_, err := s.Load(ctx)
				So(err, ShouldEqual, ErrNotFound)
			})
		})
	})
}
