package workout

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIDGenerator(t *testing.T) {
	Convey("Given an id generator", t, func() {
		g := NewIDGenerator()
		at := time.UnixMilli(1_760_700_123_456)

		Convey("Then ids are the last eight digits of the millisecond clock", func() {
			So(g.Next(at), ShouldEqual, "00123456")
		})

		Convey("When the clock does not advance", func() {
			first := g.Next(at)
			second := g.Next(at)
			third := g.Next(at.Add(-time.Second))

			Convey("Then every id is still distinct", func() {
				So(first, ShouldEqual, "00123456")
				So(second, ShouldEqual, "00123457")
				So(third, ShouldEqual, "00123458")
			})
		})

		Convey("When many ids are issued at once", func() {
			seen := make(map[string]bool)
			for i := 0; i < 1000; i++ {
				id := g.Next(at)
				So(seen[id], ShouldBeFalse)
				seen[id] = true
			}
		})
	})
}
