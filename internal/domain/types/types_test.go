package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/mapty/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWorkoutJSON(t *testing.T) {
	Convey("Given a running workout", t, func() {
		w := types.Workout{
			ID:       "12345678",
			Type:     "running",
			Coords:   types.Point{Lat: 51.5, Lng: -0.12},
			Distance: 5,
			Duration: 25,
			Cadence:  170,
			Pace:     5,
		}

		Convey("When it is encoded", func() {
			raw, err := json.Marshal(w)
			So(err, ShouldBeNil)

			var fields map[string]any
			So(json.Unmarshal(raw, &fields), ShouldBeNil)

			Convey("Then the cycling fields are omitted", func() {
				So(fields, ShouldContainKey, "cadence")
				So(fields, ShouldContainKey, "pace")
				So(fields, ShouldNotContainKey, "elevGain")
				So(fields, ShouldNotContainKey, "speed")
			})

			Convey("Then coordinates use lat and lng", func() {
				So(fields["coords"], ShouldResemble, map[string]any{"lat": 51.5, "lng": -0.12})
			})
		})
	})
}

func TestStateJSON(t *testing.T) {
	Convey("Given a state before the map is loaded", t, func() {
		s := types.State{
			Map:     types.Map{Markers: []types.Marker{}},
			Form:    types.Form{Type: "running"},
			Entries: []types.Entry{},
			Sort:    "none",
		}

		Convey("When it is encoded", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)

			Convey("Then the view and pending location are absent", func() {
				So(string(raw), ShouldNotContainSubstring, `"view"`)
				So(string(raw), ShouldNotContainSubstring, `"pending"`)
				So(string(raw), ShouldContainSubstring, `"markers":[]`)
				So(string(raw), ShouldContainSubstring, `"entries":[]`)
			})
		})
	})
}
