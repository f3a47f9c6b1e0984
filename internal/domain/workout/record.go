package workout

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is the plain persisted shape of a workout. Derived values are
// written for readability but ignored on the way back in.
type Record struct {
	ID       string      `json:"id"`
	Date     time.Time   `json:"date"`
	Type     Kind        `json:"type"`
	Coords   Coordinates `json:"coords"`
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
	Cadence  float64     `json:"cadence,omitempty"`
	Pace     float64     `json:"pace,omitempty"`
	ElevGain float64     `json:"elevGain,omitempty"`
	Speed    float64     `json:"speed,omitempty"`
}

// ToRecord flattens w.
func ToRecord(w Workout) Record {
	r := Record{
		ID:       w.ID,
		Date:     w.Date,
		Type:     w.Kind,
		Coords:   w.Coords,
		Distance: w.Distance,
		Duration: w.Duration,
	}
	if w.Running != nil {
		r.Cadence = w.Running.Cadence
		r.Pace = w.Running.Pace
	}
	if w.Cycling != nil {
		r.ElevGain = w.Cycling.ElevationGain
		r.Speed = w.Cycling.Speed
	}
	return r
}

// FromRecord rebuilds the typed variant from r and derives its metric again.
func FromRecord(r Record) (Workout, error) {
	coords := r.Coords
	return New(Params{
		ID:            r.ID,
		Date:          r.Date,
		Kind:          r.Type,
		Coords:        &coords,
		Distance:      r.Distance,
		Duration:      r.Duration,
		Cadence:       r.Cadence,
		ElevationGain: r.ElevGain,
	})
}

// EncodeList serializes ws as a JSON array of records.
func EncodeList(ws []Workout) ([]byte, error) {
	records := make([]Record, len(ws))
	for i, w := range ws {
		records[i] = ToRecord(w)
	}
	return json.Marshal(records)
}

// DecodeList parses data written by EncodeList. A JSON null decodes to an
// empty list. Any malformed record fails the whole list.
func DecodeList(data []byte) ([]Workout, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	out := make([]Workout, 0, len(records))
	for i, r := range records {
		w, err := FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrDecode, i, err)
		}
		out = append(out, w)
	}
	return out, nil
}
