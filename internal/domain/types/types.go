// Package types contains the view shapes shared by the controller's
// collaborators and the HTTP API.
package types

// Point is a geographic coordinate on the wire.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Workout is the API shape of one workout.
type Workout struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Label    string  `json:"label"`
	Coords   Point   `json:"coords"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Cadence  float64 `json:"cadence,omitempty"`
	Pace     float64 `json:"pace,omitempty"`
	ElevGain float64 `json:"elevGain,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
}

// Entry is one rendered list item.
type Entry struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// Marker is one map marker.
type Marker struct {
	Handle string `json:"handle"`
	Coords Point  `json:"coords"`
	Popup  string `json:"popup"`
}

// View is the requested map viewport.
type View struct {
	Center     Point   `json:"center"`
	Zoom       int     `json:"zoom"`
	Animate    bool    `json:"animate"`
	PanSeconds float64 `json:"panSeconds"`
	Revision   uint64  `json:"revision"`
}

// Map mirrors the widget state.
type Map struct {
	Ready   bool     `json:"ready"`
	View    *View    `json:"view,omitempty"`
	Markers []Marker `json:"markers"`
}

// Form mirrors the entry form.
type Form struct {
	Visible bool   `json:"visible"`
	Type    string `json:"type"`
	Clears  uint64 `json:"clears"` // bumped each time the inputs are emptied
	Pending *Point `json:"pending,omitempty"`
}

// State is the full view snapshot the page renders from.
type State struct {
	Map     Map     `json:"map"`
	Form    Form    `json:"form"`
	Entries []Entry `json:"entries"`
	Sort    string  `json:"sort"`
	Count   int     `json:"count"`
}
