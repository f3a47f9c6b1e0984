// Package render turns workouts into what the page shows: list entries as
// HTML fragments and the state of the entry form.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	"github.com/okian/mapty/internal/domain/workout"
)

const entryTemplate = `<div class="workout workout--{{.Kind}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Label}}</h2>
  <button class="workout__remove" type="button" data-action="remove">Remove</button>
  <div class="workout__details"><span class="workout__icon">{{.Icon}}</span><span class="workout__value">{{.Distance}}</span><span class="workout__unit">km</span></div>
  <div class="workout__details"><span class="workout__icon">⏱</span><span class="workout__value">{{.Duration}}</span><span class="workout__unit">min</span></div>
  <div class="workout__details"><span class="workout__icon">⚡️</span><span class="workout__value">{{.Metric}}</span><span class="workout__unit">{{.MetricUnit}}</span></div>
  <div class="workout__details"><span class="workout__icon">{{.ExtraIcon}}</span><span class="workout__value">{{.Extra}}</span><span class="workout__unit">{{.ExtraUnit}}</span></div>
</div>`

var entryTmpl = template.Must(template.New("entry").Parse(entryTemplate))

type entryData struct {
	ID         string
	Kind       workout.Kind
	Label      string
	Icon       string
	Distance   string
	Duration   string
	Metric     string
	MetricUnit string
	Extra      string
	ExtraIcon  string
	ExtraUnit  string
}

// Entry renders the list fragment for w. The fragment carries the
// workout id in data-id and a Remove button.
func Entry(w workout.Workout) (string, error) {
	d := entryData{
		ID:       w.ID,
		Kind:     w.Kind,
		Label:    workout.Label(w),
		Icon:     workout.Icon(w.Kind),
		Distance: number(w.Distance),
		Duration: number(w.Duration),
		Metric:   number(math.Round(w.Metric())),
	}
	switch {
	case w.Running != nil:
		d.MetricUnit = "min/km"
		d.ExtraIcon, d.Extra, d.ExtraUnit = "🦶🏼", number(w.Running.Cadence), "spm"
	case w.Cycling != nil:
		d.MetricUnit = "km/h"
		d.ExtraIcon, d.Extra, d.ExtraUnit = "⛰", number(w.Cycling.ElevationGain), "m"
	}

	var buf bytes.Buffer
	if err := entryTmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render entry %s: %w", w.ID, err)
	}
	return buf.String(), nil
}

func number(v float64) string {
	return fmt.Sprintf("%g", v)
}
