package workout

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Icon returns the emoji shown next to a workout of kind k.
func Icon(k Kind) string {
	if k == KindRunning {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// Title returns the display name of k, e.g. "Running". Casers keep state,
// so each call gets its own.
func Title(k Kind) string {
	return cases.Title(language.English).String(string(k))
}

// Label describes w for the list, e.g. "Running on October 17".
func Label(w Workout) string {
	return fmt.Sprintf("%s on %s %d", Title(w.Kind), w.Date.Month(), w.Date.Day())
}

// PopupContent is the marker popup text: icon plus label.
func PopupContent(w Workout) string {
	return Icon(w.Kind) + " " + Label(w)
}
