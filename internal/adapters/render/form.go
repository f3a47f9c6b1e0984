package render

import (
	"context"
	"sync"

	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
)

// Form is the entry form: hidden until a map click, showing either the
// cadence or the elevation field depending on the selected kind.
type Form struct {
	mu      sync.RWMutex
	visible bool
	kind    workout.Kind
	clears  uint64
}

// NewForm returns a hidden form set to running.
func NewForm() *Form {
	return &Form{kind: workout.KindRunning}
}

// Show reveals the form.
func (f *Form) Show(_ context.Context) error {
	f.mu.Lock()
	f.visible = true
	f.mu.Unlock()
	return nil
}

// Hide hides the form.
func (f *Form) Hide(_ context.Context) error {
	f.mu.Lock()
	f.visible = false
	f.mu.Unlock()
	return nil
}

// Clear empties the numeric inputs. The selected kind is kept.
func (f *Form) Clear(_ context.Context) error {
	f.mu.Lock()
	f.clears++
	f.mu.Unlock()
	return nil
}

// SetKind switches which kind-specific field is enabled.
func (f *Form) SetKind(_ context.Context, k workout.Kind) error {
	f.mu.Lock()
	f.kind = k
	f.mu.Unlock()
	return nil
}

// Kind returns the selected kind.
func (f *Form) Kind() workout.Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.kind
}

// Snapshot returns the form state. Pending is filled in by the caller.
func (f *Form) Snapshot() types.Form {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return types.Form{
		Visible: f.visible,
		Type:    string(f.kind),
		Clears:  f.clears,
	}
}
