package render

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
)

// List holds the rendered workout list in display order.
type List struct {
	mu      sync.RWMutex
	entries []types.Entry
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Append renders w and adds it at the end.
func (l *List) Append(_ context.Context, w workout.Workout) error {
	html, err := Entry(w)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexLocked(w.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, w.ID)
	}
	l.entries = append(l.entries, types.Entry{ID: w.ID, HTML: html})
	return nil
}

// Remove drops the entry for id.
func (l *List) Remove(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	l.entries = slices.Delete(l.entries, i, i+1)
	return nil
}

// Replace re-renders the whole list from ws.
func (l *List) Replace(_ context.Context, ws []workout.Workout) error {
	entries := make([]types.Entry, 0, len(ws))
	for _, w := range ws {
		html, err := Entry(w)
		if err != nil {
			return err
		}
		entries = append(entries, types.Entry{ID: w.ID, HTML: html})
	}
	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	return nil
}

// Clear empties the list.
func (l *List) Clear(_ context.Context) error {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the entries in display order.
func (l *List) Snapshot() []types.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *List) indexLocked(id string) int {
	return slices.IndexFunc(l.entries, func(e types.Entry) bool { return e.ID == id })
}
