package calendar

import "time"

// Window is the reminder look-ahead. The same value drives the provider
// query and the acceptance check; both bounds are inclusive.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow returns [now, now+hours].
func NewWindow(now time.Time, hours int) Window {
	now = now.UTC()
	return Window{From: now, To: now.Add(time.Duration(hours) * time.Hour)}
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}
