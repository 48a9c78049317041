package tle

import "time"

// ElementSet is one satellite's two-line element set.
type ElementSet struct {
	NORADID int
	Name    string // empty for bare two-line sets
	Epoch   time.Time
	Line1   string
	Line2   string
}

// Age returns how old the elements are at t.
func (e ElementSet) Age(t time.Time) time.Duration {
	return t.Sub(e.Epoch)
}
