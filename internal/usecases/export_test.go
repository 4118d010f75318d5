package usecases

import "time"

// SetClock replaces the navigator's clock in tests.
func (n *Navigator) SetClock(now func() time.Time) { n.now = now }
