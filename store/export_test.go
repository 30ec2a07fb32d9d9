package store

import "time"

// SetSQLClock replaces the time source used for created_at.
func SetSQLClock(s *SQLStore, now func() time.Time) { s.now = now }
