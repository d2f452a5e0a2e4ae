package db

import "time"

// Timestamps are persisted in UTC regardless of driver.
func nowUTC() time.Time {
	return time.Now().UTC()
}
