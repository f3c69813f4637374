package repository

import (
	"database/sql"
	"time"
)

// nullTime converts an optional date into a driver-friendly value.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// nullID converts an optional numeric reference into a driver-friendly value.
func nullID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// timePtr lifts a scanned nullable time into an optional value.
func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// idPtr lifts a scanned nullable integer into an optional reference.
func idPtr(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	u := uint64(v.Int64)
	return &u
}
