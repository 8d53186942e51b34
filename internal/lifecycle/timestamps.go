// Package lifecycle defines the timestamp policy shared by all stores:
// how create/update/soft-delete stamp records and what counts as active.
package lifecycle

import "time"

// Timestamps is the triple every durable record carries.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Create returns the stamps for a freshly inserted record.
func Create(now time.Time) Timestamps {
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Update returns the stamp applied on every mutation.
func Update(now time.Time) time.Time {
	return now
}

// Delete returns the stamps for a soft deletion: the record is marked
// inactive, never physically removed.
func Delete(now time.Time) Timestamps {
	return Timestamps{UpdatedAt: now, DeletedAt: &now}
}

// Active reports whether a record with the given deletedAt stamp is live.
func Active(deletedAt *time.Time) bool {
	return deletedAt == nil
}
