package app

import "github.com/google/uuid"

// newID mints an identifier for a tenant or administrator.
// Isolated here so the ID strategy can evolve independently.
func newID() string {
	return uuid.NewString()
}
