package diagram

import "github.com/google/uuid"

// NewID mints a unique element or relation identifier. The engines never
// call this themselves; it is for callers assembling snapshots.
func NewID() string {
	return uuid.NewString()
}
