package store

import "github.com/oklog/ulid/v2"

// newID returns a fresh ULID string. ULIDs sort by creation time, which
// keeps "newest first" listings cheap and ids opaque but debuggable.
func newID() string {
	return ulid.Make().String()
}
