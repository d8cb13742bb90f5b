package storage

import "fmt"

// QuotaExceededError is returned by Put after the eviction recovery
// sequence failed to free enough room.
type QuotaExceededError struct {
	Key   string
	Need  int64
	Quota int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("storage quota exceeded writing %s (%d bytes over a %d byte quota): clear history or remove the stored document to free space", e.Key, e.Need, e.Quota)
}
