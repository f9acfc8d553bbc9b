package model

import "github.com/google/uuid"

// NewID returns a random identifier for a new record.
func NewID() string {
	return uuid.NewString()
}

// StableID derives a deterministic identifier from an external reference,
// so importing the same source twice yields the same record id.
func StableID(source, reference string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+":"+reference)).String()
}
