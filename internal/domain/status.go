package domain

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle state of a content record.
type Status string

const (
	// StatusDraft is assigned to every newly created record.
	StatusDraft Status = "draft"
	// StatusPublished marks a record as available to consumers.
	StatusPublished Status = "published"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes input into a known Status.
func ParseStatus(input string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(input)))
	if !status.Valid() {
		return "", fmt.Errorf("domain: unknown status %q", input)
	}
	return status, nil
}
