package models

import "fmt"

// Status is the lifecycle state of a tracked listing.
type Status string

const (
	StatusNew       Status = "new"
	StatusActive    Status = "active"
	StatusTainted   Status = "tainted"
	StatusRemoved   Status = "removed"
	StatusDiscarded Status = "discarded"
)

// legacyActive is how older history files spell StatusActive.
const legacyActive = "available"

// Statuses lists every lifecycle state in display order.
var Statuses = []Status{StatusNew, StatusActive, StatusTainted, StatusRemoved, StatusDiscarded}

// ParseStatus converts a persisted status string into a Status.
func ParseStatus(s string) (Status, error) {
	if s == legacyActive {
		return StatusActive, nil
	}
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown listing status %q", s)
}

// StatusSet is a set of statuses selected for display.
type StatusSet map[Status]struct{}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether s is in the set.
func (set StatusSet) Has(s Status) bool {
	_, ok := set[s]
	return ok
}
