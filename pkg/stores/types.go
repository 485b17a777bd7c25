package stores

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// CommitStatus is the outcome of one commit.
type CommitStatus string

const (
	CommitStatusApplied CommitStatus = "applied"
	CommitStatusFailed  CommitStatus = "failed"
)

// RootRecord is a mount root.
type RootRecord struct {
	ID           string     `json:"id"`
	Target       string     `json:"target"`
	DeckID       string     `json:"deck_id"`
	ConfiguredAt time.Time  `json:"configured_at"`
	UnmountedAt  *time.Time `json:"unmounted_at,omitempty"`
	Commits      int        `json:"commits"`
}

// CommitRecord is one commit of a root.
type CommitRecord struct {
	ID        string        `json:"id"`
	RootID    string        `json:"root_id"`
	Status    CommitStatus  `json:"status"`
	Views     []string      `json:"views"`
	Layers    []string      `json:"layers"`
	Code      string        `json:"code,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// CommitFilter narrows ListCommits. Zero fields match everything.
type CommitFilter struct {
	RootID string
	Status CommitStatus
	Limit  int
}
