// Package models contains domain types for UPSHOT entities.
// Persistence lives in internal/adapters/sqlite; computation in internal/core.
package models

import (
	"fmt"
	"strings"
)

// RequirementKind classifies a syllabus item.
type RequirementKind string

const (
	KindPQS   RequirementKind = "PQS"
	KindEvent RequirementKind = "EVENT"
	KindBoard RequirementKind = "BOARD"
	KindOther RequirementKind = "OTHER"
)

// ParseKind parses a kind string, case-insensitive.
// Unmapped strings return KindOther together with an error so the import
// boundary can report them.
func ParseKind(s string) (RequirementKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PQS":
		return KindPQS, nil
	case "EVENT", "EVENTS":
		return KindEvent, nil
	case "BOARD":
		return KindBoard, nil
	case "OTHER", "":
		return KindOther, nil
	default:
		return KindOther, fmt.Errorf("unknown requirement kind: %q", s)
	}
}

func (k RequirementKind) String() string {
	return string(k)
}

// Pool reports which working-level pool a kind is scheduled against.
// Boards ride with events; anything unclassified rides with PQS.
func (k RequirementKind) Pool() Pool {
	switch k {
	case KindEvent, KindBoard:
		return PoolEvents
	default:
		return PoolPQS
	}
}

// Pool identifies one of the two independently levelled requirement pools.
type Pool string

const (
	PoolPQS    Pool = "pqs"
	PoolEvents Pool = "events"
)

// Requirement is a single qualification item within a syllabus.
type Requirement struct {
	Name            string
	DisplayName     string
	Kind            RequirementKind
	Level           int
	Prerequisites   []string
	WaivedByDefault bool
	Sequence        *int
}

// Key returns the normalized name used for all requirement matching.
func (r Requirement) Key() string {
	return RequirementKey(r.Name)
}

// Label returns the display name, falling back to the name.
func (r Requirement) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}

// RequirementKey normalizes a requirement or event name for exact,
// case-insensitive matching.
func RequirementKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
