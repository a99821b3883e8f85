package models

import (
	"fmt"
	"strings"
)

// Readiness is the categorical health status of an upgrader.
type Readiness string

const (
	ReadinessUnknown        Readiness = "UNKNOWN"
	ReadinessOnTrack        Readiness = "ON_TRACK"
	ReadinessAtRisk         Readiness = "AT_RISK"
	ReadinessBehindSchedule Readiness = "BEHIND_SCHEDULE"
	ReadinessBlocked        Readiness = "BLOCKED"
)

// AllReadiness returns every readiness value in severity order.
func AllReadiness() []Readiness {
	return []Readiness{
		ReadinessUnknown,
		ReadinessOnTrack,
		ReadinessAtRisk,
		ReadinessBehindSchedule,
		ReadinessBlocked,
	}
}

// ParseReadiness parses a stored readiness value, case-insensitive.
func ParseReadiness(s string) (Readiness, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UNKNOWN", "":
		return ReadinessUnknown, nil
	case "ON_TRACK":
		return ReadinessOnTrack, nil
	case "AT_RISK":
		return ReadinessAtRisk, nil
	case "BEHIND_SCHEDULE":
		return ReadinessBehindSchedule, nil
	case "BLOCKED":
		return ReadinessBlocked, nil
	default:
		return ReadinessUnknown, fmt.Errorf("invalid readiness: %q", s)
	}
}

func (r Readiness) String() string {
	return string(r)
}

// Severity orders readiness for display emphasis only.
func (r Readiness) Severity() int {
	switch r {
	case ReadinessOnTrack:
		return 1
	case ReadinessAtRisk:
		return 2
	case ReadinessBehindSchedule:
		return 3
	case ReadinessBlocked:
		return 4
	default:
		return 0
	}
}

// Notice marks a condition the engine could not resolve. Notices are result
// values, never errors.
type Notice string

const (
	NoticeNoMatch                  Notice = "NO_MATCH"
	NoticeMissingSyllabus          Notice = "MISSING_SYLLABUS"
	NoticeUnresolvablePrerequisite Notice = "UNRESOLVABLE_PREREQUISITE"
	NoticeNoCurve                  Notice = "NO_CURVE"
	NoticeProjectionNotComputable  Notice = "PROJECTION_NOT_COMPUTABLE"
)
