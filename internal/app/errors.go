package app

import "errors"

// Sentinel errors returned by the services. Callers match them with errors.Is.
var (
	ErrUpgraderNotFound = errors.New("upgrader not found")
	ErrSyllabusNotFound = errors.New("syllabus not found")
	ErrInvalidSyllabus  = errors.New("invalid syllabus")
	ErrEmptyRoster      = errors.New("roster is empty")
)
