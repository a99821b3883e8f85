// Package primary defines the primary ports (driving adapters) of the application.
package primary

import (
	"context"

	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/models"
)

// RosterService defines the primary port for roster operations.
type RosterService interface {
	// ImportRoster adds or updates the upgraders listed in a roster document.
	ImportRoster(ctx context.Context, path string) (*RosterImportResult, error)

	// ListUpgraders retrieves upgraders with their cached derived snapshot.
	ListUpgraders(ctx context.Context, filters RosterFilters) ([]*models.Upgrader, error)

	// GetUpgrader resolves a free-text name and loads the upgrader with completions.
	GetUpgrader(ctx context.Context, name string) (*ResolvedUpgrader, error)

	// MatchName resolves a free-text name against the roster without loading anything else.
	MatchName(ctx context.Context, name string) (*NameMatch, error)
}

// RosterFilters contains filter options for listing upgraders.
type RosterFilters struct {
	Position     string
	SyllabusYear string
}

// RosterImportResult contains the result of a roster import.
type RosterImportResult struct {
	Added     int
	Updated   int
	Upgraders []*models.Upgrader
}

// ResolvedUpgrader is an upgrader found through the name resolver.
type ResolvedUpgrader struct {
	Upgrader *models.Upgrader
	Match    names.Match
}

// NameMatch is the resolver outcome for one name with the roster labels attached.
type NameMatch struct {
	Query        string
	Match        names.Match
	Label        string // roster name of Match.ID, empty when not found
	ClosestLabel string
}
