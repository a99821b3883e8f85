// Package levels derives the qualification level an upgrader is working,
// separately for the PQS and Events pools.
package levels

import (
	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/models"
)

// Step is the distance between consecutive syllabus levels.
const Step = 100

// Base returns the level assumed before any level is earned. A syllabus with
// no configured base starts at its lowest requirement level.
func Base(s *models.Syllabus) int {
	if s == nil {
		return 0
	}
	if s.BaseLevel > 0 {
		return s.BaseLevel
	}
	if levels := s.Levels(); len(levels) > 0 {
		return levels[0]
	}
	return 0
}

// Derive computes working levels from scratch.
// Rules:
// - A level is complete for a pool when that pool has requirements there and all are satisfied
// - Working level is the highest complete level plus one step, else the base level
// - PQS and Events pools are derived independently
func Derive(u models.Upgrader, s *models.Syllabus) models.WorkingLevels {
	if s == nil {
		return models.WorkingLevels{}
	}
	set := syllabus.NewCompletionSet(u.Completions)
	return models.WorkingLevels{
		PQS:    derivePool(s, models.PoolPQS, set),
		Events: derivePool(s, models.PoolEvents, set),
	}
}

func derivePool(s *models.Syllabus, pool models.Pool, set syllabus.CompletionSet) int {
	highest := 0
	for _, level := range s.Levels() {
		reqs := syllabus.PoolAt(s, pool, level)
		if len(reqs) == 0 {
			continue
		}
		if syllabus.CountSatisfied(reqs, set) == len(reqs) {
			highest = level
		}
	}
	if highest == 0 {
		return Base(s)
	}
	return highest + Step
}

// Resolve returns the levels the engine should work with. When derivation is
// disabled for the position both pools use the upgrader's assigned target
// level, or the base level when none is assigned.
func Resolve(u models.Upgrader, s *models.Syllabus, settings models.PositionSettings) models.WorkingLevels {
	if settings.UseDerivedLevels {
		return Derive(u, s)
	}
	level := u.TargetLevel
	if level == 0 {
		level = Base(s)
	}
	return models.WorkingLevels{PQS: level, Events: level}
}

// ResolveFor looks up the position settings in cfg and resolves levels.
func ResolveFor(u models.Upgrader, s *models.Syllabus, cfg models.EngineConfig) models.WorkingLevels {
	return Resolve(u, s, models.PositionSettings{UseDerivedLevels: cfg.UseDerivedLevels(u.Position)})
}
