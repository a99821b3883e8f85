package models

// PositionSettings configures the engine for one position (track).
type PositionSettings struct {
	UseDerivedLevels bool
	Deadlines        map[int]Curve
}

// EngineConfig is the configuration surface consumed by the engine.
type EngineConfig struct {
	UseRoundedTrainingStartDate bool
	Positions                   map[string]PositionSettings
}

// ForPosition returns the settings for a position (case-insensitive).
func (c EngineConfig) ForPosition(position string) (PositionSettings, bool) {
	key := RequirementKey(position)
	for name, s := range c.Positions {
		if RequirementKey(name) == key {
			return s, true
		}
	}
	return PositionSettings{}, false
}

// CurveFor resolves the curve for a level. Position settings take precedence
// over curves carried by the syllabus itself.
func (c EngineConfig) CurveFor(position string, s *Syllabus, level int) (Curve, bool) {
	if ps, ok := c.ForPosition(position); ok {
		if curve, ok := ps.Deadlines[level]; ok {
			return curve, true
		}
	}
	if s != nil {
		if curve, ok := s.Curves[level]; ok {
			return curve, true
		}
	}
	return Curve{}, false
}

// UseDerivedLevels reports whether the level deriver runs for a position.
// Unconfigured positions derive levels.
func (c EngineConfig) UseDerivedLevels(position string) bool {
	if ps, ok := c.ForPosition(position); ok {
		return ps.UseDerivedLevels
	}
	return true
}
