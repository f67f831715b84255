package oracle

import (
	"github.com/leengari/linkplanner/internal/measure"
)

// Registry is the closed lookup table from measure family to oracle.
// It is a value type: With returns a modified copy, so a Registry shared by
// concurrent planners is never mutated.
type Registry struct {
	oracles [measure.NumFamilies]Oracle
}

// NewRegistry builds one oracle per family from the given models.
// Families missing from models use DefaultModels.
func NewRegistry(models map[measure.Family]FamilyModels) Registry {
	defaults := DefaultModels()
	pick := func(f measure.Family) FamilyModels {
		if m, ok := models[f]; ok {
			return m
		}
		return defaults[f]
	}

	var r Registry
	r.oracles[measure.FamilyDefault] = NewSetSimilarityOracle(pick(measure.FamilyDefault))
	r.oracles[measure.FamilyEditDistance] = NewEditDistanceOracle(pick(measure.FamilyEditDistance))
	r.oracles[measure.FamilyEuclidean] = NewEuclideanOracle(pick(measure.FamilyEuclidean))
	r.oracles[measure.FamilyQGrams] = NewQGramOracle(pick(measure.FamilyQGrams))
	r.oracles[measure.FamilyJaro] = NewJaroOracle(pick(measure.FamilyJaro))
	return r
}

// DefaultRegistry uses the built-in coefficients for every family
func DefaultRegistry() Registry {
	return NewRegistry(nil)
}

// For returns the oracle of family f; out-of-range families get the default oracle
func (r Registry) For(f measure.Family) Oracle {
	if f < 0 || int(f) >= len(r.oracles) || r.oracles[f] == nil {
		return r.oracles[measure.FamilyDefault]
	}
	return r.oracles[f]
}

// With returns a copy of r where family f is served by o
func (r Registry) With(f measure.Family, o Oracle) Registry {
	r.oracles[f] = o
	return r
}

// DefaultModels are the built-in regressions. Runtimes are in milliseconds,
// sizes in links. Only the edit-distance join has a German variant.
func DefaultModels() map[measure.Family]FamilyModels {
	return map[measure.Family]FamilyModels{
		measure.FamilyDefault: {
			Models: Models{
				Runtime: LinearModel{Intercept: 120, Source: 0.42, Target: 0.42, Threshold: -95},
				Size:    LinearModel{Intercept: 12, Source: 0.015, Target: 0.015, Threshold: -11},
			},
		},
		measure.FamilyEditDistance: {
			Models: Models{
				Runtime: LinearModel{Intercept: 200, Source: 0.56, Target: 0.56, Threshold: -70.98},
				Size:    LinearModel{Intercept: 10, Source: 0.01, Target: 0.01, Threshold: -9},
			},
			Languages: map[Language]Models{
				German: {
					Runtime: LinearModel{Intercept: 16.27, Source: 5.1, Target: 4.9, Threshold: -23.44},
					Size:    LinearModel{Intercept: 8, Source: 0.008, Target: 0.008, Threshold: -7.5},
				},
			},
		},
		measure.FamilyEuclidean: {
			Models: Models{
				Runtime: LinearModel{Intercept: 50, Source: 0.12, Target: 0.12, Threshold: -30},
				Size:    LinearModel{Intercept: 40, Source: 0.05, Target: 0.05, Threshold: -35},
			},
		},
		measure.FamilyQGrams: {
			Models: Models{
				Runtime: LinearModel{Intercept: 80, Source: 0.3, Target: 0.3, Threshold: -60},
				Size:    LinearModel{Intercept: 15, Source: 0.02, Target: 0.02, Threshold: -14},
			},
		},
		measure.FamilyJaro: {
			Models: Models{
				Runtime: LinearModel{Intercept: 300, Source: 0.9, Target: 0.9, Threshold: -120},
				Size:    LinearModel{Intercept: 20, Source: 0.03, Target: 0.03, Threshold: -18},
			},
		},
	}
}
