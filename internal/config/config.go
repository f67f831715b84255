package config

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
	"github.com/leengari/linkplanner/internal/measure"
	"github.com/leengari/linkplanner/internal/oracle"
	"github.com/leengari/linkplanner/internal/planner"
)

// Config is the planner configuration file:
//
//	language = "de"
//	merge_overhead = 1.0
//
//	[logging]
//	level = "debug"
//	seq_url = "http://localhost:5341"
//
//	[oracles.levenshtein.runtime]
//	intercept = 16.27
//	source = 5.1
//
//	[oracles.levenshtein.languages.de.runtime]
//	intercept = 20
//
//	[measures]
//	default_pair_cost = 0.001
//	[measures.pair_costs]
//	levenshtein = 0.004
type Config struct {
	Language      string                   `toml:"language"`
	MergeOverhead float64                  `toml:"merge_overhead"`
	Logging       Logging                  `toml:"logging"`
	Oracles       map[string]OracleSection `toml:"oracles"`
	Measures      Measures                 `toml:"measures"`
}

// Logging configures internal/logging
type Logging struct {
	Level  string `toml:"level"`
	SeqURL string `toml:"seq_url"`
}

// OracleSection overrides the built-in models of one measure family.
// A model left out keeps its built-in coefficients.
type OracleSection struct {
	Runtime   *oracle.LinearModel      `toml:"runtime"`
	Size      *oracle.LinearModel      `toml:"size"`
	Languages map[string]LanguageModel `toml:"languages"`
}

// LanguageModel overrides a family's models for one language
type LanguageModel struct {
	Runtime *oracle.LinearModel `toml:"runtime"`
	Size    *oracle.LinearModel `toml:"size"`
}

// Measures prices filter evaluations
type Measures struct {
	DefaultPairCost float64            `toml:"default_pair_cost"`
	PairCosts       map[string]float64 `toml:"pair_costs"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		MergeOverhead: planner.DefaultMergeOverhead,
		Logging:       Logging{Level: "info"},
		Measures:      Measures{DefaultPairCost: measure.DefaultPairCost},
	}
}

// Load overlays the TOML file at path onto Default and validates the result
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, domainerrors.InvalidInputf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Validate checks ranges and names
func (c *Config) Validate() error {
	if math.IsNaN(c.MergeOverhead) || c.MergeOverhead < 0 {
		return domainerrors.InvalidInputf("merge_overhead %v must be >= 0", c.MergeOverhead)
	}
	if _, err := oracle.ParseLanguage(c.Language); err != nil {
		return err
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	for name, section := range c.Oracles {
		if _, err := lookupFamily(name); err != nil {
			return err
		}
		for lang := range section.Languages {
			if _, err := oracle.ParseLanguage(lang); err != nil {
				return errors.Wrapf(err, "oracles.%s", name)
			}
		}
	}
	if math.IsNaN(c.Measures.DefaultPairCost) || c.Measures.DefaultPairCost < 0 {
		return domainerrors.InvalidInputf("default_pair_cost %v must be >= 0", c.Measures.DefaultPairCost)
	}
	for name, cost := range c.Measures.PairCosts {
		if math.IsNaN(cost) || cost < 0 {
			return domainerrors.InvalidInputf("pair cost of %s is %v, must be >= 0", name, cost)
		}
	}
	return nil
}

// SlogLevel parses Level; empty means info
func (l Logging) SlogLevel() (slog.Level, error) {
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, domainerrors.InvalidInputf("unknown log level %q", l.Level)
	}
	return level, nil
}

// LanguageHint is the parsed language
func (c *Config) LanguageHint() (oracle.Language, error) {
	return oracle.ParseLanguage(c.Language)
}

// OracleModels merges the configured sections over oracle.DefaultModels
func (c *Config) OracleModels() (map[measure.Family]oracle.FamilyModels, error) {
	models := oracle.DefaultModels()

	// apply in a fixed order so errors are reproducible
	names := make([]string, 0, len(c.Oracles))
	for name := range c.Oracles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		section := c.Oracles[name]
		family, err := lookupFamily(name)
		if err != nil {
			return nil, err
		}
		fm := models[family]
		if section.Runtime != nil {
			fm.Runtime = *section.Runtime
		}
		if section.Size != nil {
			fm.Size = *section.Size
		}
		for langName, override := range section.Languages {
			lang, err := oracle.ParseLanguage(langName)
			if err != nil {
				return nil, errors.Wrapf(err, "oracles.%s", name)
			}
			if fm.Languages == nil {
				fm.Languages = make(map[oracle.Language]oracle.Models)
			}
			lm, ok := fm.Languages[lang]
			if !ok {
				lm = fm.Models
			}
			if override.Runtime != nil {
				lm.Runtime = *override.Runtime
			}
			if override.Size != nil {
				lm.Size = *override.Size
			}
			fm.Languages[lang] = lm
		}
		models[family] = fm
	}
	return models, nil
}

// Catalog builds the measure catalog with the configured pair costs
func (c *Config) Catalog() *measure.Catalog {
	return measure.NewCatalog(c.Measures.DefaultPairCost, c.Measures.PairCosts)
}

// PlannerOptions turns the configuration into planner options
func (c *Config) PlannerOptions() ([]planner.Option, error) {
	models, err := c.OracleModels()
	if err != nil {
		return nil, err
	}
	lang, err := c.LanguageHint()
	if err != nil {
		return nil, err
	}
	return []planner.Option{
		planner.WithRegistry(oracle.NewRegistry(models)),
		planner.WithCatalog(c.Catalog()),
		planner.WithLanguage(lang),
		planner.WithMergeOverhead(c.MergeOverhead),
	}, nil
}

func lookupFamily(name string) (measure.Family, error) {
	family := measure.LookupFamily(name)
	if family == measure.FamilyDefault && !strings.EqualFold(strings.TrimSpace(name), measure.FamilyDefault.String()) {
		return 0, domainerrors.InvalidInputf("unknown oracle family %q", name)
	}
	return family, nil
}
