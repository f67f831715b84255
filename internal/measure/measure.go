package measure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
	"github.com/leengari/linkplanner/internal/parser"
	"github.com/leengari/linkplanner/internal/parser/ast"
)

// Family groups measures that share a join algorithm, and therefore a cost oracle
type Family int

const (
	FamilyDefault      Family = iota // general set-similarity join
	FamilyEditDistance               // edit-distance join
	FamilyEuclidean                  // numeric range / total-order blocking
	FamilyQGrams                     // fast q-gram join
	FamilyJaro                       // Jaro join

	NumFamilies = iota
)

// String returns the canonical family name used in configuration files
func (f Family) String() string {
	switch f {
	case FamilyDefault:
		return "default"
	case FamilyEditDistance:
		return "levenshtein"
	case FamilyEuclidean:
		return "euclidean"
	case FamilyQGrams:
		return "qgrams"
	case FamilyJaro:
		return "jaro"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// LookupFamily maps a case-insensitive family name to its Family.
// Anything unrecognized is FamilyDefault.
func LookupFamily(name string) Family {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "levenshtein":
		return FamilyEditDistance
	case "euclidean":
		return FamilyEuclidean
	case "qgrams":
		return FamilyQGrams
	case "jaro":
		return FamilyJaro
	default:
		return FamilyDefault
	}
}

// Measure is a similarity measure known to the catalog
type Measure struct {
	Name     string  // canonical lower-case name
	Family   Family  // join algorithm used to run it
	PairCost float64 // cost of evaluating it on one candidate pair
}

// RuntimeApproximation is the cost of applying the measure as a filter over
// a candidate set of the given size
func (m Measure) RuntimeApproximation(candidates int64) float64 {
	return m.PairCost * float64(candidates)
}

// combinators never denote a measure on their own
var combinators = map[string]bool{
	"and": true, "or": true, "xor": true, "minus": true, "diff": true,
	"min": true, "max": true, "add": true, "mult": true, "avg": true,
}

// IsCombinator reports whether name combines measures rather than naming one
func IsCombinator(name string) bool {
	return combinators[strings.ToLower(name)]
}

// builtin measures. Only a measure named exactly like a family is run by
// that family's join; every other one, jarowinkler included, goes to the
// default family.
var builtin = []string{
	"levenshtein", "normalizedlevenshtein",
	"euclidean", "geo_orthodromic",
	"qgrams",
	"jaro", "jarowinkler",
	"trigrams", "cosine", "jaccard", "overlap", "exactmatch", "soundex",
}

// DefaultPairCost is the cost of evaluating any measure on one candidate
// pair unless configured otherwise
const DefaultPairCost = 0.001

// Catalog resolves measure names and prices filter evaluations.
// It is immutable once built and safe for concurrent use.
type Catalog struct {
	measures        map[string]Measure
	defaultPairCost float64
}

// NewCatalog builds a catalog over the built-in measures. pairCosts overrides
// per-measure pair costs by name; names not built in are added to the
// default family.
func NewCatalog(defaultPairCost float64, pairCosts map[string]float64) *Catalog {
	c := &Catalog{
		measures:        make(map[string]Measure, len(builtin)+len(pairCosts)),
		defaultPairCost: defaultPairCost,
	}
	for _, name := range builtin {
		c.measures[name] = Measure{Name: name, Family: LookupFamily(name), PairCost: defaultPairCost}
	}
	for name, cost := range pairCosts {
		key := strings.ToLower(name)
		m, ok := c.measures[key]
		if !ok {
			m = Measure{Name: key, Family: LookupFamily(key)}
		}
		m.PairCost = cost
		c.measures[key] = m
	}
	return c
}

// DefaultCatalog prices every measure at DefaultPairCost
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultPairCost, nil)
}

// Lookup resolves a measure by case-insensitive name. Unknown names resolve
// to an ad-hoc measure of the default family priced at the default pair cost.
func (c *Catalog) Lookup(name string) Measure {
	key := strings.ToLower(strings.TrimSpace(name))
	if m, ok := c.measures[key]; ok {
		return m
	}
	return Measure{Name: key, Family: FamilyDefault, PairCost: c.defaultPairCost}
}

// Names lists the catalog's measures in sorted order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.measures))
	for name := range c.measures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Head parses a filter expression and resolves the measure it applies,
// i.e. the outermost call.
func (c *Catalog) Head(expr string) (Measure, error) {
	parsed, err := parser.ParseMeasure(expr)
	if err != nil {
		return Measure{}, errors.Wrapf(err, "filter expression %q", expr)
	}
	for {
		switch e := parsed.(type) {
		case *ast.CallExpression:
			return c.Lookup(e.Name), nil
		case *ast.ScaledExpression:
			parsed = e.Value
		default:
			return Measure{}, domainerrors.NewParseError(expr, 0, 0, parsed.String(), "expected a measure call")
		}
	}
}

// Extract lists every measure applied anywhere in expr, in order of
// appearance, looking through combinators such as MAX or AND. An empty
// expression has no measures.
func (c *Catalog) Extract(expr string) ([]string, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	parsed, err := parser.ParseMeasure(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "filter expression %q", expr)
	}
	var names []string
	ast.Walk(parsed, func(e ast.Expression) bool {
		call, ok := e.(*ast.CallExpression)
		if !ok {
			return true
		}
		if IsCombinator(call.Name) {
			return true
		}
		names = append(names, c.Lookup(call.Name).Name)
		return false
	})
	return names, nil
}

// FilterCost is the cost of applying each measure as a post-filter over a
// materialized candidate set of the given size.
func (c *Catalog) FilterCost(measures []string, candidates int64) float64 {
	var cost float64
	for _, name := range measures {
		cost += c.Lookup(name).RuntimeApproximation(candidates)
	}
	return cost
}
