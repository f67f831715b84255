package oracle

import (
	"fmt"
	"math"
	"strings"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
	"github.com/leengari/linkplanner/internal/measure"
)

// Language hints the oracles about the language of the compared literals
type Language int

const (
	LanguageNull Language = iota
	English
	German
	French
)

func (l Language) String() string {
	switch l {
	case LanguageNull:
		return "null"
	case English:
		return "en"
	case German:
		return "de"
	case French:
		return "fr"
	default:
		return fmt.Sprintf("Language(%d)", int(l))
	}
}

// ParseLanguage accepts "", "null", "en", "de", "fr" in any case
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none":
		return LanguageNull, nil
	case "en":
		return English, nil
	case "de":
		return German, nil
	case "fr":
		return French, nil
	default:
		return LanguageNull, domainerrors.InvalidInputf("unknown language %q", s)
	}
}

// Input is everything an oracle may look at
type Input struct {
	SourceSize int
	TargetSize int
	Threshold  float64
	Language   Language
}

// CrossProduct is |S|·|T|
func (in Input) CrossProduct() float64 {
	return float64(in.SourceSize) * float64(in.TargetSize)
}

// Oracle approximates the runtime and the output size of one join family.
// Implementations are pure functions of their Input.
type Oracle interface {
	Family() measure.Family
	Runtime(in Input) float64
	Size(in Input) float64
}

// LinearModel is intercept + source·|S| + target·|T| + threshold·θ
type LinearModel struct {
	Intercept float64 `toml:"intercept" yaml:"intercept"`
	Source    float64 `toml:"source" yaml:"source"`
	Target    float64 `toml:"target" yaml:"target"`
	Threshold float64 `toml:"threshold" yaml:"threshold"`
}

func (m LinearModel) Eval(in Input) float64 {
	return m.Intercept +
		m.Source*float64(in.SourceSize) +
		m.Target*float64(in.TargetSize) +
		m.Threshold*in.Threshold
}

// Models are the runtime and mapping-size regressions of a join
type Models struct {
	Runtime LinearModel `toml:"runtime" yaml:"runtime"`
	Size    LinearModel `toml:"size" yaml:"size"`
}

// FamilyModels holds the language-independent models plus per-language overrides
type FamilyModels struct {
	Models
	Languages map[Language]Models
}

func (fm FamilyModels) forLanguage(l Language) Models {
	if m, ok := fm.Languages[l]; ok {
		return m
	}
	return fm.Models
}

// linear evaluates a FamilyModels and clamps the results to sane ranges:
// runtime is never negative and size never leaves [0, |S|·|T|].
type linear struct {
	models FamilyModels
}

func (o linear) Runtime(in Input) float64 {
	return math.Max(0, o.models.forLanguage(in.Language).Runtime.Eval(in))
}

func (o linear) Size(in Input) float64 {
	size := o.models.forLanguage(in.Language).Size.Eval(in)
	return math.Min(math.Max(0, size), in.CrossProduct())
}

// EditDistanceOracle prices the edit-distance join (levenshtein)
type EditDistanceOracle struct{ linear }

func NewEditDistanceOracle(m FamilyModels) *EditDistanceOracle {
	return &EditDistanceOracle{linear{m}}
}

func (*EditDistanceOracle) Family() measure.Family { return measure.FamilyEditDistance }

// EuclideanOracle prices the total-order blocking join for numeric measures
type EuclideanOracle struct{ linear }

func NewEuclideanOracle(m FamilyModels) *EuclideanOracle {
	return &EuclideanOracle{linear{m}}
}

func (*EuclideanOracle) Family() measure.Family { return measure.FamilyEuclidean }

// QGramOracle prices the fast q-gram join
type QGramOracle struct{ linear }

func NewQGramOracle(m FamilyModels) *QGramOracle {
	return &QGramOracle{linear{m}}
}

func (*QGramOracle) Family() measure.Family { return measure.FamilyQGrams }

// JaroOracle prices the Jaro join
type JaroOracle struct{ linear }

func NewJaroOracle(m FamilyModels) *JaroOracle {
	return &JaroOracle{linear{m}}
}

func (*JaroOracle) Family() measure.Family { return measure.FamilyJaro }

// SetSimilarityOracle prices the general set-similarity join that runs every
// measure without a dedicated algorithm
type SetSimilarityOracle struct{ linear }

func NewSetSimilarityOracle(m FamilyModels) *SetSimilarityOracle {
	return &SetSimilarityOracle{linear{m}}
}

func (*SetSimilarityOracle) Family() measure.Family { return measure.FamilyDefault }
