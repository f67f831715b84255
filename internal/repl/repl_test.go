package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/linkplanner/internal/collection"
	"github.com/leengari/linkplanner/internal/measure"
	"github.com/leengari/linkplanner/internal/planner"
)

func session(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	p := planner.New(collection.Fixed(100), collection.Fixed(100))
	err := Start(strings.NewReader(input), &out, p, measure.DefaultCatalog())
	require.NoError(t, err)
	return out.String()
}

func TestStartPlansEachLine(t *testing.T) {
	out := session(t, "jaro(x.a,y.a)|0.9\n\nOR(jaro(x.a,y.a)|0.5,qgrams(x.b,y.b)|0.7)\nexit\nlevenshtein(x.a,y.a)|0.5\n")

	assert.Contains(t, out, "RUN cost=")
	assert.Contains(t, out, "> RUN jaro(x.a,y.a)|0.9")
	assert.Contains(t, out, "UNION cost=")
	assert.NotContains(t, out, "levenshtein", "lines after exit are not planned")
}

func TestStartReportsErrorsAndContinues(t *testing.T) {
	out := session(t, "AND(jaro(x.a,y.a)|0.5\njaro(x.a,y.a)|1.5\n\\q\n")

	assert.Equal(t, 2, strings.Count(out, "Error: "))
}

func TestStartListsMeasures(t *testing.T) {
	out := session(t, "ls\n")

	assert.Contains(t, out, "Known measures:")
	assert.Contains(t, out, "  - levenshtein (levenshtein)")
}

func TestStartTableToggle(t *testing.T) {
	out := session(t, "table\nAND(jaro(x.a,y.a)|0.5,qgrams(x.b,y.b)|0.7)\n")

	assert.Contains(t, out, "selectivity")
	assert.Contains(t, out, "INTERSECTION")
}

func TestStartEndsOnEOF(t *testing.T) {
	out := session(t, "")
	assert.True(t, strings.HasSuffix(out, "> \n"))
}
