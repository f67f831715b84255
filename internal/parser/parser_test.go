package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
	"github.com/leengari/linkplanner/internal/domain/spec"
	"github.com/leengari/linkplanner/internal/parser/ast"
)

func TestParseMeasureCall(t *testing.T) {
	expr, err := ParseMeasure("trigrams(x.name, y.name)")
	require.NoError(t, err)

	call, ok := expr.(*ast.CallExpression)
	require.True(t, ok, "expected CallExpression, got %T", expr)
	assert.Equal(t, "trigrams", call.Name)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "x.name", call.Args[0].Value.String())
	assert.Nil(t, call.Args[0].Threshold)
	assert.Equal(t, "trigrams(x.name,y.name)", call.String())
}

func TestParseMeasureNested(t *testing.T) {
	expr, err := ParseMeasure("MAX(jaro(x.a,y.a)|0.5, 0.3*qgrams(x.b,y.b)|0.2)")
	require.NoError(t, err)

	call := expr.(*ast.CallExpression)
	require.Len(t, call.Args, 2)
	require.NotNil(t, call.Args[0].Threshold)
	assert.Equal(t, 0.5, *call.Args[0].Threshold)

	scaled, ok := call.Args[1].Value.(*ast.ScaledExpression)
	require.True(t, ok)
	assert.Equal(t, 0.3, scaled.Factor.Value)
	assert.Equal(t, "MAX(jaro(x.a,y.a)|0.5,0.3*qgrams(x.b,y.b)|0.2)", call.String())
}

func TestParseMeasureErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed call", "levenshtein(x.name, y.name"},
		{"empty arguments", "jaro()"},
		{"missing threshold", "MAX(jaro(x.a,y.a)|, qgrams(x.b,y.b))"},
		{"trailing input", "jaro(x.a,y.a) jaro(x.b,y.b)"},
		{"operator without parens", "AND"},
		{"illegal character", "jaro(x.a,y.a) >= 0.5"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMeasure(tt.input)
			require.Error(t, err)
			assert.True(t, domainerrors.IsParse(err), "expected parse error, got %v", err)
		})
	}
}

func TestParseSpecification(t *testing.T) {
	input := "AND(levenshtein(x.name, y.name)|0.8, OR(jaro(x.a,y.a)|0.9, qgrams(x.b,y.b)|0.7)|0.5)|0.3"
	n, err := ParseSpecification(input)
	require.NoError(t, err)

	assert.Equal(t, spec.And, n.Operator)
	assert.Equal(t, 0.3, n.Threshold)
	require.Len(t, n.Children, 2)

	first := n.Children[0]
	assert.True(t, first.IsAtomic())
	assert.Equal(t, "levenshtein(x.name,y.name)", first.Filter)
	assert.Equal(t, 0.8, first.Threshold)

	second := n.Children[1]
	assert.Equal(t, spec.Or, second.Operator)
	assert.Equal(t, 0.5, second.Threshold)
	require.Len(t, second.Children, 2)
	assert.Equal(t, "qgrams(x.b,y.b)", second.Children[1].Filter)

	require.NoError(t, n.ValidateTree())
}

func TestParseSpecificationAtomic(t *testing.T) {
	n, err := ParseSpecification("jaro(x.a,y.a)|0.75")
	require.NoError(t, err)
	assert.True(t, n.IsAtomic())
	assert.Equal(t, 0.75, n.Threshold)
}

func TestParseSpecificationLowercaseOperators(t *testing.T) {
	n, err := ParseSpecification("minus(jaro(x.a,y.a)|0.5, xor(qgrams(x.b,y.b)|0.4, euclidean(x.c,y.c)|0.3)|0)")
	require.NoError(t, err)
	assert.Equal(t, spec.Minus, n.Operator)
	assert.Equal(t, spec.Xor, n.Children[1].Operator)
}

func TestParseSpecificationRoundTrip(t *testing.T) {
	input := "AND(levenshtein(x.name,y.name)|0.8,OR(jaro(x.a,y.a)|0.9,qgrams(x.b,y.b)|0.7)|0.5)"
	n, err := ParseSpecification(input)
	require.NoError(t, err)
	assert.Equal(t, input, n.String())
}

func TestParseSpecificationRejectsBareProperty(t *testing.T) {
	_, err := ParseSpecification("AND(x.name|0.5, jaro(x.a,y.a)|0.5)")
	require.Error(t, err)
	assert.True(t, domainerrors.IsParse(err))
}

func TestParseSpecificationSmallThresholds(t *testing.T) {
	node, err := ParseSpecification("MAX(jaro(x.a,y.a)|0.00001,qgrams(x.b,y.b)|1e-6)|0.5")
	require.NoError(t, err)
	assert.Equal(t, "MAX(jaro(x.a,y.a)|0.00001,qgrams(x.b,y.b)|0.000001)", node.Filter)

	// the rebuilt filter parses again
	_, err = ParseMeasure(node.Filter)
	require.NoError(t, err)

	node, err = ParseSpecification("OR(jaro(x.a,y.a)|1E-5,qgrams(x.b,y.b)|0.5)")
	require.NoError(t, err)
	require.Len(t, node.Children, 2)
	assert.Equal(t, 0.00001, node.Children[0].Threshold)
}
