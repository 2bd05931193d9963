package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/prompy/prompy/internal/refparser"
	"github.com/prompy/prompy/internal/scope"
)

type stubResolver struct {
	renders  map[string]string
	lastLine *int
}

func (s stubResolver) ResolveReference(ctx context.Context, tok *refparser.Token, callerScope *scope.Scope) (string, error) {
	if s.lastLine != nil {
		*s.lastLine = tok.Line
	}
	return s.renders[tok.Slug], nil
}

func render(t *testing.T, body string, vars map[string]cty.Value, resolver ReferenceResolver) string {
	t.Helper()
	nodes, err := Parse(body)
	require.NoError(t, err)

	sc := scope.New()
	for k, v := range vars {
		sc.Set(k, v)
	}
	out, err := Evaluate(context.Background(), nodes, sc, resolver)
	require.NoError(t, err)
	return out
}

func TestEvaluate_PlainText(t *testing.T) {
	out := render(t, "hello world", nil, stubResolver{})
	assert.Equal(t, "hello world", out)
}

func TestEvaluate_VariableSubstitution(t *testing.T) {
	out := render(t, "Hello, {{ name }}!", map[string]cty.Value{"name": cty.StringVal("Ada")}, stubResolver{})
	assert.Equal(t, "Hello, Ada!", out)
}

func TestEvaluate_FilterPipeline(t *testing.T) {
	out := render(t, "{{ name|capitalize }}", map[string]cty.Value{"name": cty.StringVal("ada")}, stubResolver{})
	assert.Equal(t, "Ada", out)
}

func TestEvaluate_ChainedFilters(t *testing.T) {
	out := render(t, "{{ name|trim|upper }}", map[string]cty.Value{"name": cty.StringVal("  ada  ")}, stubResolver{})
	assert.Equal(t, "ADA", out)
}

func TestEvaluate_IfElse(t *testing.T) {
	body := "{% if flag %}yes{% else %}no{% endif %}"
	assert.Equal(t, "yes", render(t, body, map[string]cty.Value{"flag": cty.True}, stubResolver{}))
	assert.Equal(t, "no", render(t, body, map[string]cty.Value{"flag": cty.False}, stubResolver{}))
}

func TestEvaluate_IfConditionWithLogicalOr(t *testing.T) {
	body := "{% if a || b %}yes{% else %}no{% endif %}"
	assert.Equal(t, "yes", render(t, body, map[string]cty.Value{"a": cty.False, "b": cty.True}, stubResolver{}))
	assert.Equal(t, "no", render(t, body, map[string]cty.Value{"a": cty.False, "b": cty.False}, stubResolver{}))
}

func TestEvaluate_IfElifElse(t *testing.T) {
	body := "{% if a %}A{% elif b %}B{% else %}C{% endif %}"
	assert.Equal(t, "B", render(t, body, map[string]cty.Value{"a": cty.False, "b": cty.True}, stubResolver{}))
}

func TestEvaluate_ForLoop(t *testing.T) {
	body := "{% for item in items %}[{{ item }}]{% endfor %}"
	out := render(t, body, map[string]cty.Value{
		"items": cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
	}, stubResolver{})
	assert.Equal(t, "[a][b]", out)
}

func TestEvaluate_SetStatement(t *testing.T) {
	out := render(t, "{% set greeting = 'hi' %}{{ greeting }}", nil, stubResolver{})
	assert.Equal(t, "hi", out)
}

func TestEvaluate_WholeContentReferenceDispatchesToResolver(t *testing.T) {
	out := render(t, "{{ @intro(name=target) }}", map[string]cty.Value{"target": cty.StringVal("x")},
		stubResolver{renders: map[string]string{"intro": "INTRO-RENDERED"}})
	assert.Equal(t, "INTRO-RENDERED", out)
}

func TestEvaluate_ReferenceDispatchRecordsSourceLine(t *testing.T) {
	var line int
	out := render(t, "line one\nline two\n{{ @intro() }}",
		nil, stubResolver{renders: map[string]string{"intro": "INTRO"}, lastLine: &line})
	assert.Equal(t, "line one\nline two\nINTRO", out)
	assert.Equal(t, 3, line)
}

func TestEvaluate_NestedForInsideIf(t *testing.T) {
	body := "{% if show %}{% for x in items %}{{ x }}{% endfor %}{% endif %}"
	out := render(t, body, map[string]cty.Value{
		"show":  cty.True,
		"items": cty.ListVal([]cty.Value{cty.StringVal("1"), cty.StringVal("2")}),
	}, stubResolver{})
	assert.Equal(t, "12", out)
}
