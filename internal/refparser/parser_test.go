package refparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAll_BareSlug(t *testing.T) {
	tokens, err := FindAll("see @intro for background")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "intro", tokens[0].Slug)
	assert.Empty(t, tokens[0].Positional)
	assert.Equal(t, "see ", "see @intro for background"[:tokens[0].Start])
}

func TestFindAll_PositionalAndKeywordArgs(t *testing.T) {
	tokens, err := FindAll(`@greet("hello", name=target, loud=true)`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	tok := tokens[0]

	assert.Equal(t, "greet", tok.Slug)
	require.Len(t, tok.Positional, 1)
	assert.Equal(t, Literal, tok.Positional[0].Kind)
	assert.Equal(t, "hello", tok.Positional[0].Text)

	require.Len(t, tok.Keyword, 2)
	assert.Equal(t, "name", tok.Keyword[0].Name)
	assert.Equal(t, Identifier, tok.Keyword[0].Value.Kind)
	assert.Equal(t, "target", tok.Keyword[0].Value.Text)
	assert.Equal(t, "loud", tok.Keyword[1].Name)
	assert.Equal(t, "true", tok.Keyword[1].Value.Text)
}

func TestFindAll_NestedReferenceArgument(t *testing.T) {
	tokens, err := FindAll(`@wrap(inner=@greet("hi"))`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	kw := tokens[0].Keyword
	require.Len(t, kw, 1)
	assert.Equal(t, "inner", kw[0].Name)
	require.Equal(t, Reference, kw[0].Value.Kind)
	require.NotNil(t, kw[0].Value.Reference)
	assert.Equal(t, "greet", kw[0].Value.Reference.Slug)
}

func TestFindAll_KeywordLastOneWins(t *testing.T) {
	tokens, err := FindAll(`@pick(name="a", name="b")`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	kw := tokens[0].Keyword
	require.Len(t, kw, 1)
	assert.Equal(t, "b", kw[0].Value.Text)
}

func TestFindAll_EscapedAtIsSkipped(t *testing.T) {
	tokens, err := FindAll("this is an @@escaped mention, not @real one")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "real", tokens[0].Slug)
}

func TestFindAll_MultipleReferencesInOrder(t *testing.T) {
	tokens, err := FindAll("@first then @second(x)")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "first", tokens[0].Slug)
	assert.Equal(t, "second", tokens[1].Slug)
}

func TestFindAll_UnbalancedParensIsSyntaxError(t *testing.T) {
	_, err := FindAll("@broken(a, b")
	require.Error(t, err)
}

func TestFindAll_UnterminatedStringIsSyntaxError(t *testing.T) {
	_, err := FindAll(`@broken("unterminated)`)
	require.Error(t, err)
}

func TestFindAll_QuoteWithEscape(t *testing.T) {
	tokens, err := FindAll(`@say("say \"hi\"")`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Len(t, tokens[0].Positional, 1)
	assert.Equal(t, `say "hi"`, tokens[0].Positional[0].Text)
}

func TestIsReference_WholeContentMatch(t *testing.T) {
	tok, ok, err := IsReference("  @intro(name=target)  ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "intro", tok.Slug)
}

func TestIsReference_NotAReferenceWhenTextSurroundsIt(t *testing.T) {
	_, ok, err := IsReference("prefix @intro")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsReference_PlainExpressionIsNotAReference(t *testing.T) {
	_, ok, err := IsReference("name|capitalize")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToken_SlugEndAllowsByteForByteSplice(t *testing.T) {
	text := `before @old('kept as-is', key = value ) after`
	tokens, err := FindAll(text)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	tok := tokens[0]

	rewritten := text[:tok.Start] + "@" + "new" + text[tok.SlugEnd:tok.End] + text[tok.End:]
	assert.Equal(t, `before @new('kept as-is', key = value ) after`, rewritten)
}
