package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompy/prompy/internal/config"
	"github.com/prompy/prompy/internal/diagnostics"
)

func writeFragment(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	return New("", "", []config.Root{{Kind: config.RootUser, Path: root}})
}

func TestRender_PlainFragmentNoArgs(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/greeting.md", "Hello there.")

	r := newTestResolver(t, root)
	out, err := r.Render(context.Background(), "greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", out)
}

func TestRender_ArgumentSubstitution(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/greet.md", "---\nargs:\n  name:\n---\nHello, {{ name }}!")

	r := newTestResolver(t, root)
	out, err := r.Render(context.Background(), "greet", map[string]string{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada!", out)
}

func TestRender_MissingRequiredArgument(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/greet.md", "---\nargs:\n  name:\n---\nHello, {{ name }}!")

	r := newTestResolver(t, root)
	_, err := r.Render(context.Background(), "greet", nil)
	require.Error(t, err)
	var missing *diagnostics.MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "name", missing.Name)
	assert.Equal(t, 0, missing.CallerLine, "a top-level render has no caller reference, so no line")
}

func TestRender_MissingRequiredArgumentReportsCallerLine(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/finish-when.md", "---\nargs:\n  tasks:\n---\nDo: {{ tasks }}")
	writeFragment(t, root, "fragments/top.md", "{{ @finish-when() }}")

	r := newTestResolver(t, root)
	_, err := r.Render(context.Background(), "top", nil)
	require.Error(t, err)
	var missing *diagnostics.MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "tasks", missing.Name)
	assert.Equal(t, "finish-when", missing.Fragment)
	assert.Equal(t, 1, missing.CallerLine)
}

func TestRender_DefaultArgumentUsedWhenNotBound(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/greet.md", "---\nargs:\n  name: World\n---\nHello, {{ name }}!")

	r := newTestResolver(t, root)
	out, err := r.Render(context.Background(), "greet", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", out)
}

func TestRender_NestedReferenceExpansion(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/outer.md", "Start. {{ @inner(value='x') }} End.")
	writeFragment(t, root, "fragments/inner.md", "---\nargs:\n  value:\n---\nINNER[{{ value }}]")

	r := newTestResolver(t, root)
	out, err := r.Render(context.Background(), "outer", nil)
	require.NoError(t, err)
	assert.Equal(t, "Start. INNER[x] End.", out)
}

func TestRender_DirectCycleDetected(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/a.md", "{{ @b }}")
	writeFragment(t, root, "fragments/b.md", "{{ @a }}")

	r := newTestResolver(t, root)
	_, err := r.Render(context.Background(), "a", nil)
	require.Error(t, err)
	var cycle *diagnostics.CycleError
	require.ErrorAs(t, err, &cycle)
}

func TestRender_MissingFragment(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t, root)
	_, err := r.Render(context.Background(), "nonexistent", nil)
	require.Error(t, err)
	var missing *diagnostics.MissingFragmentError
	require.ErrorAs(t, err, &missing)
}

func TestRender_UnboundVariableInArgumentValue(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/outer.md", "{{ @inner(value=undefined_var) }}")
	writeFragment(t, root, "fragments/inner.md", "---\nargs:\n  value:\n---\n{{ value }}")

	r := newTestResolver(t, root)
	_, err := r.Render(context.Background(), "outer", nil)
	require.Error(t, err)
	var unbound *diagnostics.UnboundVariableError
	require.ErrorAs(t, err, &unbound)
}

func TestRender_UnknownKeywordArgumentStillBoundInCalleeScope(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/outer.md", "{{ @inner(extra='surprise') }}")
	writeFragment(t, root, "fragments/inner.md", "{{ extra }}")

	r := newTestResolver(t, root)
	out, err := r.Render(context.Background(), "outer", nil)
	require.NoError(t, err)
	assert.Equal(t, "surprise", out)
}

func TestRender_EachReferenceGetsFreshScope(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, "fragments/outer.md", "---\nargs:\n  name: Outer\n---\n{{ name }} {{ @inner }}")
	writeFragment(t, root, "fragments/inner.md", "---\nargs:\n  name: Inner\n---\n{{ name }}")

	r := newTestResolver(t, root)
	out, err := r.Render(context.Background(), "outer", nil)
	require.NoError(t, err)
	assert.Equal(t, "Outer Inner", out)
}
