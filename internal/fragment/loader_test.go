package fragment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NoFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.md", "just a body\n")

	l := NewLoader()
	p, err := l.Load(context.Background(), path, "plain")
	require.NoError(t, err)
	assert.Equal(t, "just a body\n", p.Body)
	assert.Empty(t, p.Arguments)
}

func TestLoad_WithFrontmatterAndArgs(t *testing.T) {
	dir := t.TempDir()
	content := "---\n" +
		"description: finish when tasks are done\n" +
		"categories: [testing]\n" +
		"args:\n" +
		"  tasks:\n" +
		"---\n" +
		"Do: {{ tasks }}"
	path := writeFile(t, dir, "finish-when.md", content)

	l := NewLoader()
	p, err := l.Load(context.Background(), path, "finish-when")
	require.NoError(t, err)

	assert.Equal(t, "finish when tasks are done", p.Description)
	assert.Equal(t, []string{"testing"}, p.Categories)
	assert.Equal(t, "Do: {{ tasks }}", p.Body)

	arg, ok := p.Argument("tasks")
	require.True(t, ok)
	assert.True(t, arg.Required())
}

func TestLoad_ArgsAndArgumentsMerge_ArgsWinsOnCollision(t *testing.T) {
	dir := t.TempDir()
	content := "---\n" +
		"arguments:\n" +
		"  name: old-default\n" +
		"  other: kept\n" +
		"args:\n" +
		"  name: new-default\n" +
		"---\n" +
		"body"
	path := writeFile(t, dir, "merge.md", content)

	l := NewLoader()
	p, err := l.Load(context.Background(), path, "merge")
	require.NoError(t, err)

	name, ok := p.Argument("name")
	require.True(t, ok)
	require.NotNil(t, name.Default)
	assert.Equal(t, "new-default", *name.Default)

	other, ok := p.Argument("other")
	require.True(t, ok)
	require.NotNil(t, other.Default)
	assert.Equal(t, "kept", *other.Default)
}

func TestLoad_CachesByAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "body")

	l := NewLoader()
	first, err := l.Load(context.Background(), path, "a")
	require.NoError(t, err)

	second, err := l.Load(context.Background(), path, "a")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestLoad_MissingFile(t *testing.T) {
	l := NewLoader()
	_, err := l.Load(context.Background(), "/nonexistent/path.md", "x")
	require.Error(t, err)
}
