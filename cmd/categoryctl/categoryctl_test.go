package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))

	require.NoError(t, cmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func setupStore(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "shelf.db"))
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("JWT_SECRET", "categoryctl-test-secret")

	assert.Contains(t, run(t, "migrate"), "migrations applied")
}

func TestCategoryctl_CreateTreeAndPath(t *testing.T) {
	setupStore(t)
	owner := uuid.New().String()

	fiction := strings.Fields(run(t, "create", owner, "Fiction"))
	require.Len(t, fiction, 3)
	assert.Equal(t, "1", fiction[1])

	fantasy := strings.Fields(run(t, "create", owner, "Fantasy", "--parent", fiction[0]))
	require.Len(t, fantasy, 3)
	assert.Equal(t, "1.1", fantasy[1])

	run(t, "create", owner, "Poetry")

	tree := run(t, "tree", owner)
	lines := strings.Split(strings.TrimRight(tree, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "1 "))
	assert.True(t, strings.HasPrefix(lines[1], "  1.1 "))
	assert.True(t, strings.HasPrefix(lines[2], "2 "))
	assert.Contains(t, lines[2], "Poetry")

	assert.Equal(t, "Fiction > Fantasy\n", run(t, "path", owner, fantasy[0]))
}

func TestCategoryctl_Token(t *testing.T) {
	setupStore(t)

	token := strings.TrimSpace(run(t, "token", uuid.New().String(), "--email", "reader@example.com"))
	assert.Len(t, strings.Split(token, "."), 3)
}

func TestCategoryctl_RejectsInvalidIDs(t *testing.T) {
	setupStore(t)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "tree", "not-a-uuid"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid owner id")
}

func TestCategoryctl_CreateUnderForeignParentFails(t *testing.T) {
	setupStore(t)
	owner := uuid.New().String()
	stranger := uuid.New().String()

	root := strings.Fields(run(t, "create", owner, "Fiction"))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "create", stranger, "Stolen", "--parent", root[0]})

	require.Error(t, cmd.Execute())
}
