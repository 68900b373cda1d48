package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_KnownVariables(t *testing.T) {
	ctx := NewContext("/repo", "/home/u", "/usr/bin:/bin", "feature", "/repo/sub", false)
	out, err := ctx.Expand("{REPO_ROOT}/{PROJECT_NAME} in {WORKTREE_NAME}")
	require.NoError(t, err)
	assert.Equal(t, "/repo/repo in feature", out)
}

func TestExpand_UnknownVariableIsHardError(t *testing.T) {
	ctx := NewContext("/repo", "/home/u", "/bin", "", "/repo", false)
	_, err := ctx.Expand("{NOT_A_VAR}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_A_VAR")
}

func TestExpand_ChangedFilesRequiresOtherExecutionType(t *testing.T) {
	ctx := NewContext("/repo", "/home/u", "/bin", "", "/repo", false)
	_, err := ctx.Expand("{CHANGED_FILES}")
	require.Error(t, err)

	dynamic := NewContext("/repo", "/home/u", "/bin", "", "/repo", true).
		WithChangedFiles("a.go b.go", "/tmp/x")
	out, err := dynamic.Expand("{CHANGED_FILES} -> {CHANGED_FILES_FILE}")
	require.NoError(t, err)
	assert.Equal(t, "a.go b.go -> /tmp/x", out)
}

func TestExpand_IdempotentWithoutPlaceholders(t *testing.T) {
	ctx := NewContext("/repo", "/home/u", "/bin", "", "/repo", false)
	out, err := ctx.Expand("no placeholders here")
	require.NoError(t, err)
	assert.Equal(t, "no placeholders here", out)
}

func TestExpand_DoesNotReExpandResult(t *testing.T) {
	ctx := NewContext("{REPO_ROOT}", "/home/u", "/bin", "", "/repo", false)
	out, err := ctx.Expand("{REPO_ROOT}")
	require.NoError(t, err)
	assert.Equal(t, "{REPO_ROOT}", out)
}

func TestExpandAll(t *testing.T) {
	ctx := NewContext("/repo", "/home/u", "/bin", "", "/repo", false)
	out, err := ExpandAll(ctx, []string{"echo", "{PROJECT_NAME}"})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "repo"}, out)
}

func TestExpandEnv(t *testing.T) {
	ctx := NewContext("/repo", "/home/u", "/bin", "", "/repo", false)
	out, err := ExpandEnv(ctx, map[string]string{"NAME": "{PROJECT_NAME}"})
	require.NoError(t, err)
	assert.Equal(t, "repo", out["NAME"])
}

func TestJoinChangedFiles(t *testing.T) {
	assert.Equal(t, "a.go b.go", JoinChangedFiles([]string{"a.go", "b.go"}))
	assert.Equal(t, "", JoinChangedFiles(nil))
}
