package resolver

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tftio/peter-hook/pkg/config"
	"github.com/tftio/peter-hook/pkg/gitfacade"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		if exec.Command("git", "--version").Run() != nil {
			t.Skip("git not available, skipping resolver integration tests")
		}
		t.Fatalf("git init failed: %v", err)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveHierarchically_NearestOnly_NoMergingFromParent(t *testing.T) {
	repoRoot := initRepo(t)

	writeFile(t, filepath.Join(repoRoot, ".peter-hook.toml"), `
[hooks.fmt]
command = ["echo", "fmt"]

[hooks.lint]
command = ["echo", "lint"]

[groups.pre-commit]
includes = ["fmt", "lint"]
execution = "parallel"
`)

	writeFile(t, filepath.Join(repoRoot, "src", ".peter-hook.toml"), `
[hooks.test]
command = ["echo", "test"]

[groups.pre-commit]
includes = ["test"]
execution = "parallel"
`)

	writeFile(t, filepath.Join(repoRoot, "src", "x.rs"), "fn main() {}")

	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	groups, err := ResolveHierarchically("pre-commit", []string{"src/x.rs"}, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	hooks := groups[0].ResolvedHooks.Hooks
	assert.Len(t, hooks, 1)
	assert.Contains(t, hooks, "test")
	assert.NotContains(t, hooks, "fmt")
	assert.NotContains(t, hooks, "lint")
}

func TestGroupFilesByConfig_PartitionsByNearestConfig(t *testing.T) {
	repoRoot := initRepo(t)

	writeFile(t, filepath.Join(repoRoot, ".peter-hook.toml"), `
[hooks.pre-commit]
command = ["echo", "root"]
`)
	writeFile(t, filepath.Join(repoRoot, "pkg", ".peter-hook.toml"), `
[hooks.pre-commit]
command = ["echo", "pkg"]
`)
	writeFile(t, filepath.Join(repoRoot, "root.txt"), "x")
	writeFile(t, filepath.Join(repoRoot, "pkg", "a.txt"), "x")

	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	groups, err := GroupFilesByConfig(
		[]string{"root.txt", "pkg/a.txt"}, repoRoot, "pre-commit", "run", worktree,
	)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestResolveHierarchically_PlaceholderGroupContributesNothing(t *testing.T) {
	repoRoot := initRepo(t)
	writeFile(t, filepath.Join(repoRoot, ".peter-hook.toml"), `
[hooks.fmt]
command = ["echo", "fmt"]

[groups.pre-commit]
includes = ["fmt"]
placeholder = true
`)

	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	groups, err := ResolveHierarchically("pre-commit", nil, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestResolveHierarchically_UnknownIncludeSilentlyDropped(t *testing.T) {
	repoRoot := initRepo(t)
	writeFile(t, filepath.Join(repoRoot, ".peter-hook.toml"), `
[hooks.fmt]
command = ["echo", "fmt"]

[groups.pre-commit]
includes = ["fmt", "does-not-exist"]
`)

	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	groups, err := ResolveHierarchically("pre-commit", nil, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].ResolvedHooks.Hooks, 1)
}

func TestResolveHierarchically_CyclicGroupIncludesTerminates(t *testing.T) {
	repoRoot := initRepo(t)
	writeFile(t, filepath.Join(repoRoot, ".peter-hook.toml"), `
[hooks.fmt]
command = ["echo", "fmt"]

[groups.a]
includes = ["b", "fmt"]

[groups.b]
includes = ["a"]

[groups.pre-commit]
includes = ["a"]
`)

	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	groups, err := ResolveHierarchically("pre-commit", nil, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Contains(t, groups[0].ResolvedHooks.Hooks, "fmt")
}

func TestResolveHierarchically_RequiresFilesSkippedWithoutFileList(t *testing.T) {
	repoRoot := initRepo(t)
	writeFile(t, filepath.Join(repoRoot, ".peter-hook.toml"), `
[hooks.needs-files]
command = ["echo", "x"]
requires_files = true

[groups.commit-msg]
includes = ["needs-files"]
`)

	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	groups, err := ResolveHierarchically("commit-msg", nil, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestResolveHierarchically_EmptyButPresentFileListSkipsRunAlways(t *testing.T) {
	repoRoot := initRepo(t)
	writeFile(t, filepath.Join(repoRoot, ".peter-hook.toml"), `
[hooks.always]
command = ["echo", "x"]
run_always = true

[groups.pre-commit]
includes = ["always"]
`)

	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	// A non-nil, empty changedFiles (e.g. "nothing staged") must NOT be
	// treated the same as a nil changedFiles ("no list available"): the
	// nearest-only model is file-driven, so zero files means zero groups,
	// even for a run_always hook.
	groups, err := ResolveHierarchically("pre-commit", []string{}, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	assert.Empty(t, groups)

	groups, err = ResolveHierarchically("pre-commit", nil, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	require.Len(t, groups, 1)
}

func TestShouldRunHook_ExcludeIsAppliedBeforeFilesMatch(t *testing.T) {
	hook := &config.HookDefinition{
		Name:    "lint",
		Files:   []string{"*.go"},
		Exclude: []string{`_test\.go$`},
	}

	run, err := shouldRunHook(hook, []string{"main_test.go"}, true)
	require.NoError(t, err)
	assert.False(t, run, "the only changed file is excluded, so files should no longer match")

	run, err = shouldRunHook(hook, []string{"main_test.go", "main.go"}, true)
	require.NoError(t, err)
	assert.True(t, run, "main.go survives the exclude filter and matches *.go")
}

func TestResolveHierarchically_DirectHookRequiresFilesSkippedWithoutFileList(t *testing.T) {
	repoRoot := initRepo(t)
	writeFile(t, filepath.Join(repoRoot, ".peter-hook.toml"), `
[hooks.commit-msg]
command = ["echo", "x"]
requires_files = true
`)

	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	groups, err := ResolveHierarchically("commit-msg", nil, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	assert.Empty(t, groups, "a hook resolved directly by event name must honor requires_files too")
}

func TestResolveHierarchically_NoConfigReturnsEmpty(t *testing.T) {
	repoRoot := initRepo(t)
	worktree := &gitfacade.WorktreeContext{RepoRoot: repoRoot}
	groups, err := ResolveHierarchically("pre-commit", nil, repoRoot, repoRoot, "run", worktree)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
