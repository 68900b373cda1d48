package gitfacade

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a test git repository with one committed file.
// Use this for tests that need to modify the repository.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	cmd := exec.Command("git", "init")
	cmd.Dir = tempDir
	if err := cmd.Run(); err != nil {
		if exec.Command("git", "--version").Run() != nil {
			t.Skip("git not available, skipping git integration tests")
		}
		t.Fatalf("failed to initialize git repo: %v", err)
	}

	for _, args := range [][]string{
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
	} {
		configCmd := exec.Command("git", args...)
		configCmd.Dir = tempDir
		require.NoError(t, configCmd.Run())
	}

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "committed.txt"), []byte("v1"), 0o644))
	run := func(args ...string) {
		c := exec.Command("git", args...)
		c.Dir = tempDir
		require.NoError(t, c.Run())
	}
	run("add", ".")
	run("commit", "-m", "initial")

	return tempDir
}

func TestFindRepoRoot(t *testing.T) {
	repoDir := setupTestRepo(t)

	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(repoDir)
	require.NoError(t, err)
	assert.Equal(t, resolved, repo.Root)
}

func TestFindRepoRoot_NotARepo(t *testing.T) {
	_, err := FindRepoRoot(t.TempDir())
	require.Error(t, err)
}

func TestGetChangedFiles_StagedExcludesDeleted(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "new.txt"), []byte("new"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(repoDir, "committed.txt")))

	run := func(args ...string) {
		c := exec.Command("git", args...)
		c.Dir = repoDir
		require.NoError(t, c.Run())
	}
	run("add", "new.txt")
	run("add", "-u")

	files, err := repo.GetChangedFiles(ChangeRequest{Mode: Staged})
	require.NoError(t, err)
	assert.Contains(t, files, "new.txt")
	assert.NotContains(t, files, "committed.txt")
}

func TestGetChangedFiles_NothingStagedReturnsNonNilEmptySlice(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	files, err := repo.GetChangedFiles(ChangeRequest{Mode: Staged})
	require.NoError(t, err)
	assert.NotNil(t, files, "an empty result must stay distinguishable from a caller-requested nil file list")
	assert.Empty(t, files)
}

func TestGetChangedFiles_RenameUsesDestination(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	require.NoError(t, os.Rename(
		filepath.Join(repoDir, "committed.txt"),
		filepath.Join(repoDir, "renamed.txt"),
	))

	run := func(args ...string) {
		c := exec.Command("git", args...)
		c.Dir = repoDir
		require.NoError(t, c.Run())
	}
	run("add", "-A")

	files, err := repo.GetChangedFiles(ChangeRequest{Mode: Staged})
	require.NoError(t, err)
	assert.Contains(t, files, "renamed.txt")
	assert.NotContains(t, files, "committed.txt")
}

func TestGetChangedFiles_WorkingDirectoryIncludesUntracked(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "untracked.txt"), []byte("x"), 0o644))

	files, err := repo.GetChangedFiles(ChangeRequest{Mode: WorkingDirectory})
	require.NoError(t, err)
	assert.Contains(t, files, "untracked.txt")
}

func TestGetChangedFiles_CommitRange(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	out, err := exec.Command("git", "-C", repoDir, "rev-parse", "HEAD").Output()
	require.NoError(t, err)
	first := string(out)

	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "second.txt"), []byte("v2"), 0o644))
	run := func(args ...string) {
		c := exec.Command("git", args...)
		c.Dir = repoDir
		require.NoError(t, c.Run())
	}
	run("add", ".")
	run("commit", "-m", "second")

	files, err := repo.GetChangedFiles(ChangeRequest{Mode: CommitRange, From: trimNL(first), To: "HEAD"})
	require.NoError(t, err)
	assert.Contains(t, files, "second.txt")
}

func trimNL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func TestParsePrePushStdin_Valid(t *testing.T) {
	stdin := "refs/heads/main a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0 " +
		"refs/heads/main 0fedcba9876543210fedcba9876543210fedcba9"
	local, remote, err := ParsePrePushStdin(stdin)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0", local)
	assert.Equal(t, "0fedcba9876543210fedcba9876543210fedcba9", remote)
}

func TestParsePrePushStdin_NewBranchRewritesToEmptyTree(t *testing.T) {
	stdin := "refs/heads/feature a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0 " +
		"refs/heads/feature 0000000000000000000000000000000000000000"
	_, remote, err := ParsePrePushStdin(stdin)
	require.NoError(t, err)
	assert.Equal(t, "4b825dc642cb6eb9a060e54bf8d69288fbee4904", remote)
}

func TestParsePrePushStdin_Empty(t *testing.T) {
	_, _, err := ParsePrePushStdin("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input received")
}

func TestParsePrePushStdin_InvalidFormat(t *testing.T) {
	_, _, err := ParsePrePushStdin("refs/heads/main a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pre-push stdin format")
}

func TestParsePrePushStdin_InvalidLocalOID(t *testing.T) {
	_, _, err := ParsePrePushStdin(
		"refs/heads/main abc123 refs/heads/main 0fedcba9876543210fedcba9876543210fedcba9",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid local OID")
}

func TestParsePrePushStdin_OnlyFirstLineParsed(t *testing.T) {
	stdin := "refs/heads/main a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0 refs/heads/main " +
		"0fedcba9876543210fedcba9876543210fedcba9\n" +
		"refs/heads/other 1234567890abcdef1234567890abcdef12345678 refs/heads/other " +
		"fedcba0987654321fedcba0987654321fedcba09"
	local, remote, err := ParsePrePushStdin(stdin)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0", local)
	assert.Equal(t, "0fedcba9876543210fedcba9876543210fedcba9", remote)
}

func TestCanProvideFiles(t *testing.T) {
	assert.True(t, CanProvideFiles("pre-commit"))
	assert.True(t, CanProvideFiles("pre-push"))
	assert.False(t, CanProvideFiles("commit-msg"))
	assert.False(t, CanProvideFiles("prepare-commit-msg"))
	assert.False(t, CanProvideFiles("unknown-hook"))
}

func TestDetectWorktree_MainRepo(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	ctx, err := DetectWorktree(repo)
	require.NoError(t, err)
	assert.False(t, ctx.IsWorktree)
	assert.Equal(t, repo.Root, ctx.RepoRoot)
}

func TestInstallHook_WritesExecutableStub(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	assert.False(t, repo.HasHook("pre-commit"))

	require.NoError(t, repo.InstallHook("pre-commit", "#!/bin/sh\nexec peter-hook run pre-commit\n"))
	assert.True(t, repo.HasHook("pre-commit"))

	info, err := os.Stat(filepath.Join(repo.HooksDir(), "pre-commit"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "hook stub should be executable")
}

func TestInstallHook_OverwritesExistingStub(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	require.NoError(t, repo.InstallHook("pre-commit", "first"))
	require.NoError(t, repo.InstallHook("pre-commit", "second"))

	content, err := os.ReadFile(filepath.Join(repo.HooksDir(), "pre-commit"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestUninstallHook_RemovesStub(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	require.NoError(t, repo.InstallHook("pre-push", "stub"))
	require.True(t, repo.HasHook("pre-push"))

	require.NoError(t, repo.UninstallHook("pre-push"))
	assert.False(t, repo.HasHook("pre-push"))
}

func TestUninstallHook_MissingStubIsNotAnError(t *testing.T) {
	repoDir := setupTestRepo(t)
	repo, err := FindRepoRoot(repoDir)
	require.NoError(t, err)

	assert.NoError(t, repo.UninstallHook("post-commit"))
}
