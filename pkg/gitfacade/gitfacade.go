// Package gitfacade shells out to the Git CLI to locate a repository, list
// changed files under the orchestrator's four change-detection modes, and
// parse pre-push stdin.
package gitfacade

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tftio/peter-hook/pkg/constants"
)

// ChangeMode selects which set of changed files GetChangedFiles reports.
type ChangeMode int

const (
	// WorkingDirectory is the union of staged, unstaged, and untracked files.
	WorkingDirectory ChangeMode = iota
	// Staged is only the staged index diff.
	Staged
	// Push diffs RemoteOID..LocalOID.
	Push
	// CommitRange diffs a From..To revision range.
	CommitRange
)

// ChangeRequest carries the mode-specific arguments for GetChangedFiles.
type ChangeRequest struct {
	Mode      ChangeMode
	LocalOID  string
	RemoteOID string
	From      string
	To        string
}

// Repository wraps a discovered repository root and shells out to git
// relative to it.
type Repository struct {
	Root string
}

// FindRepoRoot locates the repository root from dir by asking Git directly,
// rather than walking the filesystem by hand.
func FindRepoRoot(dir string) (*Repository, error) {
	out, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	root := strings.TrimSpace(out)
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}
	return &Repository{Root: abs}, nil
}

// GetChangedFiles returns a deduplicated list of paths (relative to the
// repository root) changed under req.Mode. Deleted paths are always
// excluded; rename/copy statuses resolve to their destination path.
//
// The returned slice is never nil on success, even when zero files changed:
// a present-but-empty list ("nothing staged") is a distinct, meaningful
// result from a caller-requested "no file list" (nil), which resolution
// treats very differently (see resolver.ResolveHierarchically).
func (r *Repository) GetChangedFiles(req ChangeRequest) ([]string, error) {
	var (
		files []string
		err   error
	)
	switch req.Mode {
	case WorkingDirectory:
		files, err = r.workingDirectoryChanges()
	case Staged:
		files, err = r.stagedChanges()
	case Push:
		files, err = r.diffNameStatus(req.RemoteOID, req.LocalOID)
	case CommitRange:
		files, err = r.diffNameStatus(req.From + ".." + req.To)
	default:
		return nil, fmt.Errorf("unknown change detection mode %d", req.Mode)
	}
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []string{}
	}
	return files, nil
}

func (r *Repository) workingDirectoryChanges() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(files []string) {
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}

	staged, err := r.diffNameStatusArgs("diff", "--cached", "--name-status")
	if err != nil {
		return nil, err
	}
	add(staged)

	unstaged, err := r.diffNameStatusArgs("diff", "--name-status")
	if err != nil {
		return nil, err
	}
	add(unstaged)

	untrackedOut, err := runGit(r.Root, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("listing untracked files: %w", err)
	}
	for _, line := range strings.Split(untrackedOut, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			add([]string{line})
		}
	}

	return out, nil
}

func (r *Repository) stagedChanges() ([]string, error) {
	return r.diffNameStatusArgs("diff", "--cached", "--name-status")
}

func (r *Repository) diffNameStatus(revArgs ...string) ([]string, error) {
	args := append([]string{"diff", "--name-status"}, revArgs...)
	return r.diffNameStatusArgs(args...)
}

// diffNameStatusArgs runs `git <args...>` expecting --name-status output and
// parses it into a deduplicated destination-path list, excluding deletions.
func (r *Repository) diffNameStatusArgs(args ...string) ([]string, error) {
	out, err := runGit(r.Root, args...)
	if err != nil {
		return nil, fmt.Errorf("running git %s: %w", strings.Join(args, " "), err)
	}
	return parseNameStatus(out), nil
}

// parseNameStatus turns `git diff --name-status` output into a path list,
// dropping deletions and resolving renames/copies to their destination.
func parseNameStatus(output string) []string {
	var files []string
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		if strings.HasPrefix(status, "D") {
			continue
		}
		if strings.HasPrefix(status, "R") || strings.HasPrefix(status, "C") {
			if len(fields) >= 3 {
				files = append(files, fields[2])
			} else {
				files = append(files, fields[1])
			}
			continue
		}
		files = append(files, fields[1])
	}
	return files
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ParsePrePushStdin parses the first line of a pre-push hook's stdin
// payload: `<local-ref> <local-oid> <remote-ref> <remote-oid>`. An all-zero
// remote OID (new branch) is rewritten to Git's well-known empty-tree hash.
func ParsePrePushStdin(stdin string) (localOID, remoteOID string, err error) {
	lines := strings.SplitN(stdin, "\n", 2)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return "", "", fmt.Errorf("no input received from git pre-push hook")
	}
	fields := strings.Fields(lines[0])
	if len(fields) < 4 {
		return "", "", fmt.Errorf(
			"invalid pre-push stdin format: expected <local-ref> <local-oid> <remote-ref> <remote-oid>, got: %s",
			lines[0],
		)
	}

	localOID = fields[1]
	remoteOID = fields[3]

	if !isValidOID(localOID) {
		return "", "", fmt.Errorf("invalid local OID format: %q, expected 40-character hex string", localOID)
	}

	isNewBranch := isAllZero(remoteOID)
	if !isNewBranch && !isValidOID(remoteOID) {
		return "", "", fmt.Errorf("invalid remote OID format: %q, expected 40-character hex string", remoteOID)
	}

	if isNewBranch {
		remoteOID = constants.EmptyTreeHash
	}

	return localOID, remoteOID, nil
}

func isValidOID(oid string) bool {
	if len(oid) != 40 {
		return false
	}
	for _, c := range oid {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !isHex {
			return false
		}
	}
	return true
}

func isAllZero(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c != '0' {
			return false
		}
	}
	return true
}

// CanProvideFiles reports whether event can furnish a changed-file list.
func CanProvideFiles(event string) bool {
	return constants.CanProvideFiles(event)
}

// WorktreeContext describes whether the invocation runs inside a linked Git
// worktree, and carries the paths downstream components need.
type WorktreeContext struct {
	IsWorktree    bool
	WorktreeName  string
	RepoRoot      string
	CommonDir     string
	WorkingDir    string
}

// DetectWorktree builds a WorktreeContext for repo, shelling out to the
// worktree-aware rev-parse forms and `git worktree list --porcelain`.
func DetectWorktree(repo *Repository) (*WorktreeContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	commonDirOut, err := runGit(repo.Root, "rev-parse", "--git-common-dir")
	if err != nil {
		return nil, fmt.Errorf("resolving git common dir: %w", err)
	}
	commonDir, err := filepath.Abs(strings.TrimSpace(commonDirOut))
	if err != nil {
		return nil, fmt.Errorf("resolving git common dir: %w", err)
	}

	gitDirOut, err := runGit(repo.Root, "rev-parse", "--git-dir")
	if err != nil {
		return nil, fmt.Errorf("resolving git dir: %w", err)
	}
	gitDir, err := filepath.Abs(strings.TrimSpace(gitDirOut))
	if err != nil {
		return nil, fmt.Errorf("resolving git dir: %w", err)
	}

	ctx := &WorktreeContext{
		RepoRoot:   repo.Root,
		CommonDir:  commonDir,
		WorkingDir: cwd,
	}

	if gitDir == commonDir {
		return ctx, nil
	}

	ctx.IsWorktree = true
	ctx.WorktreeName = filepath.Base(gitDir)

	listOut, err := runGit(repo.Root, "worktree", "list", "--porcelain")
	if err != nil {
		return ctx, nil
	}
	for _, block := range strings.Split(listOut, "\n\n") {
		if !strings.Contains(block, "worktree "+repo.Root) {
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			if strings.HasPrefix(line, "branch ") {
				ctx.WorktreeName = strings.TrimPrefix(line, "branch refs/heads/")
			}
		}
	}
	return ctx, nil
}

// HooksDir returns the repository's hook-stub directory.
func (r *Repository) HooksDir() string {
	return filepath.Join(r.Root, ".git", "hooks")
}

// HasHook reports whether a stub already exists for event.
func (r *Repository) HasHook(event string) bool {
	_, err := os.Stat(filepath.Join(r.HooksDir(), event))
	return err == nil
}

// InstallHook writes script as the executable hook stub for event,
// overwriting any existing stub.
func (r *Repository) InstallHook(event, script string) error {
	dir := r.HooksDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating hooks directory: %w", err)
	}
	path := filepath.Join(dir, event)
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		return fmt.Errorf("writing hook stub: %w", err)
	}
	// #nosec G302 - hook stubs must be executable by the invoking git process
	if err := os.Chmod(path, 0o700); err != nil {
		return fmt.Errorf("making hook stub executable: %w", err)
	}
	return nil
}

// UninstallHook removes a previously installed stub for event, if present.
func (r *Repository) UninstallHook(event string) error {
	path := filepath.Join(r.HooksDir(), event)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing hook stub: %w", err)
	}
	return nil
}
