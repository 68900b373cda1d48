// Package template substitutes a closed set of {NAME} variables in hook
// commands and environment values, rejecting anything outside that set.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Variable names in the closed allow-list.
const (
	HookDir           = "HOOK_DIR"
	RepoRoot          = "REPO_ROOT"
	HomeDir           = "HOME_DIR"
	Path              = "PATH"
	ProjectName       = "PROJECT_NAME"
	WorktreeName      = "WORKTREE_NAME"
	ChangedFiles      = "CHANGED_FILES"
	ChangedFilesFile  = "CHANGED_FILES_FILE"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_]+)\}`)

// Context carries the values available for substitution. ChangedFiles and
// ChangedFilesFile are populated by the caller only when the hook's
// execution_type is "other"; an unset value is allowed to be the empty
// string, it does not itself make the variable "unknown".
type Context struct {
	HookDir          string
	RepoRoot         string
	HomeDir          string
	Path             string
	ProjectName      string
	WorktreeName     string
	ChangedFiles     string
	ChangedFilesFile string

	// allowDynamic gates CHANGED_FILES/CHANGED_FILES_FILE, which are only
	// valid when the hook's execution_type is "other".
	allowDynamic bool
}

// NewContext builds a substitution Context. allowDynamic should be true iff
// the hook's execution_type is "other".
func NewContext(repoRoot, homeDir, path, worktreeName, hookDir string, allowDynamic bool) *Context {
	return &Context{
		HookDir:      hookDir,
		RepoRoot:     repoRoot,
		HomeDir:      homeDir,
		Path:         path,
		ProjectName:  baseName(repoRoot),
		WorktreeName: worktreeName,
		allowDynamic: allowDynamic,
	}
}

// WithChangedFiles sets the CHANGED_FILES/CHANGED_FILES_FILE values; it is a
// no-op unless the context was built with allowDynamic = true.
func (c *Context) WithChangedFiles(joined, tempFilePath string) *Context {
	if !c.allowDynamic {
		return c
	}
	c.ChangedFiles = joined
	c.ChangedFilesFile = tempFilePath
	return c
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}

// Expand substitutes every {NAME} occurrence in s. An unrecognized name, or
// a recognized dynamic name used when the context disallows it, is a hard
// error naming the offending variable. Substitution is not recursive: the
// result is never re-expanded.
func (c *Context) Expand(s string) (string, error) {
	var firstErr error
	result := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, err := c.lookup(name)
		if err != nil {
			firstErr = err
			return match
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

func (c *Context) lookup(name string) (string, error) {
	switch name {
	case HookDir:
		return c.HookDir, nil
	case RepoRoot:
		return c.RepoRoot, nil
	case HomeDir:
		return c.HomeDir, nil
	case Path:
		return c.Path, nil
	case ProjectName:
		return c.ProjectName, nil
	case WorktreeName:
		return c.WorktreeName, nil
	case ChangedFiles:
		if !c.allowDynamic {
			return "", fmt.Errorf("unknown template variable %q: only available when execution_type is \"other\"", name)
		}
		return c.ChangedFiles, nil
	case ChangedFilesFile:
		if !c.allowDynamic {
			return "", fmt.Errorf("unknown template variable %q: only available when execution_type is \"other\"", name)
		}
		return c.ChangedFilesFile, nil
	default:
		return "", fmt.Errorf("unknown template variable %q", name)
	}
}

// ExpandAll expands every element of args, failing on the first error.
func ExpandAll(c *Context, args []string) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		v, err := c.Expand(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ExpandEnv expands every value (not key) in env, failing on the first error.
func ExpandEnv(c *Context, env map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(env))
	for k, v := range env {
		expanded, err := c.Expand(v)
		if err != nil {
			return nil, err
		}
		out[k] = expanded
	}
	return out, nil
}

// JoinChangedFiles whitespace-joins changed files for CHANGED_FILES.
func JoinChangedFiles(files []string) string {
	return strings.Join(files, " ")
}
