// Package resolver implements hierarchical, nearest-only hook resolution:
// for each changed file, locate the nearest .peter-hook.toml, resolve the
// requested event against it, and filter hooks by changed-file patterns.
//
// The shipped policy is nearest-only, not merging: a file's hooks come
// solely from its nearest ancestor config, with zero inheritance from
// parent configs. See DESIGN.md for why this policy was chosen over the
// config-merging alternative the source also describes.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tftio/peter-hook/pkg/config"
	"github.com/tftio/peter-hook/pkg/constants"
	"github.com/tftio/peter-hook/pkg/gitfacade"
	"github.com/tftio/peter-hook/pkg/patternmatch"
)

// ResolvedHook is a hook definition bound to a concrete working directory
// and its source config path.
type ResolvedHook struct {
	Name            string
	Definition      *config.HookDefinition
	WorkingDirectory string
	SourceFile      string
}

// ResolvedHooks bundles the resolved hooks for one config: the execution
// strategy of that config's event group (no merging across configs), the
// files that resolved to this config (may be empty), and worktree metadata.
type ResolvedHooks struct {
	ConfigPath       string
	Hooks            map[string]*ResolvedHook
	// Order records the include order hooks were resolved in, used as the
	// sequential-phase tie-break after depends_on topological ordering.
	Order             []string
	ExecutionStrategy string
	ChangedFiles     []string
	Worktree         *gitfacade.WorktreeContext
}

// ConfigGroup pairs one configuration file with the subset of changed files
// resolved to it and the hooks it contributes for the requested event.
type ConfigGroup struct {
	ConfigPath    string
	Files         []string
	ResolvedHooks *ResolvedHooks
}

// findNearestConfig walks upward from dir until a .peter-hook.toml is found
// or repoRoot is reached. Returns "" if none is found in the ancestry.
func findNearestConfig(dir, repoRoot string) (string, error) {
	repoRootAbs, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", err
	}
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		candidate := config.PathIn(current)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		if current == repoRootAbs {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", nil
}

// findNearestConfigForFile finds the nearest config for a file path (the
// walk starts from the file's containing directory).
func findNearestConfigForFile(file, repoRoot string) (string, error) {
	abs := file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(repoRoot, file)
	}
	dir := abs
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		dir = filepath.Dir(abs)
	}
	return findNearestConfig(dir, repoRoot)
}

// shouldRunHook applies the exclude/files/run_always filtering rule;
// requires_files is checked by the callers before this runs. haveFiles ==
// false means "no file list available for this resolution" (distinct from
// an empty list with haveFiles == true, which means "zero files changed").
// A file matching any exclude pattern is removed from the candidate list
// before files matching is evaluated.
func shouldRunHook(hook *config.HookDefinition, changedFiles []string, haveFiles bool) (bool, error) {
	if hook.RunAlways {
		return true, nil
	}
	if len(hook.Files) == 0 {
		return true, nil
	}
	if !haveFiles {
		return true, nil
	}

	candidates := changedFiles
	if len(hook.Exclude) > 0 {
		excludeMatcher, err := patternmatch.CompileExclude(hook.Exclude)
		if err != nil {
			return false, fmt.Errorf("compiling exclude patterns for hook %q: %w", hook.Name, err)
		}
		candidates = patternmatch.Filter(excludeMatcher, candidates)
	}

	matcher, err := patternmatch.Compile(hook.Files)
	if err != nil {
		return false, fmt.Errorf("compiling file patterns for hook %q: %w", hook.Name, err)
	}
	return matcher.MatchesAny(candidates), nil
}

// resolveWorkingDirectory computes the effective working directory for a
// resolved hook.
func resolveWorkingDirectory(hook *config.HookDefinition, configDir, repoRoot string) string {
	if hook.RunAtRoot {
		return repoRoot
	}
	if hook.Workdir == "" {
		return configDir
	}
	if filepath.IsAbs(hook.Workdir) {
		return hook.Workdir
	}
	return filepath.Join(configDir, hook.Workdir)
}

// resolutionContext threads the per-config state through recursive group
// expansion without repeating parameters at every call site.
type resolutionContext struct {
	cfg          *config.HookConfig
	configDir    string
	configPath   string
	repoRoot     string
	changedFiles []string
	haveFiles    bool
}

// resolveGroupHooks expands group into resolvedHooks, guarding against
// include cycles with a per-resolution visited set. order collects hook
// names in the sequence they were resolved, for the include-order tie-break.
func resolveGroupHooks(ctx *resolutionContext, group *config.HookGroup, resolvedHooks map[string]*ResolvedHook, order *[]string) error {
	visited := map[string]bool{}
	return resolveGroupHooksRecursive(ctx, group, resolvedHooks, visited, order)
}

func resolveGroupHooksRecursive(
	ctx *resolutionContext,
	group *config.HookGroup,
	resolvedHooks map[string]*ResolvedHook,
	visited map[string]bool,
	order *[]string,
) error {
	for _, include := range group.Includes {
		if visited[include] {
			continue
		}
		visited[include] = true

		if hook, ok := ctx.cfg.Hooks[include]; ok {
			if hook.RequiresFiles && !ctx.haveFiles {
				continue
			}
			run, err := shouldRunHook(hook, ctx.changedFiles, ctx.haveFiles)
			if err != nil {
				return err
			}
			if run {
				resolvedHooks[include] = &ResolvedHook{
					Name:             include,
					Definition:       hook,
					WorkingDirectory: resolveWorkingDirectory(hook, ctx.configDir, ctx.repoRoot),
					SourceFile:       ctx.configPath,
				}
				*order = append(*order, include)
			}
			continue
		}

		if nested, ok := ctx.cfg.Groups[include]; ok {
			if err := resolveGroupHooksRecursive(ctx, nested, resolvedHooks, visited, order); err != nil {
				return err
			}
		}
		// Unknown include names are silently dropped (§9 Open Question 1).
	}
	return nil
}

// resolveEventForConfig resolves event against nearestConfigPath alone, with
// zero merging from parent configs. bypassCommand is forwarded to config.Load
// for the deprecated-filename check.
func resolveEventForConfig(
	nearestConfigPath, event, repoRoot, bypassCommand string,
	changedFiles []string,
	haveFiles bool,
	worktree *gitfacade.WorktreeContext,
) (*ResolvedHooks, error) {
	cfg, err := config.Load(nearestConfigPath, bypassCommand)
	if err != nil {
		return nil, err
	}
	configDir := filepath.Dir(nearestConfigPath)

	ctx := &resolutionContext{
		cfg:          cfg,
		configDir:    configDir,
		configPath:   nearestConfigPath,
		repoRoot:     repoRoot,
		changedFiles: changedFiles,
		haveFiles:    haveFiles,
	}

	resolvedHooks := map[string]*ResolvedHook{}
	executionStrategy := constants.ExecutionSequential
	var order []string

	// requires_files with no file list available skips this hook entirely,
	// same as the group-include path in resolveGroupHooksRecursive.
	if hook, ok := cfg.Hooks[event]; ok && !(hook.RequiresFiles && !haveFiles) {
		run, err := shouldRunHook(hook, changedFiles, haveFiles)
		if err != nil {
			return nil, err
		}
		if run {
			resolvedHooks[event] = &ResolvedHook{
				Name:             event,
				Definition:       hook,
				WorkingDirectory: resolveWorkingDirectory(hook, configDir, repoRoot),
				SourceFile:       nearestConfigPath,
			}
			order = append(order, event)
		}
	}

	if group, ok := cfg.Groups[event]; ok {
		if group.Placeholder {
			return nil, nil
		}
		executionStrategy = group.Execution
		if err := resolveGroupHooks(ctx, group, resolvedHooks, &order); err != nil {
			return nil, err
		}
	}

	if len(resolvedHooks) == 0 {
		return nil, nil
	}

	return &ResolvedHooks{
		ConfigPath:        nearestConfigPath,
		Hooks:             resolvedHooks,
		Order:             order,
		ExecutionStrategy: executionStrategy,
		ChangedFiles:      changedFiles,
		Worktree:          worktree,
	}, nil
}

// GroupFilesByConfig partitions files by their nearest config and resolves
// each partition independently (no cross-config merging).
func GroupFilesByConfig(
	files []string,
	repoRoot, event, bypassCommand string,
	worktree *gitfacade.WorktreeContext,
) ([]*ConfigGroup, error) {
	configToFiles := map[string][]string{}
	var order []string

	for _, f := range files {
		nearest, err := findNearestConfigForFile(f, repoRoot)
		if err != nil {
			return nil, err
		}
		if nearest == "" {
			continue
		}
		if _, seen := configToFiles[nearest]; !seen {
			order = append(order, nearest)
		}
		configToFiles[nearest] = append(configToFiles[nearest], f)
	}

	var groups []*ConfigGroup
	for _, configPath := range order {
		groupFiles := configToFiles[configPath]
		resolved, err := resolveEventForConfig(configPath, event, repoRoot, bypassCommand, groupFiles, true, worktree)
		if err != nil {
			return nil, err
		}
		if resolved == nil {
			continue
		}
		groups = append(groups, &ConfigGroup{
			ConfigPath:    configPath,
			Files:         groupFiles,
			ResolvedHooks: resolved,
		})
	}
	return groups, nil
}

// ResolveHierarchically is the full pipeline entry point. changedFiles ==
// nil means "all files" / dry-run / no file list available: resolution
// proceeds from cwd with no file list (run_always / files-absent hooks
// still run; requires_files hooks are skipped). A non-nil, possibly empty,
// changedFiles means a file list genuinely was available — even a list of
// zero files (nothing staged) is resolved the file-driven way, walking up
// from each file, which naturally yields zero config groups rather than
// falling back to the no-file-list behavior. The nil check is deliberate:
// len(changedFiles) == 0 would conflate "nothing changed" with "no list",
// letting run_always/files-absent hooks fire on a call that explicitly
// carried an empty result.
func ResolveHierarchically(
	event string,
	changedFiles []string,
	repoRoot, cwd, bypassCommand string,
	worktree *gitfacade.WorktreeContext,
) ([]*ConfigGroup, error) {
	if changedFiles == nil {
		nearest, err := findNearestConfig(cwd, repoRoot)
		if err != nil {
			return nil, err
		}
		if nearest == "" {
			return nil, nil
		}
		resolved, err := resolveEventForConfig(nearest, event, repoRoot, bypassCommand, nil, false, worktree)
		if err != nil {
			return nil, err
		}
		if resolved == nil {
			return nil, nil
		}
		return []*ConfigGroup{{
			ConfigPath:    nearest,
			Files:         nil,
			ResolvedHooks: resolved,
		}}, nil
	}

	return GroupFilesByConfig(changedFiles, repoRoot, event, bypassCommand, worktree)
}
