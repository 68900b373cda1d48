// Package executor schedules and runs the hooks a ConfigGroup resolved to:
// partitioning into parallel/sequential phases by modifies_repository,
// ordering each phase by depends_on, spawning children with expanded
// templates, and aggregating results.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/tftio/peter-hook/pkg/logging"
	"github.com/tftio/peter-hook/pkg/resolver"
	"github.com/tftio/peter-hook/pkg/template"
)

// State is the terminal (or pending) state of a single hook run.
type State int

const (
	Pending State = iota
	Running
	Exited
	TimedOut
	SpawnFailed
)

// Result is the outcome of running one resolved hook.
type Result struct {
	HookName string
	State    State
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Partial  bool // output may be truncated by a timeout kill
	Err      error
}

// Success reports whether this hook's run counts as a pass.
func (r *Result) Success() bool {
	return r.State == Exited && r.ExitCode == 0
}

// GroupResult is the aggregated outcome of running one ConfigGroup.
type GroupResult struct {
	ConfigPath string
	Hooks      []*Result
}

// Success reports whether every hook in the group passed.
func (g *GroupResult) Success() bool {
	for _, r := range g.Hooks {
		if !r.Success() {
			return false
		}
	}
	return true
}

// Options configures one executor invocation.
type Options struct {
	DryRun   bool
	Parallel int // bounded worker count for the parallel phase; <=0 defaults to 4
	Logger   *zap.SugaredLogger
}

// Executor runs resolved ConfigGroups.
type Executor struct {
	opts Options
}

func New(opts Options) *Executor {
	if opts.Parallel <= 0 {
		opts.Parallel = 4
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	return &Executor{opts: opts}
}

func (e *Executor) debugf(format string, args ...any) {
	e.opts.Logger.Debugf(format, args...)
}

// RunGroups runs every ConfigGroup in sequence (the outer tier is always
// sequential; only a group's own phases run concurrently). It returns one
// GroupResult per group that actually contributed hooks, plus the
// aggregated error from every failing hook across every group — the
// invocation never stops at the first failure.
func (e *Executor) RunGroups(ctx context.Context, groups []*resolver.ConfigGroup) ([]*GroupResult, error) {
	var results []*GroupResult
	var agg error

	for _, g := range groups {
		gr, err := e.RunGroup(ctx, g)
		if gr != nil {
			results = append(results, gr)
		}
		if err != nil {
			agg = multierror.Append(agg, err)
		}
	}
	return results, agg
}

// RunGroup runs a single ConfigGroup's hooks under its execution strategy.
func (e *Executor) RunGroup(ctx context.Context, group *resolver.ConfigGroup) (*GroupResult, error) {
	rh := group.ResolvedHooks
	if rh == nil || len(rh.Hooks) == 0 {
		return nil, nil
	}

	parallelNames, sequentialNames := partitionPhases(rh)
	ordered, err := orderByDependsOn(sequentialNames, rh)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", group.ConfigPath, err)
	}

	gr := &GroupResult{ConfigPath: group.ConfigPath}
	var agg error

	if e.opts.DryRun {
		for _, name := range append(append([]string{}, parallelNames...), ordered...) {
			hook := rh.Hooks[name]
			gr.Hooks = append(gr.Hooks, &Result{HookName: name, State: Exited, ExitCode: 0,
				Stdout: fmt.Sprintf("(dry-run) would run: %v", hook.Definition.Command)})
		}
		return gr, nil
	}

	parallelResults := e.runParallelPhase(ctx, parallelNames, rh)
	gr.Hooks = append(gr.Hooks, parallelResults...)
	for _, r := range parallelResults {
		if !r.Success() {
			agg = multierror.Append(agg, fmt.Errorf("hook %q: %s", r.HookName, describeFailure(r)))
		}
	}

	sequentialResults := e.runSequentialPhase(ctx, ordered, rh)
	gr.Hooks = append(gr.Hooks, sequentialResults...)
	for _, r := range sequentialResults {
		if !r.Success() {
			agg = multierror.Append(agg, fmt.Errorf("hook %q: %s", r.HookName, describeFailure(r)))
		}
	}

	return gr, agg
}

func describeFailure(r *Result) string {
	switch r.State {
	case TimedOut:
		return "exceeded timeout"
	case SpawnFailed:
		return fmt.Sprintf("failed to spawn: %v", r.Err)
	default:
		return fmt.Sprintf("exit code %d", r.ExitCode)
	}
}

// partitionPhases splits a group's hooks into the non-modifying parallel
// phase and the modifying sequential phase, preserving include order within
// each. A group-level "sequential" strategy forces every hook into the
// sequential phase, still in include order.
func partitionPhases(rh *resolver.ResolvedHooks) (parallel, sequential []string) {
	order := rh.Order
	if len(order) == 0 {
		for name := range rh.Hooks {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	forceSequential := rh.ExecutionStrategy == "sequential"
	for _, name := range order {
		hook, ok := rh.Hooks[name]
		if !ok {
			continue
		}
		if !forceSequential && !hook.Definition.ModifiesRepository {
			parallel = append(parallel, name)
		} else {
			sequential = append(sequential, name)
		}
	}
	return parallel, sequential
}

// orderByDependsOn topologically sorts names by each hook's depends_on list,
// breaking ties by the original include order, and rejects cycles.
func orderByDependsOn(names []string, rh *resolver.ResolvedHooks) ([]string, error) {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	visited := make(map[string]int) // 0 unvisited, 1 in-progress, 2 done
	var out []string

	var visit func(name string) error
	visit = func(name string) error {
		switch visited[name] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("dependency cycle detected at hook %q", name)
		}
		visited[name] = 1

		hook := rh.Hooks[name]
		deps := append([]string{}, hook.Definition.DependsOn...)
		sort.SliceStable(deps, func(i, j int) bool {
			return index[deps[i]] < index[deps[j]]
		})
		for _, dep := range deps {
			if _, inPhase := index[dep]; !inPhase {
				continue // dependency outside this phase is not ordered here
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		visited[name] = 2
		out = append(out, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// runParallelPhase runs names concurrently with a bounded worker count.
func (e *Executor) runParallelPhase(ctx context.Context, names []string, rh *resolver.ResolvedHooks) []*Result {
	if len(names) == 0 {
		return nil
	}

	type indexed struct {
		index  int
		result *Result
	}

	resultsChan := make(chan indexed, len(names))
	semaphore := make(chan struct{}, e.opts.Parallel)
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(idx int, hookName string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			r := e.runHook(ctx, rh, hookName)
			resultsChan <- indexed{index: idx, result: r}
		}(i, name)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]*Result, len(names))
	for ir := range resultsChan {
		results[ir.index] = ir.result
	}
	return results
}

// runSequentialPhase runs names one at a time, in the order given.
func (e *Executor) runSequentialPhase(ctx context.Context, names []string, rh *resolver.ResolvedHooks) []*Result {
	results := make([]*Result, 0, len(names))
	for _, name := range names {
		results = append(results, e.runHook(ctx, rh, name))
	}
	return results
}

// runHook expands templates, spawns the hook's command, enforces its
// timeout, and captures output. It never returns a nil Result.
func (e *Executor) runHook(ctx context.Context, rh *resolver.ResolvedHooks, name string) *Result {
	start := time.Now()
	hook := rh.Hooks[name]
	def := hook.Definition
	result := &Result{HookName: name}

	tctx, err := buildTemplateContext(hook, rh, def.ExecutionType == "other")
	if err != nil {
		result.State = SpawnFailed
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	var changedFilesFile string
	if def.ExecutionType == "other" {
		f, cleanup, ferr := writeChangedFilesFile(rh.ChangedFiles)
		if ferr == nil {
			changedFilesFile = f
			defer cleanup()
			tctx = tctx.WithChangedFiles(template.JoinChangedFiles(rh.ChangedFiles), changedFilesFile)
		}
	}

	args, err := template.ExpandAll(tctx, def.Command)
	if err != nil {
		result.State = SpawnFailed
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	env, err := template.ExpandEnv(tctx, def.Env)
	if err != nil {
		result.State = SpawnFailed
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	timeout := time.Duration(def.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = hook.WorkingDirectory
	cmd.Env = buildChildEnv(env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.debugf("spawning hook %q: %v (dir=%s, timeout=%s)", name, args, cmd.Dir, timeout)

	runErr := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	switch {
	case runErr == nil:
		result.State = Exited
		result.ExitCode = 0
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.State = TimedOut
		result.Partial = true
		result.Err = fmt.Errorf("hook %q timed out after %s", name, timeout)
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.State = Exited
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.State = SpawnFailed
			result.Err = runErr
		}
	}

	return result
}

func buildTemplateContext(hook *resolver.ResolvedHook, rh *resolver.ResolvedHooks, allowDynamic bool) (*template.Context, error) {
	repoRoot := ""
	worktreeName := ""
	if rh.Worktree != nil {
		repoRoot = rh.Worktree.RepoRoot
		worktreeName = rh.Worktree.WorktreeName
	}
	homeDir, err := userHomeDir()
	if err != nil {
		return nil, err
	}
	// HOOK_DIR is the directory of the config file that defined the hook,
	// not its (possibly different) working directory: run_at_root and
	// workdir both redirect where the command executes without changing
	// where it was declared.
	hookDir := hook.Definition.SourceDir
	return template.NewContext(repoRoot, homeDir, os.Getenv("PATH"), worktreeName, hookDir, allowDynamic), nil
}

func userHomeDir() (string, error) {
	if h := os.Getenv("HOME"); h != "" {
		return h, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolving HOME_DIR: %w", err)
	}
	return u.HomeDir, nil
}

// writeChangedFilesFile materializes the changed-file list to a unique temp
// file for CHANGED_FILES_FILE. The returned cleanup func must run on every
// exit path, including a timeout kill.
func writeChangedFilesFile(files []string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "peter-hook-changed-files-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating CHANGED_FILES_FILE: %w", err)
	}
	for _, c := range files {
		if _, werr := fmt.Fprintln(f, c); werr != nil {
			f.Close()
			os.Remove(f.Name())
			return "", nil, fmt.Errorf("writing CHANGED_FILES_FILE: %w", werr)
		}
	}
	name := f.Name()
	if cerr := f.Close(); cerr != nil {
		os.Remove(name)
		return "", nil, fmt.Errorf("closing CHANGED_FILES_FILE: %w", cerr)
	}
	return name, func() { os.Remove(name) }, nil
}

// buildChildEnv appends expanded hook env on top of the inherited process
// environment; it never mutates the parent's environment.
func buildChildEnv(hookEnv map[string]string) []string {
	base := os.Environ()
	out := make([]string, 0, len(base)+len(hookEnv))
	out = append(out, base...)
	for k, v := range hookEnv {
		out = append(out, k+"="+v)
	}
	return out
}
