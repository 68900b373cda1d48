package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/pkg/config"
	"github.com/tftio/peter-hook/pkg/constants"
)

// RunTargetsCommand prints the event names the nearest config resolves
// hooks or groups for, used for shell completion of `run`.
type RunTargetsCommand struct{}

// Help returns the help text for the _run-targets command.
func (c *RunTargetsCommand) Help() string {
	return "usage: peter-hook _run-targets\n\nPrint completion candidates for `run`.\n"
}

// Synopsis returns a short description of the _run-targets command.
func (c *RunTargetsCommand) Synopsis() string {
	return "Print completion candidates for run (internal)"
}

// RunTargetsCommandFactory creates a new _run-targets command instance.
func RunTargetsCommandFactory() (cli.Command, error) {
	return &RunTargetsCommand{}, nil
}

// Run executes the _run-targets command.
func (c *RunTargetsCommand) Run(args []string) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	names, err := targetNames(cwd, true)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return 0
}

// nearestConfigFrom walks upward from dir until it finds a config file or
// reaches the filesystem root.
func nearestConfigFrom(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := config.PathIn(current)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// targetNames returns the sorted top-level hook and group names from the
// nearest reachable config. When eventsOnly is true, only names recognized
// as Git hook events are returned.
func targetNames(cwd string, eventsOnly bool) ([]string, error) {
	path, err := nearestConfigFrom(cwd)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}
	cfg, err := config.Load(path, "_run-targets")
	if err != nil {
		return nil, err
	}

	var names []string
	for name := range cfg.Hooks {
		if eventsOnly && !isKnownEvent(name) {
			continue
		}
		names = append(names, name)
	}
	for name := range cfg.Groups {
		if eventsOnly && !isKnownEvent(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return dedupe(names), nil
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range in {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

var knownEvents = map[string]bool{
	constants.EventPreCommit:      true,
	constants.EventPrePush:        true,
	constants.EventCommitMsg:      true,
	constants.EventPrepareCommit:  true,
	constants.EventPostCommit:     true,
	constants.EventPostMerge:      true,
	constants.EventPostCheckout:   true,
	constants.EventPreRebase:      true,
	constants.EventPostRewrite:    true,
	constants.EventPreReceive:     true,
	constants.EventPostReceive:    true,
	constants.EventUpdate:         true,
	constants.EventPostUpdate:     true,
	constants.EventPreApplyPatch:  true,
	constants.EventPostApplyPatch: true,
	constants.EventApplyPatchMsg:  true,
}

func isKnownEvent(name string) bool {
	return knownEvents[name]
}
