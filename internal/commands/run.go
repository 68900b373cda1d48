package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/pkg/constants"
	"github.com/tftio/peter-hook/pkg/executor"
	"github.com/tftio/peter-hook/pkg/gitfacade"
	"github.com/tftio/peter-hook/pkg/logging"
	"github.com/tftio/peter-hook/pkg/reporter"
	"github.com/tftio/peter-hook/pkg/resolver"
)

// RunCommand is the primary entrypoint invoked by installed hook stubs.
type RunCommand struct{}

// RunOptions holds command-line options for the run command.
type RunOptions struct {
	AllFiles bool   `long:"all-files" description:"Resolve without a changed-file list" short:"a"`
	DryRun   bool   `long:"dry-run"   description:"Print what would run, without running it"`
	Debug    bool   `long:"debug"     description:"Enable debug logging"`
	Trace    bool   `long:"trace"     description:"Enable trace logging (implies --debug)"`
	Verbose  bool   `long:"verbose"   description:"Show passing hook output and detail lines" short:"v"`
	Color    string `long:"color"     description:"Whether to use color in output" choice:"auto" default:"auto"`
	Jobs     int    `long:"jobs"      description:"Bounded parallel worker count" short:"j"`
	Help     bool   `long:"help"      description:"Show this help message" short:"h"`
}

// Help returns the help text for the run command.
func (c *RunCommand) Help() string {
	var opts RunOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "EVENT [GIT_ARGS...] " + OptionsUsage

	formatter := &HelpFormatter{
		Command:     "run",
		Description: "Run the hooks resolved for EVENT against the relevant changed files.",
		Examples: []Example{
			{Command: "peter-hook run pre-commit", Description: "Run staged-file hooks"},
			{Command: "peter-hook run pre-push", Description: "Run push hooks, reading refs from stdin"},
			CommonExamples.AllFiles,
			CommonExamples.DryRun,
		},
		Notes: []string{
			"Invoked by installed hook stubs with GIT_ARGS carrying event-specific data.",
			"For pre-push, the ref update list is read from stdin, not GIT_ARGS.",
		},
	}
	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the run command.
func (c *RunCommand) Synopsis() string {
	return "Run hooks for a Git event"
}

// RunCommandFactory creates a new run command instance.
func RunCommandFactory() (cli.Command, error) {
	return &RunCommand{}, nil
}

// Run executes the run command.
func (c *RunCommand) Run(args []string) int {
	opts, remaining, code := parseRunArgs(args)
	if code != -1 {
		return code
	}
	if len(remaining) == 0 {
		fmt.Println("Error: EVENT is required")
		return 1
	}
	event := remaining[0]
	gitArgs := remaining[1:]

	if opts.Trace {
		reporter.EnableTrace()
		opts.Debug = true
	}
	if opts.Debug {
		reporter.EnableDebug()
	}
	logger, err := logging.New(opts.Debug, opts.Trace)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	logger = logging.WithRunID(logger)
	defer func() { _ = logger.Sync() }()

	repo, err := gitfacade.FindRepoRoot(".")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	worktree, err := gitfacade.DetectWorktree(repo)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	changedFiles, err := c.changedFilesFor(repo, event, opts, gitArgs)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	groups, err := resolver.ResolveHierarchically(
		event, changedFiles, repo.Root, cwd, "run", worktree,
	)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(groups) == 0 {
		fmt.Printf("No hooks resolved for %s\n", event)
		return 0
	}

	ex := executor.New(executor.Options{DryRun: opts.DryRun, Parallel: opts.Jobs, Logger: logger})
	results, runErr := ex.RunGroups(context.Background(), groups)

	rep := reporter.New(opts.Verbose, shouldUseColor(opts.Color))
	allPassed := true
	for _, gr := range results {
		if !rep.PrintGroup(gr) {
			allPassed = false
		}
	}
	overall := reporter.PrintOverallSummary(results)

	if runErr != nil && opts.Verbose {
		fmt.Printf("Details: %v\n", runErr)
	}
	if !allPassed || !overall {
		return 1
	}
	return 0
}

// changedFilesFor determines the changed-file list for event, or nil when
// the caller asked for all-files mode or the event cannot provide files.
func (c *RunCommand) changedFilesFor(
	repo *gitfacade.Repository, event string, opts *RunOptions, gitArgs []string,
) ([]string, error) {
	if opts.AllFiles {
		return nil, nil
	}

	switch event {
	case constants.EventPrePush:
		stdin, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading pre-push stdin: %w", err)
		}
		local, remote, err := gitfacade.ParsePrePushStdin(string(stdin))
		if err != nil {
			return nil, err
		}
		return repo.GetChangedFiles(gitfacade.ChangeRequest{Mode: gitfacade.Push, LocalOID: local, RemoteOID: remote})
	case constants.EventPreCommit:
		return repo.GetChangedFiles(gitfacade.ChangeRequest{Mode: gitfacade.Staged})
	default:
		if !constants.CanProvideFiles(event) {
			return nil, nil
		}
		return repo.GetChangedFiles(gitfacade.ChangeRequest{Mode: gitfacade.WorkingDirectory})
	}
}

// parseRunArgs parses args and returns (opts, remaining, exitCode). exitCode
// is -1 when parsing succeeded and the caller should continue.
func parseRunArgs(args []string) (*RunOptions, []string, int) {
	var opts RunOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "EVENT [GIT_ARGS...] " + OptionsUsage

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return &opts, remaining, 0
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return &opts, remaining, 1
	}
	return &opts, remaining, -1
}

// shouldUseColor determines if color output should be enabled.
func shouldUseColor(colorMode string) bool {
	switch colorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return os.Getenv("TERM") != ""
	}
}
