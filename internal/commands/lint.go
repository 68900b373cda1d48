package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/pkg/executor"
	"github.com/tftio/peter-hook/pkg/gitfacade"
	"github.com/tftio/peter-hook/pkg/logging"
	"github.com/tftio/peter-hook/pkg/reporter"
	"github.com/tftio/peter-hook/pkg/resolver"
)

// LintCommand resolves and runs a single named hook or group against
// working-directory changes, independent of any particular Git event.
type LintCommand struct{}

// LintOptions holds command-line options for the lint command.
type LintOptions struct {
	DryRun bool   `long:"dry-run" description:"Print what would run, without running it"`
	Debug  bool   `long:"debug"   description:"Enable debug logging"`
	Trace  bool   `long:"trace"   description:"Enable trace logging (implies --debug)"`
	Color  string `long:"color"   description:"Whether to use color in output" choice:"auto" default:"auto"`
	Help   bool   `long:"help"    description:"Show this help message" short:"h"`
}

// Help returns the help text for the lint command.
func (c *LintCommand) Help() string {
	var opts LintOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "HOOK_NAME " + OptionsUsage

	formatter := &HelpFormatter{
		Command:     "lint",
		Description: "Resolve and run a single named hook or group against working-directory changes.",
		Examples: []Example{
			{Command: "peter-hook lint fmt", Description: "Run the fmt hook"},
			{Command: "peter-hook lint pre-commit --dry-run", Description: "Preview what the pre-commit group would run"},
		},
	}
	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the lint command.
func (c *LintCommand) Synopsis() string {
	return "Run a single named hook or group"
}

// LintCommandFactory creates a new lint command instance.
func LintCommandFactory() (cli.Command, error) {
	return &LintCommand{}, nil
}

// Run executes the lint command.
func (c *LintCommand) Run(args []string) int {
	var opts LintOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "HOOK_NAME " + OptionsUsage

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}
	if len(remaining) == 0 {
		fmt.Println("Error: HOOK_NAME is required")
		return 1
	}
	name := remaining[0]

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

	changedFiles, err := repo.GetChangedFiles(gitfacade.ChangeRequest{Mode: gitfacade.WorkingDirectory})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	groups, err := resolver.ResolveHierarchically(name, changedFiles, repo.Root, cwd, "lint", worktree)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(groups) == 0 {
		fmt.Printf("No hook or group named %q resolved\n", name)
		return 0
	}

	ex := executor.New(executor.Options{DryRun: opts.DryRun, Logger: logger})
	results, runErr := ex.RunGroups(context.Background(), groups)

	rep := reporter.New(true, shouldUseColor(opts.Color))
	allPassed := true
	for _, gr := range results {
		if !rep.PrintGroup(gr) {
			allPassed = false
		}
	}
	overall := reporter.PrintOverallSummary(results)
	if runErr != nil {
		fmt.Printf("Details: %v\n", runErr)
	}
	if !allPassed || !overall {
		return 1
	}
	return 0
}
