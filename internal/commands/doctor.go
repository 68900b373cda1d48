package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/pkg/config"
	"github.com/tftio/peter-hook/pkg/constants"
	"github.com/tftio/peter-hook/pkg/gitfacade"
)

// DoctorCommand reports repository and configuration health.
type DoctorCommand struct{}

// DoctorOptions holds command-line options for the doctor command.
type DoctorOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Show detailed diagnostic information"`
	Help    bool `short:"h" long:"help"    description:"Show this help message"`
}

// Help returns the help text for the doctor command.
func (c *DoctorCommand) Help() string {
	var opts DoctorOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "doctor",
		Description: "Report repository and configuration health.",
		Examples: []Example{
			{Command: "peter-hook doctor", Description: "Check repository and config health"},
			{Command: "peter-hook doctor --verbose", Description: "Show every config checked"},
		},
		Notes: []string{
			"Exit codes:",
			"  0: no problems found",
			"  1: problems found",
		},
	}
	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the doctor command.
func (c *DoctorCommand) Synopsis() string {
	return "Check repository and configuration health"
}

// DoctorCommandFactory creates a new doctor command instance.
func DoctorCommandFactory() (cli.Command, error) {
	return &DoctorCommand{}, nil
}

// Run executes the doctor command.
func (c *DoctorCommand) Run(args []string) int {
	var opts DoctorOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}

	fmt.Println("Running peter-hook health check...")
	fmt.Println()

	var problems, warnings []string

	repo, err := gitfacade.FindRepoRoot(".")
	if err != nil {
		problems = append(problems, fmt.Sprintf("not in a git repository: %v", err))
		c.printResults(problems, warnings)
		return 1
	}
	if opts.Verbose {
		fmt.Printf("git repository root: %s\n", repo.Root)
	}

	if !repo.HasHook(constants.EventPreCommit) && !repo.HasHook(constants.EventPrePush) {
		warnings = append(warnings, "no hook stubs installed; run `peter-hook install`")
	}

	cwd, err := os.Getwd()
	if err != nil {
		problems = append(problems, fmt.Sprintf("getting working directory: %v", err))
		c.printResults(problems, warnings)
		return 1
	}

	paths, err := findConfigs(cwd)
	if err != nil {
		problems = append(problems, fmt.Sprintf("walking for configs: %v", err))
		c.printResults(problems, warnings)
		return 1
	}
	if len(paths) == 0 {
		warnings = append(warnings, "no .peter-hook.toml files found")
	}

	for _, path := range paths {
		if opts.Verbose {
			fmt.Printf("checking %s\n", path)
		}
		cfg, loadErr := config.Load(path, "doctor")
		if loadErr != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", path, loadErr))
			continue
		}
		for name, hook := range cfg.Hooks {
			if hook.RequiresFiles && !constants.CanProvideFiles(name) {
				warnings = append(warnings, fmt.Sprintf(
					"%s: hook %q requires_files but event %q cannot provide files", path, name, name,
				))
			}
		}
	}

	return c.printResults(problems, warnings)
}

func (c *DoctorCommand) printResults(problems, warnings []string) int {
	for _, w := range warnings {
		fmt.Printf("WARN  %s\n", w)
	}
	for _, p := range problems {
		fmt.Printf("FAIL  %s\n", p)
	}
	if len(problems) == 0 {
		fmt.Println("\nNo problems found")
		return 0
	}
	fmt.Printf("\n%d problem(s) found\n", len(problems))
	return 1
}
