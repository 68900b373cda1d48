// Package main provides the peter-hook command-line tool: a single binary
// installed as every managed Git hook that resolves, orders, and executes
// the hooks a repository's .peter-hook.toml configs define.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/internal/commands"
)

// version is set by GoReleaser at build time.
var version = "dev"

func main() {
	commands.Version = version

	c := cli.NewCLI("peter-hook", version)
	c.Args = os.Args[1:]
	c.HelpFunc = customHelpFunc
	c.Commands = map[string]cli.CommandFactory{
		"run":           commands.RunCommandFactory,
		"lint":          commands.LintCommandFactory,
		"validate":      commands.ValidateCommandFactory,
		"_run-targets":  commands.RunTargetsCommandFactory,
		"_lint-targets": commands.LintTargetsCommandFactory,
		"install":       commands.InstallCommandFactory,
		"install-hooks": commands.InstallHooksCommandFactory,
		"uninstall":     commands.UninstallCommandFactory,
		"doctor":        commands.DoctorCommandFactory,
		"completions":   commands.CompletionsCommandFactory,
		"version":       commands.VersionCommandFactory,
		"license":       commands.LicenseCommandFactory,
		"help":          commands.HelpCommandFactory,
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitStatus)
}

// customHelpFunc hides the underscore-prefixed completion-target commands
// and the recursive help entry from the top-level command listing.
func customHelpFunc(cmdFactories map[string]cli.CommandFactory) string {
	var commandNames []string
	for name := range cmdFactories {
		if name == "help" || strings.HasPrefix(name, "_") {
			continue
		}
		commandNames = append(commandNames, name)
	}
	sort.Strings(commandNames)

	var b strings.Builder
	b.WriteString("usage: peter-hook [--version] [--help] <command> [<args>]\n\n")
	b.WriteString("A Git-hook orchestrator for monorepos.\n\n")
	b.WriteString("Commands:\n")
	for _, name := range commandNames {
		factory := cmdFactories[name]
		cmd, err := factory()
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "    %-16s %s\n", name, cmd.Synopsis())
	}
	return b.String()
}
