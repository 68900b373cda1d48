package commands

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"
)

// CompletionsCommand prints a static shell completion script body. No
// third-party completion engine is wired: jessevdk/go-flags and
// mitchellh/cli don't generate one, so the scripts are hand-written here.
type CompletionsCommand struct{}

// CompletionsOptions holds command-line options for the completions command.
type CompletionsOptions struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

// Help returns the help text for the completions command.
func (c *CompletionsCommand) Help() string {
	var opts CompletionsOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "{bash|zsh|fish}"

	formatter := &HelpFormatter{
		Command:     "completions",
		Description: "Print a shell completion script.",
		Examples: []Example{
			{Command: "peter-hook completions bash", Description: "Print the bash completion script"},
			{Command: "peter-hook completions zsh > _peter-hook", Description: "Write the zsh completion script to a file"},
		},
	}
	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the completions command.
func (c *CompletionsCommand) Synopsis() string {
	return "Print a shell completion script"
}

// CompletionsCommandFactory creates a new completions command instance.
func CompletionsCommandFactory() (cli.Command, error) {
	return &CompletionsCommand{}, nil
}

// Run executes the completions command.
func (c *CompletionsCommand) Run(args []string) int {
	var opts CompletionsOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "{bash|zsh|fish}"

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
		fmt.Println("Error: shell name is required (bash, zsh, or fish)")
		return 1
	}

	script, ok := completionScripts[remaining[0]]
	if !ok {
		fmt.Printf("Error: unsupported shell %q\n", remaining[0])
		return 1
	}
	fmt.Print(script)
	return 0
}

var completionScripts = map[string]string{
	"bash": `_peter_hook_complete() {
  local cur="${COMP_WORDS[COMP_CWORD]}"
  case "${COMP_WORDS[1]}" in
    run)  COMPREPLY=( $(compgen -W "$(peter-hook _run-targets 2>/dev/null)" -- "$cur") ) ;;
    lint) COMPREPLY=( $(compgen -W "$(peter-hook _lint-targets 2>/dev/null)" -- "$cur") ) ;;
    *)    COMPREPLY=( $(compgen -W "run lint validate install install-hooks uninstall doctor completions version license help" -- "$cur") ) ;;
  esac
}
complete -F _peter_hook_complete peter-hook
`,
	"zsh": `#compdef peter-hook
_peter_hook() {
  local -a subs
  subs=(run lint validate install install-hooks uninstall doctor completions version license help)
  case "$words[2]" in
    run)  compadd -- $(peter-hook _run-targets 2>/dev/null) ;;
    lint) compadd -- $(peter-hook _lint-targets 2>/dev/null) ;;
    *)    compadd -a subs ;;
  esac
}
compdef _peter_hook peter-hook
`,
	"fish": `complete -c peter-hook -f
complete -c peter-hook -n '__fish_use_subcommand' -a 'run lint validate install install-hooks uninstall doctor completions version license help'
complete -c peter-hook -n '__fish_seen_subcommand_from run' -a '(peter-hook _run-targets 2>/dev/null)'
complete -c peter-hook -n '__fish_seen_subcommand_from lint' -a '(peter-hook _lint-targets 2>/dev/null)'
`,
}
