package commands

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"
)

const licenseText = `peter-hook is distributed under the MIT license.

Copyright (c) the peter-hook authors.

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files, to deal in the Software
without restriction, including without limitation the rights to use, copy,
modify, merge, publish, distribute, sublicense, and/or sell copies of the
Software, subject to the inclusion of the above copyright notice in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND.
`

// LicenseCommand prints the peter-hook license.
type LicenseCommand struct{}

// LicenseOptions holds command-line options for the license command.
type LicenseOptions struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

// Help returns the help text for the license command.
func (c *LicenseCommand) Help() string {
	return "usage: peter-hook license\n\nPrint the peter-hook license and exit.\n"
}

// Synopsis returns a short description of the license command.
func (c *LicenseCommand) Synopsis() string {
	return "Show the peter-hook license"
}

// LicenseCommandFactory creates a new license command instance.
func LicenseCommandFactory() (cli.Command, error) {
	return &LicenseCommand{}, nil
}

// Run executes the license command. Bypasses the deprecated-config check
// like version does, since neither needs a config at all.
func (c *LicenseCommand) Run(args []string) int {
	var opts LicenseOptions
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

	fmt.Print(licenseText)
	return 0
}
