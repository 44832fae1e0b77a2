// Package cmd implements the CLI commands for the proofmarshal
// debugging tool.
package cmd

import (
	"github.com/proofchains/go-proofmarshal/cli"
)

// RootCmd represents the base "proofdbg" command when called without any
// subcommands.
var RootCmd = cli.NewRootCommand("proofdbg",
	"Debugging tool for proofmarshal commitments.",
	`Compute and inspect merbinner tree commitments from pre-hashed
leaves, and manage the HMAC domain separation keys the commitments
are made under.`)
