package cmd

import (
	"github.com/proofchains/go-proofmarshal/cli"
)

var versionCmd = cli.NewVersionCommand("proofdbg")

func init() {
	RootCmd.AddCommand(versionCmd)
}
