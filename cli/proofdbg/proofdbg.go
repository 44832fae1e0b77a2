// Executable debugging tool for proofmarshal commitments. See README
// for usage instructions.
package main

import (
	"github.com/proofchains/go-proofmarshal/cli"
	"github.com/proofchains/go-proofmarshal/cli/proofdbg/internal/cmd"
)

func main() {
	cli.Execute(cmd.RootCmd)
}
