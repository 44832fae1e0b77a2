package cmd

import (
	"log"
	"path"

	"github.com/spf13/cobra"

	"github.com/proofchains/go-proofmarshal/cli"
	"github.com/proofchains/go-proofmarshal/crypto"
	"github.com/proofchains/go-proofmarshal/utils"
)

// initCmd represents the init command
var initCmd = cli.NewInitCommand("proofdbg", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
}

func initRunFunc(cmd *cobra.Command, args []string) {
	dir := cmd.Flag("dir").Value.String()
	mkConfig(dir)
	mkHMACKey(dir)
}

func mkConfig(dir string) {
	file := path.Join(dir, "config.toml")
	conf := cli.NewConfig(file, "hmac.key", path.Join(dir, "proofs"))
	if err := conf.Save(); err != nil {
		log.Println(err)
	}
}

func mkHMACKey(dir string) {
	key, err := crypto.MakeRand()
	if err != nil {
		log.Print(err)
		return
	}
	if err := utils.WriteFile(path.Join(dir, "hmac.key"), key, 0600); err != nil {
		log.Println(err)
	}
}
