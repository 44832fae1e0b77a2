package cmd

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/proofchains/go-proofmarshal/cli"
	"github.com/proofchains/go-proofmarshal/storage"
	"github.com/proofchains/go-proofmarshal/storage/kv/leveldbkv"
)

// listCmd lists the commitment hashes held by the proof store.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the commitment hashes in the proof store.",
	Long:  `List the commitment hash of every proof held by the configured store.`,
	Run:   listRunFunc,
}

func init() {
	RootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("config", "c", "config.toml", "Path to the configuration file")
}

func listRunFunc(cmd *cobra.Command, args []string) {
	confPath := cmd.Flag("config").Value.String()
	conf, err := cli.LoadConfig(confPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := leveldbkv.OpenDB(conf.StorePath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	hashes, err := storage.NewStore(db).Hashes()
	if err != nil {
		log.Fatal(err)
	}
	for _, h := range hashes {
		fmt.Println(hex.EncodeToString(h))
	}
}
