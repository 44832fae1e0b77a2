package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/proofchains/go-proofmarshal/crypto"
	"github.com/proofchains/go-proofmarshal/utils"
)

// keygenCmd generates a fresh HMAC domain separation key.
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an HMAC domain separation key.",
	Long: `Generate a fresh 32-byte HMAC domain separation key and write
it to the given file.`,
	Run: keygenRunFunc,
}

func init() {
	RootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringP("out", "o", "hmac.key", "Location of the generated key file")
}

func keygenRunFunc(cmd *cobra.Command, args []string) {
	out := cmd.Flag("out").Value.String()
	key, err := crypto.MakeRand()
	if err != nil {
		log.Fatal(err)
	}
	if err := utils.WriteFile(out, key, 0600); err != nil {
		log.Fatal(err)
	}
}
