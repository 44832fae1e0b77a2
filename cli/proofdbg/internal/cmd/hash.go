package cmd

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/proofchains/go-proofmarshal/cli"
	"github.com/proofchains/go-proofmarshal/crypto"
	"github.com/proofchains/go-proofmarshal/merbinner"
)

// hashCmd computes a merbinner tree commitment from pre-hashed leaves.
var hashCmd = &cobra.Command{
	Use:   "hash <leaves file>",
	Short: "Compute a merbinner tree commitment from pre-hashed leaves.",
	Long: `Compute the merbinner tree root committing to the given leaves.

The leaves file holds one leaf per line as "keyhash:valuehash", both in
hex, or "keyhash:valuehash:sum" with a decimal sum when --summed is
given. Summed commitments serialize sums as 8-byte big-endian integers.
The root is keyed with the HMAC key referenced by the config file.`,
	Args: cobra.ExactArgs(1),
	Run:  hashRunFunc,
}

func init() {
	RootCmd.AddCommand(hashCmd)
	hashCmd.Flags().StringP("config", "c", "config.toml", "Path to the configuration file")
	hashCmd.Flags().BoolP("summed", "s", false, "Commit to per-leaf sums as well")
}

func hashRunFunc(cmd *cobra.Command, args []string) {
	confPath := cmd.Flag("config").Value.String()
	summed, _ := strconv.ParseBool(cmd.Flag("summed").Value.String())

	conf, err := cli.LoadConfig(confPath)
	if err != nil {
		log.Fatal(err)
	}
	key, err := conf.LoadHMACKey()
	if err != nil {
		log.Fatal(err)
	}

	entries, err := readLeaves(args[0], summed)
	if err != nil {
		log.Fatal(err)
	}

	hashFunc := func(b []byte) []byte {
		return crypto.KeyedDigest(key, b)
	}
	if !summed {
		digest, err := merbinner.CalcHash(unsummed(entries), hashFunc)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(hex.EncodeToString(digest))
		return
	}

	digest, sum, err := merbinner.CalcSummedHash(entries, hashFunc, serializeSum, nil, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(hex.EncodeToString(digest), sum)
}

func serializeSum(sum uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sum)
	return b[:]
}

func unsummed(entries []merbinner.SummedHashedEntry) []merbinner.HashedEntry {
	es := make([]merbinner.HashedEntry, len(entries))
	for i, e := range entries {
		es[i] = merbinner.HashedEntry{KeyHash: e.KeyHash, ValueHash: e.ValueHash}
	}
	return es
}

func readLeaves(file string, summed bool) ([]merbinner.SummedHashedEntry, error) {
	fd, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var entries []merbinner.SummedHashedEntry
	scanner := bufio.NewScanner(fd)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ":")
		want := 2
		if summed {
			want = 3
		}
		if len(fields) != want {
			return nil, fmt.Errorf("%s:%d: expected %d fields, got %d",
				file, lineno, want, len(fields))
		}

		keyHash, err := hex.DecodeString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad key hash: %v", file, lineno, err)
		}
		valueHash, err := hex.DecodeString(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad value hash: %v", file, lineno, err)
		}

		var sum uint64
		if summed {
			sum, err = strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad sum: %v", file, lineno, err)
			}
		}
		entries = append(entries, merbinner.SummedHashedEntry{
			KeyHash:   keyHash,
			ValueHash: valueHash,
			Sum:       sum,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
