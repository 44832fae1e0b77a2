package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/proofchains/go-proofmarshal/crypto"
	"github.com/proofchains/go-proofmarshal/utils"
)

// Config is the toml-encoded configuration shared by the proofmarshal
// command-line tools: where the HMAC domain separation key lives and
// where serialized proofs are stored.
type Config struct {
	Path      string `toml:"-"`
	KeyFile   string `toml:"key_file"`
	StorePath string `toml:"store_path"`
}

// NewConfig initializes a config with the given file path, key file and
// proof store location.
func NewConfig(file, keyFile, storePath string) *Config {
	return &Config{
		Path:      file,
		KeyFile:   keyFile,
		StorePath: storePath,
	}
}

// Save writes the config in toml encoding to its file path.
func (conf *Config) Save() error {
	var confBuf bytes.Buffer
	e := toml.NewEncoder(&confBuf)
	if err := e.Encode(conf); err != nil {
		return err
	}
	return utils.WriteFile(conf.Path, confBuf.Bytes(), 0644)
}

// LoadConfig reads a toml-encoded config from file.
func LoadConfig(file string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.DecodeFile(file, conf); err != nil {
		return nil, fmt.Errorf("Failed to load config: %v", err)
	}
	conf.Path = file
	return conf, nil
}

// LoadHMACKey loads the domain separation key referenced by the config.
// Relative key paths are resolved against the config file's directory.
// If there is any IO error or the key is malformed, LoadHMACKey returns
// an error with a nil key.
func (conf *Config) LoadHMACKey() ([]byte, error) {
	keyPath := utils.ResolvePath(conf.KeyFile, conf.Path)
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("Cannot read HMAC key: %v", err)
	}
	if len(key) != crypto.HashSizeByte {
		return nil, fmt.Errorf("HMAC key must be %d bytes (got %d)",
			crypto.HashSizeByte, len(key))
	}
	return key, nil
}
