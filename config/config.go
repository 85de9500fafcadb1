// Package config defines the configuration of a node.
//
// The configuration is read from the matchgame.yaml file of the config folder
// when it exists. Values can then be overridden by the .env file of the same
// folder and finally by the environment of the process.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.dedis.ch/matchgame/crypto"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

const (
	// FileName is the name of the configuration file in the config folder.
	FileName = "matchgame.yaml"

	// EnvFileName is the name of the dotenv file in the config folder.
	EnvFileName = ".env"

	// BackendBolt stores the state in a bbolt file.
	BackendBolt = "bolt"
	// BackendSQLite stores the state in a SQLite file.
	BackendSQLite = "sqlite"

	envLogLevel       = "MATCHGAME_LOG_LEVEL"
	envStorageBackend = "MATCHGAME_STORAGE_BACKEND"
	envStorageFile    = "MATCHGAME_STORAGE_FILE"
	envProxyAddr      = "MATCHGAME_PROXY_ADDR"
	envTxHash         = "MATCHGAME_TX_HASH"
)

// Storage is the configuration of the key/value database.
type Storage struct {
	Backend string `yaml:"backend"`
	File    string `yaml:"file"`
	Bucket  string `yaml:"bucket"`
}

// Proxy is the configuration of the HTTP proxy.
type Proxy struct {
	Addr string `yaml:"addr"`
}

// Config is the configuration of a node. TxHash names the algorithm computing
// the identifiers of the transactions.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Storage  Storage `yaml:"storage"`
	Proxy    Proxy   `yaml:"proxy"`
	TxHash   string  `yaml:"tx_hash"`
}

// Default returns the configuration used when nothing is provided.
func Default() Config {
	return Config{
		LogLevel: "info",
		Storage: Storage{
			Backend: BackendBolt,
			File:    "matchgame.db",
			Bucket:  "matchgame",
		},
		Proxy: Proxy{
			Addr: "127.0.0.1:8080",
		},
		TxHash: crypto.Sha256.String(),
	}
}

// LookupFn is the signature of the function used to read the environment.
type LookupFn func(key string) (string, bool)

// Load reads the configuration from the folder and the process environment.
func Load(dir string) (Config, error) {
	return LoadWithEnv(dir, os.LookupEnv)
}

// LoadWithEnv reads the configuration from the folder and uses the lookup
// function as the environment.
func LoadWithEnv(dir string, lookup LookupFn) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil && !os.IsNotExist(err) {
		return cfg, xerrors.Errorf("failed to read config: %v", err)
	}

	if err == nil {
		err = yaml.UnmarshalStrict(data, &cfg)
		if err != nil {
			return cfg, xerrors.Errorf("failed to parse config: %v", err)
		}
	}

	envPath := filepath.Join(dir, EnvFileName)

	_, err = os.Stat(envPath)
	if err == nil {
		vars, err := godotenv.Read(envPath)
		if err != nil {
			return cfg, xerrors.Errorf("failed to read env file: %v", err)
		}

		cfg.apply(func(key string) (string, bool) {
			value, found := vars[key]
			return value, found
		})
	}

	if lookup != nil {
		cfg.apply(lookup)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, xerrors.Errorf("invalid config: %v", err)
	}

	return cfg, nil
}

func (c *Config) apply(lookup LookupFn) {
	set := func(key string, field *string) {
		value, found := lookup(key)
		if found && value != "" {
			*field = value
		}
	}

	set(envLogLevel, &c.LogLevel)
	set(envStorageBackend, &c.Storage.Backend)
	set(envStorageFile, &c.Storage.File)
	set(envProxyAddr, &c.Proxy.Addr)
	set(envTxHash, &c.TxHash)
}

// Validate returns an error if a value of the configuration is not supported.
func (c Config) Validate() error {
	_, err := c.Level()
	if err != nil {
		return err
	}

	switch c.Storage.Backend {
	case BackendBolt, BackendSQLite:
	default:
		return xerrors.Errorf("unknown storage backend '%s'", c.Storage.Backend)
	}

	if c.Storage.File == "" {
		return xerrors.New("storage file is empty")
	}

	if c.Storage.Bucket == "" {
		return xerrors.New("storage bucket is empty")
	}

	_, err = c.HashFactory()
	if err != nil {
		return err
	}

	return nil
}

// HashFactory returns the factory of the transaction identifiers.
func (c Config) HashFactory() (crypto.HashFactory, error) {
	algo, err := crypto.ParseHashAlgorithm(c.TxHash)
	if err != nil {
		return nil, err
	}

	return crypto.NewHashFactory(algo), nil
}

// Level returns the zerolog level of the configuration.
func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.NoLevel, xerrors.Errorf("unknown log level '%s'", c.LogLevel)
	}

	return level, nil
}

// String returns the YAML representation of the configuration.
func (c Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}

	return string(data)
}
