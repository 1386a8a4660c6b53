package config

import (
	"errors"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// MaxDifficulty is the number of hex characters in a SHA-256 digest. Anything above
// it can never be satisfied.
const MaxDifficulty = 64

// This is the global app config for the ledger.
type AppConfig struct {
	// How many leading hex 0s form a valid digest.
	DIFFICULTY int
	// The reward paid to the miner of every block.
	MINING_REWARD float64
	// Port the local command service listens on.
	PORT string
	// Path of the usage text shown in the manual pane.
	MANUAL_PATH string
}

// Default returns the config a fresh node runs with.
func Default() AppConfig {
	return AppConfig{
		DIFFICULTY:    2,
		MINING_REWARD: 100,
		PORT:          "10000",
		MANUAL_PATH:   "ledger/cmd/usage.txt",
	}
}

func (c AppConfig) Validate() error {
	if c.DIFFICULTY < 0 {
		return errors.New("difficulty cannot be negative")
	}
	if c.DIFFICULTY > MaxDifficulty {
		return fmt.Errorf("difficulty %d exceeds digest length %d", c.DIFFICULTY, MaxDifficulty)
	}
	if c.MINING_REWARD <= 0 {
		return errors.New("mining reward must be positive")
	}
	return nil
}

// Parse reads YAML on top of the defaults, so keys missing from the file keep their
// default value.
func Parse(data []byte) (AppConfig, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return AppConfig{}, err
	}
	return c, nil
}

// Load reads the config file at path. An empty path yields the defaults.
func Load(path string) (AppConfig, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}
