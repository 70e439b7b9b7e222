// Package config provides configuration management for the token-bound-token
// ledger.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tyler-smith/go-bip39"
)

// Default values.
var (
	DefaultCustody  = common.HexToAddress("0x0000000000000000000000000000000000007B70")
	DefaultMnemonic = "test test test test test test test test test test test junk"
)

// Config defines the ledger deployment configuration.
type Config struct {
	// Addresses
	Admin   common.Address `json:"admin"`
	Custody common.Address `json:"custody,omitempty"`
	Payee   common.Address `json:"payee,omitempty"`

	// Ownership query overrides: external contract address -> function
	// signature used instead of ownerOf(uint256).
	OwnerOfOverrides map[common.Address]string `json:"ownerOfOverrides,omitempty"`

	// Dev account configuration
	Mnemonic string `json:"mnemonic,omitempty"`
}

// Default returns a configuration with default values. The admin address has
// no default and must be supplied.
func Default() *Config {
	return &Config{
		Custody:  DefaultCustody,
		Mnemonic: DefaultMnemonic,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Admin == (common.Address{}) {
		errs = append(errs, "admin address must be set")
	}

	if c.Custody == (common.Address{}) {
		errs = append(errs, "custody address must not be zero")
	}

	if c.Mnemonic != "" && !bip39.IsMnemonicValid(c.Mnemonic) {
		errs = append(errs, "mnemonic is invalid")
	}

	for contract, sig := range c.OwnerOfOverrides {
		if contract == (common.Address{}) {
			errs = append(errs, "override contract address must not be zero")
		}
		if !validSignature(sig) {
			errs = append(errs, fmt.Sprintf("override signature %q must have the shape name(uint256)", sig))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// validSignature checks the single-uint256-argument function shape the
// ownership oracle can evaluate.
func validSignature(sig string) bool {
	name, rest, ok := strings.Cut(sig, "(")
	if !ok || name == "" {
		return false
	}
	return rest == "uint256)"
}

// LoadFromFile loads configuration from a JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return MergeWithDefaults(&cfg), nil
}

// MergeWithDefaults merges partial config with default values.
func MergeWithDefaults(partial *Config) *Config {
	def := Default()

	if partial.Admin != (common.Address{}) {
		def.Admin = partial.Admin
	}
	if partial.Custody != (common.Address{}) {
		def.Custody = partial.Custody
	}
	if partial.Payee != (common.Address{}) {
		def.Payee = partial.Payee
	}
	if partial.OwnerOfOverrides != nil {
		def.OwnerOfOverrides = partial.OwnerOfOverrides
	}
	if partial.Mnemonic != "" {
		def.Mnemonic = partial.Mnemonic
	}

	return def
}

// Copy creates a deep copy of the configuration.
func (c *Config) Copy() *Config {
	copied := *c

	if c.OwnerOfOverrides != nil {
		copied.OwnerOfOverrides = make(map[common.Address]string, len(c.OwnerOfOverrides))
		for contract, sig := range c.OwnerOfOverrides {
			copied.OwnerOfOverrides[contract] = sig
		}
	}

	return &copied
}

// HasPayee returns true if a purchase proceeds payee is configured.
func (c *Config) HasPayee() bool {
	return c.Payee != (common.Address{})
}
