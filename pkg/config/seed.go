package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SeedAccount is a sandbox account created at startup
type SeedAccount struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Balance  string `yaml:"balance"`
}

// SeedConfig holds the accounts the sandbox server starts with
type SeedConfig struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// LoadSeedConfig loads sandbox seed accounts from a YAML file
func LoadSeedConfig(path string) (*SeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return ParseSeedConfig(data)
}

// ParseSeedConfig parses and validates seed YAML
func ParseSeedConfig(data []byte) (*SeedConfig, error) {
	var seed SeedConfig
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := seed.Validate(); err != nil {
		return nil, err
	}

	return &seed, nil
}

// Validate validates the seed accounts
func (s *SeedConfig) Validate() error {
	seen := make(map[string]bool)
	for i, acc := range s.Accounts {
		email := strings.ToLower(strings.TrimSpace(acc.Email))
		if email == "" {
			return fmt.Errorf("account %d: email is required", i)
		}
		if acc.Password == "" {
			return fmt.Errorf("account %s: password is required", acc.Email)
		}
		if acc.Balance != "" {
			bal, err := decimal.NewFromString(acc.Balance)
			if err != nil {
				return fmt.Errorf("account %s: invalid balance %q", acc.Email, acc.Balance)
			}
			if bal.IsNegative() {
				return fmt.Errorf("account %s: balance must not be negative", acc.Email)
			}
		}
		if seen[email] {
			return fmt.Errorf("duplicate account %s", acc.Email)
		}
		seen[email] = true
	}

	return nil
}

// BalanceOf returns the parsed opening balance, zero when unset
func (a SeedAccount) BalanceOf() decimal.Decimal {
	if a.Balance == "" {
		return decimal.Zero
	}
	bal, err := decimal.NewFromString(a.Balance)
	if err != nil {
		return decimal.Zero
	}
	return bal
}
