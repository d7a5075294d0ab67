package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultMinLikeFee mirrors the ledger default: 0.0001 of the native unit.
const DefaultMinLikeFee = "100000000000000"

// Config carries the process-wide ledger settings. Fee parameters are read
// once at startup; there is no runtime reconfiguration.
type Config struct {
	ListenAddress   string  `toml:"ListenAddress"`
	DataDir         string  `toml:"DataDir"`
	NetworkName     string  `toml:"NetworkName"`
	TreasuryAddress string  `toml:"TreasuryAddress"`
	MinLikeFee      string  `toml:"MinLikeFee"`
	Genesis         Genesis `toml:"genesis"`
}

// Genesis seeds balances on a fresh database so paid likes are spendable.
type Genesis struct {
	Alloc map[string]string `toml:"alloc"`
}

func defaultConfig() *Config {
	return &Config{
		ListenAddress: "0.0.0.0:8645",
		DataDir:       "./pulse-data",
		NetworkName:   "basepulse-local",
		MinLikeFee:    DefaultMinLikeFee,
	}
}

// Load reads the configuration from path, creating a default file when none
// exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s contains unknown field %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks address and amount formats without touching state.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir required")
	}
	if trimmed := strings.TrimSpace(c.TreasuryAddress); trimmed != "" && !common.IsHexAddress(trimmed) {
		return fmt.Errorf("config: invalid TreasuryAddress %q", c.TreasuryAddress)
	}
	if _, err := c.MinFee(); err != nil {
		return err
	}
	if _, err := c.Allocation(); err != nil {
		return err
	}
	return nil
}

// Treasury returns the configured treasury account, or the zero address when
// unset.
func (c *Config) Treasury() common.Address {
	trimmed := strings.TrimSpace(c.TreasuryAddress)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}
	}
	return common.HexToAddress(trimmed)
}

// MinFee parses the paid-like fee floor in wei.
func (c *Config) MinFee() (*big.Int, error) {
	trimmed := strings.TrimSpace(c.MinLikeFee)
	if trimmed == "" {
		trimmed = DefaultMinLikeFee
	}
	fee, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || fee.Sign() <= 0 {
		return nil, fmt.Errorf("config: invalid MinLikeFee %q", c.MinLikeFee)
	}
	return fee, nil
}

// Allocation parses the genesis balance map.
func (c *Config) Allocation() (map[common.Address]*big.Int, error) {
	if len(c.Genesis.Alloc) == 0 {
		return nil, nil
	}
	alloc := make(map[common.Address]*big.Int, len(c.Genesis.Alloc))
	for rawAddr, rawAmount := range c.Genesis.Alloc {
		if !common.IsHexAddress(strings.TrimSpace(rawAddr)) {
			return nil, fmt.Errorf("config: invalid genesis address %q", rawAddr)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(rawAmount), 10)
		if !ok || amount.Sign() < 0 {
			return nil, fmt.Errorf("config: invalid genesis amount %q for %s", rawAmount, rawAddr)
		}
		alloc[common.HexToAddress(strings.TrimSpace(rawAddr))] = amount
	}
	return alloc, nil
}
