package core

// config.go defines the minimum configuration contract spec.md §6.5
// requires: initial total_supply, genesis_account, validator identity,
// UNL membership, consensus thresholds, and reserve parameters, decoded
// from TOML. This is the data contract only — a full CLI flag parser and
// file-discovery loader is out of scope; callers hand DecodeConfig a reader.
//
// Grounded on the teacher's pkg/config/config.go mapstructure-tagged
// nested-struct shape (teacher: orbas1-Synnergy), ported from its
// viper+YAML decode to go-toml/v2 per spec.md §6.5's named reference
// format; the rest of the pack (AKJUS-bsc-erigon, leanlp-BTC-coinjoin)
// also carries go-toml/v2 in its dependency surface.
import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

// GenesisConfig seeds the initial ledger state.
type GenesisConfig struct {
	TotalSupply    string `toml:"total_supply"`
	GenesisAccount string `toml:"genesis_account"`
}

// ValidatorConfig is this node's consensus identity.
type ValidatorConfig struct {
	ID         string `toml:"id"`
	PrivateKey string `toml:"private_key_hex"`
}

// UNLConfig is the unique node list: every other validator this node
// trusts, by id and hex-encoded public key.
type UNLConfig struct {
	Members []UNLMember `toml:"members"`
}

// UNLMember is one other validator's id and public key.
type UNLMember struct {
	ID        string `toml:"id"`
	PublicKey string `toml:"public_key_hex"`
}

// ConsensusConfig carries BFT-RPCA threshold settings (spec.md §4.5).
// Validate range-checks them, but NewConsensus does not read them: the
// engine always runs on its built-in constants in consensus.go.
type ConsensusConfig struct {
	InitialThreshold float64 `toml:"initial_threshold"`
	FinalThreshold   float64 `toml:"final_threshold"`
	MaxRounds        int     `toml:"max_rounds"`
}

// ReserveConfig mirrors ReserveParams (spec.md §4.2 account reserves).
type ReserveConfig struct {
	BaseReserve string `toml:"base_reserve"`
	OwnerReserve string `toml:"owner_reserve"`
}

// Config is the full node configuration document.
type Config struct {
	Genesis   GenesisConfig   `toml:"genesis"`
	Validator ValidatorConfig `toml:"validator"`
	UNL       UNLConfig       `toml:"unl"`
	Consensus ConsensusConfig `toml:"consensus"`
	Reserve   ReserveConfig   `toml:"reserve"`
}

// DecodeConfig parses a TOML configuration document. It performs no file
// discovery, environment-variable merging, or defaulting beyond what
// toml.Unmarshal itself does; that orchestration belongs to a CLI layer
// outside this package.
func DecodeConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the minimal set of fields spec.md §6.5 requires be
// present (non-default) before this config can seed a ledger.
func (c *Config) Validate() error {
	if c.Genesis.TotalSupply == "" {
		return fmt.Errorf("config: genesis.total_supply is required")
	}
	if c.Genesis.GenesisAccount == "" {
		return fmt.Errorf("config: genesis.genesis_account is required")
	}
	if c.Validator.ID == "" {
		return fmt.Errorf("config: validator.id is required")
	}
	if c.Consensus.InitialThreshold < 0 || c.Consensus.InitialThreshold > 1 {
		return fmt.Errorf("config: consensus.initial_threshold must be in [0,1]")
	}
	if c.Consensus.FinalThreshold < 0 || c.Consensus.FinalThreshold > 1 {
		return fmt.Errorf("config: consensus.final_threshold must be in [0,1]")
	}
	return nil
}
