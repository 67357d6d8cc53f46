package configs

import (
	"errors"
	"fmt"
)

var Values Config

type (
	// BytecodeHash selects the metadata hash scheme embedded in compiled bytecode.
	BytecodeHash string

	// EVMVersion identifies the target runtime the compiler emits code for.
	EVMVersion string

	Config struct {
		Build    Build         `mapstructure:"build"`
		Deployer Deployer      `mapstructure:"deployer"`
		Chains   []ChainConfig `mapstructure:"chains"`
	}

	Build struct {
		Optimizer  Optimizer  `mapstructure:"optimizer"`
		EVMVersion EVMVersion `mapstructure:"evm-version"`
		Metadata   Metadata   `mapstructure:"metadata"`
	}

	Optimizer struct {
		Enabled bool `mapstructure:"enabled"`
		Runs    int  `mapstructure:"runs"`
	}

	Metadata struct {
		UseLiteralContent bool         `mapstructure:"use-literal-content"`
		BytecodeHash      BytecodeHash `mapstructure:"bytecode-hash"`
	}

	Deployer struct {
		PrivateKey     string `mapstructure:"private-key"`
		GasLimit       uint64 `mapstructure:"gas-limit"`
		WaitForReceipt bool   `mapstructure:"wait-for-receipt"`
		SolcPath       string `mapstructure:"solc-path"`
	}

	ChainConfig struct {
		ID             uint64 `mapstructure:"id"`
		Name           string `mapstructure:"name"`
		RPCURL         string `mapstructure:"rpc-url"`
		Verify         bool   `mapstructure:"verify"`
		ExplorerURL    string `mapstructure:"explorer-url"`
		ExplorerAPIURL string `mapstructure:"explorer-api-url"`
	}
)

const (
	BytecodeHashIPFS  BytecodeHash = "ipfs"
	BytecodeHashBzzr1 BytecodeHash = "bzzr1"
	BytecodeHashNone  BytecodeHash = "none"

	EVMVersionLondon   EVMVersion = "london"
	EVMVersionParis    EVMVersion = "paris"
	EVMVersionShanghai EVMVersion = "shanghai"
	EVMVersionCancun   EVMVersion = "cancun"
)

var (
	bytecodeHashes = map[BytecodeHash]struct{}{
		BytecodeHashIPFS:  {},
		BytecodeHashBzzr1: {},
		BytecodeHashNone:  {},
	}

	evmVersions = map[EVMVersion]struct{}{
		EVMVersionLondon:   {},
		EVMVersionParis:    {},
		EVMVersionShanghai: {},
		EVMVersionCancun:   {},
	}
)

func (b *Build) Validate() error {
	var errs []error

	if b.Optimizer.Enabled && b.Optimizer.Runs <= 0 {
		errs = append(errs, errors.New("build.optimizer.runs must be a positive integer"))
	}
	if _, ok := evmVersions[b.EVMVersion]; !ok {
		errs = append(errs, fmt.Errorf("build.evm-version must be one of london, paris, shanghai, cancun; got '%s'", b.EVMVersion))
	}
	if _, ok := bytecodeHashes[b.Metadata.BytecodeHash]; !ok {
		errs = append(errs, fmt.Errorf("build.metadata.bytecode-hash must be one of ipfs, bzzr1, none; got '%s'", b.Metadata.BytecodeHash))
	}

	if len(errs) > 0 {
		return fmt.Errorf("build configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (d *Deployer) Validate() error {
	var errs []error

	if d.PrivateKey == "" {
		errs = append(errs, errors.New("deployer.private-key is required"))
	}
	if d.GasLimit == 0 {
		errs = append(errs, errors.New("deployer.gas-limit is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("deployer configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if err := c.Build.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Deployer.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(c.Chains) == 0 {
		errs = append(errs, errors.New("at least one chain is required"))
	}
	for i, chain := range c.Chains {
		if chain.ID == 0 {
			errs = append(errs, fmt.Errorf("chains[%d].id is required", i))
		}
		if chain.Name == "" {
			errs = append(errs, fmt.Errorf("chains[%d].name is required", i))
		}
		if chain.RPCURL == "" {
			errs = append(errs, fmt.Errorf("chains[%d].rpc-url is required", i))
		}
		if chain.Verify && chain.ExplorerAPIURL == "" {
			errs = append(errs, fmt.Errorf("chains[%d].explorer-api-url is required when verify is enabled", i))
		}
		if chain.Verify && chain.ExplorerURL == "" {
			errs = append(errs, fmt.Errorf("chains[%d].explorer-url is required when verify is enabled", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
