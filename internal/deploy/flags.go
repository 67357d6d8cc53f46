package deploy

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagDef defines a command-line flag with its configuration.
type (
	flagType interface {
		string | int | bool | uint64
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

var (
	stringFlags = []flagDef[string]{
		// Build settings
		{"evm-version", "build.evm-version", "paris", "Target EVM version (london, paris, shanghai, cancun)"},
		{"bytecode-hash", "build.metadata.bytecode-hash", "ipfs", "Metadata hash scheme (ipfs, bzzr1, none)"},

		// Deployer settings
		{"private-key", "deployer.private-key", "", "Deployer account private key"},
		{"solc-path", "deployer.solc-path", "solc", "Path to the solc binary"},
	}

	boolFlags = []flagDef[bool]{
		{"optimizer", "build.optimizer.enabled", true, "Enable the Solidity optimizer"},
		{"metadata-literal", "build.metadata.use-literal-content", false, "Embed literal source content in metadata"},
		{"wait-for-receipt", "deployer.wait-for-receipt", true, "Wait for each deployment transaction receipt"},
	}

	intFlags = []flagDef[int]{
		{"optimizer-runs", "build.optimizer.runs", 200, "Solidity optimizer run count"},
	}

	uint64Flags = []flagDef[uint64]{
		{"gas-limit", "deployer.gas-limit", 5_000_000, "Gas limit for deployment transactions"},
	}
)

func defineConfigFlags(cmd *cobra.Command) {
	for _, f := range stringFlags {
		cmd.Flags().String(f.name, f.defaultValue, f.description)
	}
	for _, f := range boolFlags {
		cmd.Flags().Bool(f.name, f.defaultValue, f.description)
	}
	for _, f := range intFlags {
		cmd.Flags().Int(f.name, f.defaultValue, f.description)
	}
	for _, f := range uint64Flags {
		cmd.Flags().Uint64(f.name, f.defaultValue, f.description)
	}
}

// bindConfigFlags binds the executing command's flags into viper. Binding
// happens at pre-run rather than init so that two commands defining the same
// keys do not shadow each other's flag values.
func bindConfigFlags(cmd *cobra.Command) error {
	for _, f := range stringFlags {
		if err := viper.BindPFlag(f.viperKey, cmd.Flags().Lookup(f.name)); err != nil {
			return err
		}
	}
	for _, f := range boolFlags {
		if err := viper.BindPFlag(f.viperKey, cmd.Flags().Lookup(f.name)); err != nil {
			return err
		}
	}
	for _, f := range intFlags {
		if err := viper.BindPFlag(f.viperKey, cmd.Flags().Lookup(f.name)); err != nil {
			return err
		}
	}
	for _, f := range uint64Flags {
		if err := viper.BindPFlag(f.viperKey, cmd.Flags().Lookup(f.name)); err != nil {
			return err
		}
	}

	return nil
}
