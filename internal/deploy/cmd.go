// Package deploy wires the build-and-deploy pipeline into the CLI.
package deploy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/solforge/multideploy/configs"
	"github.com/solforge/multideploy/internal/compiler"
	"github.com/solforge/multideploy/internal/logger"
	"github.com/solforge/multideploy/internal/network"
	"github.com/solforge/multideploy/internal/pipeline"
	"github.com/solforge/multideploy/internal/report"
)

var CMD = &cobra.Command{
	Use:   "deploy <contract.sol> [constructor args...]",
	Short: "Compile a contract and deploy it to every configured chain",
	Long:  "Compiles the given Solidity source once and deploys the resulting artifact to each configured chain in order, aborting on the first failure",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting deploy command. Validating config")

		if err := configs.Values.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		contractPath := args[0]

		ops := logger.NewOperationLogger(logger.Named("pipeline"))
		solc := compiler.NewSolc(configs.Values.Deployer.SolcPath, configs.Values.Build)

		builder := pipeline.NewContractBuilder(solc, configs.Values.Build, ops)
		if err := builder.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize builder: %w", err)
		}

		// Constructor arguments arrive as strings; a preliminary build
		// resolves the ABI so they can be converted to typed values.
		artifact, err := builder.Build(ctx, contractPath)
		if err != nil {
			return err
		}

		constructorArgs, err := ParseConstructorArgs(artifact.ABI, args[1:])
		if err != nil {
			return fmt.Errorf("failed to parse constructor arguments: %w", err)
		}

		target := network.NewEthTarget(configs.Values.Deployer)
		defer target.Close()

		deployer := pipeline.NewMultiChainDeployer(
			target,
			builder,
			configs.Values.Chains,
			ops,
			pipeline.NewLogProgress(logger.Named("progress")),
		)
		if err := deployer.Initialize(); err != nil {
			return err
		}

		results, err := deployer.DeployToChains(ctx, contractPath, constructorArgs)
		if err != nil {
			return fmt.Errorf("deployment failed: %w", err)
		}

		reportFile, err := cmd.Flags().GetString("report-file")
		if err != nil {
			return err
		}

		if err := report.NewGenerator(reportFile).Generate(artifact, configs.Values.Chains, results); err != nil {
			return fmt.Errorf("failed to write deployment report: %w", err)
		}

		slog.With("chains", len(results)).With("report", reportFile).Info("deployment completed successfully")

		return nil
	},
}

var CompileCMD = &cobra.Command{
	Use:   "compile <contract.sol>",
	Short: "Compile a contract and write its artifact JSON",
	Long:  "Compiles the given Solidity source and writes a contracts.json with the ABI, bytecodes and build metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting compile command. Validating build config")

		if err := configs.Values.Build.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()

		ops := logger.NewOperationLogger(logger.Named("pipeline"))
		solc := compiler.NewSolc(configs.Values.Deployer.SolcPath, configs.Values.Build)

		builder := pipeline.NewContractBuilder(solc, configs.Values.Build, ops)
		if err := builder.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize builder: %w", err)
		}

		artifact, err := builder.Build(ctx, args[0])
		if err != nil {
			return err
		}

		outputPath, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		if err := writeArtifactJSON(outputPath, artifact); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}

		slog.With("contract", artifact.ContractName).With("output", outputPath).Info("contract compiled successfully")

		return nil
	},
}

func init() {
	CMD.Flags().String("report-file", report.DefaultFileName, "Path of the deployment report to write")
	CompileCMD.Flags().String("output", "contracts.json", "Path of the artifact JSON to write")

	for _, cmd := range []*cobra.Command{CMD, CompileCMD} {
		defineConfigFlags(cmd)
		cmd.PreRunE = loadConfig
	}
}

// loadConfig folds the executing command's flags into viper and re-decodes
// the application config, so flag values override the config file.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := bindConfigFlags(cmd); err != nil {
		return err
	}
	return viper.Unmarshal(&configs.Values)
}

func writeArtifactJSON(path string, artifact *pipeline.BuildResult) error {
	payload := map[string]any{
		artifact.ContractName: map[string]any{
			"abi":         json.RawMessage(artifact.RawABI),
			"bytecode":    hexutil.Encode(artifact.Bytecode),
			"bin-runtime": hexutil.Encode(artifact.DeployedBytecode),
			"buildInfo": map[string]any{
				"timestamp":        artifact.Info.Timestamp,
				"duration":         artifact.Info.Duration.String(),
				"optimizerEnabled": artifact.Info.OptimizerEnabled,
				"evmVersion":       artifact.Info.EVMVersion,
			},
		},
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write artifact file: %w", err)
	}

	return nil
}
