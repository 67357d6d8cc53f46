package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/solforge/multideploy/configs"
	"github.com/solforge/multideploy/internal/logger"
)

// MultiChainDeployer drives a compiled artifact through an ordered list of
// chains. The artifact is built exactly once per DeployToChains call; chain
// attempts run sequentially in configured order and the first failure aborts
// all remaining chains. A deployer instance assumes at most one in-flight
// DeployToChains call at a time.
type MultiChainDeployer struct {
	target      NetworkTarget
	builder     ArtifactProducer
	chains      []configs.ChainConfig
	ops         *logger.OperationLogger
	progress    ProgressSink
	initialized bool
}

// NewMultiChainDeployer creates a deployer over the given ordered chain
// list. The list is read-only for the lifetime of the instance.
func NewMultiChainDeployer(
	target NetworkTarget,
	builder ArtifactProducer,
	chains []configs.ChainConfig,
	ops *logger.OperationLogger,
	progress ProgressSink,
) *MultiChainDeployer {
	return &MultiChainDeployer{
		target:   target,
		builder:  builder,
		chains:   chains,
		ops:      ops,
		progress: progress,
	}
}

// Initialize eagerly validates every configured chain before any network
// contact. The first invalid entry fails with InvalidChainConfigError and
// leaves the deployer unready. Calling Initialize on a ready deployer is a
// no-op.
func (d *MultiChainDeployer) Initialize() error {
	if d.initialized {
		return nil
	}

	for _, chain := range d.chains {
		if chain.RPCURL == "" {
			return &InvalidChainConfigError{Chain: chain.Name, Reason: "rpc url is required"}
		}
		if chain.ID == 0 {
			return &InvalidChainConfigError{Chain: chain.Name, Reason: "chain id is required"}
		}
	}

	d.initialized = true
	d.ops.Debug("multi-chain deployer initialized", "chains", len(d.chains))

	return nil
}

// DeployToChains builds the contract at contractPath once and deploys the
// resulting artifact to every configured chain in order. The returned list
// contains exactly one entry per chain, in configured order; on any failure
// the whole call fails and no partial list is returned.
func (d *MultiChainDeployer) DeployToChains(ctx context.Context, contractPath string, constructorArgs []any) ([]DeploymentResult, error) {
	return logger.Operation(ctx, d.ops, "deploy", "multi-chain-deploy", func(ctx context.Context) ([]DeploymentResult, error) {
		if !d.initialized {
			return nil, ErrNotInitialized
		}

		artifact, err := d.builder.Build(ctx, contractPath)
		if err != nil {
			return nil, err
		}

		// One equal increment per chain attempt, success or failure.
		increment := 100.0 / float64(len(d.chains))

		results := make([]DeploymentResult, 0, len(d.chains))
		for _, chain := range d.chains {
			result, err := d.deployToChain(ctx, chain, artifact, constructorArgs)
			if err != nil {
				d.progress.Report(fmt.Sprintf("deployment to %s failed", chain.Name), increment)
				return nil, &DeploymentFailedError{Chain: chain.Name, Err: err}
			}

			d.progress.Report(fmt.Sprintf("deployed %s to %s", artifact.ContractName, chain.Name), increment)
			results = append(results, *result)
		}

		return results, nil
	})
}

func (d *MultiChainDeployer) deployToChain(ctx context.Context, chain configs.ChainConfig, artifact *BuildResult, constructorArgs []any) (*DeploymentResult, error) {
	start := time.Now()

	d.ops.Info("deploying to chain", "chain", chain.Name, "chain_id", chain.ID, "rpc_url", chain.RPCURL)

	if err := d.target.Connect(ctx, chain.RPCURL); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", chain.RPCURL, err)
	}

	identity, err := d.target.SigningIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signing identity: %w", err)
	}

	deployed, err := d.target.Deploy(ctx, artifact, identity, constructorArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", artifact.ContractName, err)
	}

	var verificationURL string
	if chain.Verify {
		verificationURL, err = d.target.Verify(ctx, chain, deployed.Address, constructorArgs)
		if err != nil {
			return nil, fmt.Errorf("failed to verify %s: %w", deployed.Address.Hex(), err)
		}
	}

	result := &DeploymentResult{
		ChainID:         chain.ID,
		Address:         deployed.Address,
		TxHash:          deployed.TxHash,
		Timestamp:       time.Now(),
		VerificationURL: verificationURL,
		Duration:        time.Since(start),
	}

	d.ops.Info("deployed",
		"chain", chain.Name,
		"address", result.Address.Hex(),
		"tx_hash", result.TxHash.Hex(),
		"elapsed", result.Duration.String())

	return result, nil
}
