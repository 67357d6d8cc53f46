// Package pipeline implements the contract build-and-deploy pipeline: a
// build stage that turns a Solidity source file into a deployable artifact
// and a deploy stage that drives that artifact through an ordered list of
// chains, aborting on the first failure.
package pipeline

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/solforge/multideploy/configs"
)

type (
	// CompiledContract is the raw output of the compiler collaborator.
	CompiledContract struct {
		Name             string
		ABI              abi.ABI
		RawABI           string
		Bytecode         []byte
		DeployedBytecode []byte
	}

	// BuildInfo carries timing and settings metadata for one build.
	BuildInfo struct {
		Timestamp        time.Time
		Duration         time.Duration
		OptimizerEnabled bool
		EVMVersion       configs.EVMVersion
	}

	// BuildResult is the immutable artifact produced by the build stage.
	// The same artifact is deployed to every configured chain.
	BuildResult struct {
		ContractName     string
		ABI              abi.ABI
		RawABI           string
		Bytecode         []byte
		DeployedBytecode []byte
		Info             BuildInfo
	}

	// DeploymentResult records one successfully completed chain deployment.
	DeploymentResult struct {
		ChainID         uint64
		Address         common.Address
		TxHash          common.Hash
		Timestamp       time.Time
		VerificationURL string
		Duration        time.Duration
	}

	// DeployedContract is what the network collaborator reports back for a
	// submitted deployment transaction.
	DeployedContract struct {
		Address common.Address
		TxHash  common.Hash
	}

	// Identity is an opaque signing identity resolved by the network
	// collaborator. The pipeline only ever passes it back unchanged.
	Identity interface {
		Address() common.Address
	}

	// Compiler turns a source file into a compiled contract. Implementations
	// must be idempotent for an unchanged source.
	Compiler interface {
		Compile(ctx context.Context, path string) (*CompiledContract, error)
	}

	// EnvironmentValidator is an optional extension point a compiler may
	// implement to check its environment during builder initialization.
	EnvironmentValidator interface {
		ValidateEnvironment(ctx context.Context) error
	}

	// NetworkTarget connects to one chain at a time and performs the
	// connect/sign/deploy/verify sequence against it.
	NetworkTarget interface {
		Connect(ctx context.Context, rpcURL string) error
		SigningIdentity(ctx context.Context) (Identity, error)
		Deploy(ctx context.Context, artifact *BuildResult, identity Identity, constructorArgs ...any) (*DeployedContract, error)
		Verify(ctx context.Context, chain configs.ChainConfig, address common.Address, constructorArgs []any) (string, error)
	}

	// ArtifactProducer is the build stage as seen by the deployer.
	ArtifactProducer interface {
		Build(ctx context.Context, path string) (*BuildResult, error)
	}
)
