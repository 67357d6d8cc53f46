package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/solforge/multideploy/configs"
	"github.com/solforge/multideploy/internal/logger"
)

const sourceExtension = ".sol"

// ContractBuilder validates build preconditions, invokes the compiler
// collaborator and produces a normalized BuildResult with timing metadata.
type ContractBuilder struct {
	compiler    Compiler
	cfg         configs.Build
	ops         *logger.OperationLogger
	initialized bool
}

// NewContractBuilder creates a builder around the given compiler. A zero
// build configuration is replaced with the built-in defaults.
func NewContractBuilder(compiler Compiler, cfg configs.Build, ops *logger.OperationLogger) *ContractBuilder {
	if cfg == (configs.Build{}) {
		cfg = configs.DefaultBuild()
	}

	return &ContractBuilder{
		compiler: compiler,
		cfg:      cfg,
		ops:      ops,
	}
}

// Initialize validates the build environment and marks the builder ready.
// On validation failure the builder stays unready and every Build call
// fails with ErrNotInitialized. Calling Initialize on a ready builder is a
// no-op.
func (b *ContractBuilder) Initialize(ctx context.Context) error {
	if b.initialized {
		return nil
	}

	if v, ok := b.compiler.(EnvironmentValidator); ok {
		if err := v.ValidateEnvironment(ctx); err != nil {
			return &InitializationError{Err: err}
		}
	}

	b.initialized = true
	b.ops.Debug("contract builder initialized")

	return nil
}

// Build compiles the contract at path and assembles a BuildResult. The
// measured duration covers the compiler invocation only. A compiler failure
// is re-signaled as BuildFailedError; no partial result is produced.
func (b *ContractBuilder) Build(ctx context.Context, path string) (*BuildResult, error) {
	return logger.Operation(ctx, b.ops, "build", "contract-build", func(ctx context.Context) (*BuildResult, error) {
		if !b.initialized {
			return nil, ErrNotInitialized
		}

		if filepath.Ext(path) != sourceExtension {
			return nil, &InvalidInputError{
				Path:   path,
				Reason: fmt.Sprintf("source file must have the '%s' extension", sourceExtension),
			}
		}

		start := time.Now()
		compiled, err := b.compiler.Compile(ctx, path)
		duration := time.Since(start)
		if err != nil {
			return nil, &BuildFailedError{Path: path, Err: err}
		}

		b.ops.Info("contract compiled",
			"contract", compiled.Name,
			"bytecode_len", len(compiled.Bytecode),
			"elapsed", duration.String())

		return &BuildResult{
			ContractName:     compiled.Name,
			ABI:              compiled.ABI,
			RawABI:           compiled.RawABI,
			Bytecode:         compiled.Bytecode,
			DeployedBytecode: compiled.DeployedBytecode,
			Info: BuildInfo{
				Timestamp:        start,
				Duration:         duration,
				OptimizerEnabled: b.cfg.Optimizer.Enabled,
				EVMVersion:       b.cfg.EVMVersion,
			},
		}, nil
	})
}
