package pipeline

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a build or deploy is attempted on an
// instance whose Initialize has not completed successfully.
var ErrNotInitialized = errors.New("pipeline: instance is not initialized")

type (
	// InitializationError wraps a failure of the environment validation that
	// runs during Initialize. The instance stays unready.
	InitializationError struct {
		Err error
	}

	// InvalidInputError reports caller-supplied input rejected before any
	// collaborator was invoked.
	InvalidInputError struct {
		Path   string
		Reason string
	}

	// InvalidChainConfigError reports the first chain configuration that
	// failed eager validation.
	InvalidChainConfigError struct {
		Chain  string
		Reason string
	}

	// BuildFailedError wraps a compiler-reported failure.
	BuildFailedError struct {
		Path string
		Err  error
	}

	// DeploymentFailedError reports the chain whose deployment attempt
	// failed and aborted the batch.
	DeploymentFailedError struct {
		Chain string
		Err   error
	}
)

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed: %s", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input '%s': %s", e.Path, e.Reason)
}

func (e *InvalidChainConfigError) Error() string {
	return fmt.Sprintf("invalid chain config '%s': %s", e.Chain, e.Reason)
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("build failed for '%s': %s", e.Path, e.Err)
}

func (e *BuildFailedError) Unwrap() error { return e.Err }

func (e *DeploymentFailedError) Error() string {
	return fmt.Sprintf("deployment to '%s' failed: %s", e.Chain, e.Err)
}

func (e *DeploymentFailedError) Unwrap() error { return e.Err }
