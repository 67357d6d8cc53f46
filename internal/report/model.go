package report

import "time"

type (
	Model struct {
		Contract    Contract     `yaml:"contract"`
		Deployments []Deployment `yaml:"deployments"`
	}

	Contract struct {
		Name             string    `yaml:"name"`
		EVMVersion       string    `yaml:"evm-version"`
		OptimizerEnabled bool      `yaml:"optimizer-enabled"`
		BuiltAt          time.Time `yaml:"built-at"`
		BuildDuration    string    `yaml:"build-duration"`
	}

	Deployment struct {
		Chain           string    `yaml:"chain"`
		ChainID         uint64    `yaml:"chain-id"`
		Address         string    `yaml:"address"`
		TxHash          string    `yaml:"tx-hash"`
		DeployedAt      time.Time `yaml:"deployed-at"`
		Duration        string    `yaml:"duration"`
		VerificationURL string    `yaml:"verification-url,omitempty"`
	}
)
