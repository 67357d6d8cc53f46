// Package report writes the operator-facing deployment report produced
// after a successful multi-chain deployment.
package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solforge/multideploy/configs"
	"github.com/solforge/multideploy/internal/pipeline"
)

const DefaultFileName = "deployments.yaml"

type Generator struct {
	path string
}

// NewGenerator creates a generator writing to path; an empty path uses
// DefaultFileName in the working directory.
func NewGenerator(path string) *Generator {
	if path == "" {
		path = DefaultFileName
	}
	return &Generator{path: path}
}

// Generate renders one report for a completed deployment run. The results
// list is ordered identically to the configured chains, so names are joined
// by index.
func (g *Generator) Generate(build *pipeline.BuildResult, chains []configs.ChainConfig, results []pipeline.DeploymentResult) error {
	if len(chains) != len(results) {
		return fmt.Errorf("chain list and result list differ in length: %d vs %d", len(chains), len(results))
	}

	model := &Model{
		Contract: Contract{
			Name:             build.ContractName,
			EVMVersion:       string(build.Info.EVMVersion),
			OptimizerEnabled: build.Info.OptimizerEnabled,
			BuiltAt:          build.Info.Timestamp,
			BuildDuration:    build.Info.Duration.String(),
		},
	}

	for i, result := range results {
		model.Deployments = append(model.Deployments, Deployment{
			Chain:           chains[i].Name,
			ChainID:         result.ChainID,
			Address:         result.Address.Hex(),
			TxHash:          result.TxHash.Hex(),
			DeployedAt:      result.Timestamp,
			Duration:        result.Duration.String(),
			VerificationURL: result.VerificationURL,
		})
	}

	data, err := yaml.Marshal(model)
	if err != nil {
		return fmt.Errorf("could not marshal report model. Err: '%w'", err)
	}

	if err := os.WriteFile(g.path, data, 0644); err != nil {
		return fmt.Errorf("could not write report file. Err: '%w'", err)
	}

	return nil
}
