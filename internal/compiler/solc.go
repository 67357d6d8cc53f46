// Package compiler provides the solc-backed compiler collaborator for the
// build stage.
package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/solforge/multideploy/configs"
	"github.com/solforge/multideploy/internal/logger"
	"github.com/solforge/multideploy/internal/pipeline"
)

// Solc compiles Solidity sources by shelling out to the solc binary.
type Solc struct {
	binary string
	cfg    configs.Build
	logger *slog.Logger
}

// NewSolc creates a compiler around the given solc binary path. An empty
// path resolves to "solc" on PATH.
func NewSolc(binary string, cfg configs.Build) *Solc {
	if binary == "" {
		binary = "solc"
	}

	return &Solc{
		binary: binary,
		cfg:    cfg,
		logger: logger.Named("solc_compiler"),
	}
}

// ValidateEnvironment checks that the solc binary is resolvable. The builder
// calls this during initialization.
func (s *Solc) ValidateEnvironment(_ context.Context) error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return fmt.Errorf("solc binary not found: %w", err)
	}
	return nil
}

// Compile runs solc on the given source file and parses its combined-json
// output into a compiled contract.
func (s *Solc) Compile(ctx context.Context, path string) (*pipeline.CompiledContract, error) {
	args := s.buildArgs(path)

	s.logger.
		With("path", path).
		With("args", strings.Join(args, " ")).
		Info("compiling contract")

	cmd := exec.CommandContext(ctx, s.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("solc failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to run solc: %w", err)
	}

	contract, err := parseCombinedJSON(output, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse solc output for %s: %w", path, err)
	}

	s.logger.
		With("contract", contract.Name).
		Info("contract compiled")

	return contract, nil
}

func (s *Solc) buildArgs(path string) []string {
	args := []string{"--combined-json", "abi,bin,bin-runtime"}

	if s.cfg.EVMVersion != "" {
		args = append(args, "--evm-version", string(s.cfg.EVMVersion))
	}
	if s.cfg.Optimizer.Enabled {
		args = append(args, "--optimize", "--optimize-runs", strconv.Itoa(s.cfg.Optimizer.Runs))
	}
	if s.cfg.Metadata.BytecodeHash != "" {
		args = append(args, "--metadata-hash", string(s.cfg.Metadata.BytecodeHash))
	}
	if s.cfg.Metadata.UseLiteralContent {
		args = append(args, "--metadata-literal")
	}

	return append(args, path)
}

type combinedOutput struct {
	Contracts map[string]combinedContract `json:"contracts"`
	Version   string                      `json:"version"`
}

type combinedContract struct {
	ABI        json.RawMessage `json:"abi"`
	Bin        string          `json:"bin"`
	BinRuntime string          `json:"bin-runtime"`
}

// parseCombinedJSON extracts the contract defined in sourcePath from solc's
// combined-json output. Keys are "<source>:<ContractName>"; when the source
// defines several contracts the one named after the file wins.
func parseCombinedJSON(data []byte, sourcePath string) (*pipeline.CompiledContract, error) {
	var out combinedOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode combined json: %w", err)
	}

	if len(out.Contracts) == 0 {
		return nil, errors.New("no contracts in compiler output")
	}

	// Imported sources show up in the output too; only contracts defined in
	// the requested file are deployment candidates.
	candidates := make(map[string]combinedContract)
	for key, contract := range out.Contracts {
		source, name, ok := strings.Cut(key, ":")
		if !ok {
			continue
		}
		if filepath.Clean(source) == filepath.Clean(sourcePath) {
			candidates[name] = contract
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no contract found for source %s", sourcePath)
	}

	baseName := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))

	var (
		name     string
		selected combinedContract
	)
	switch {
	case len(candidates) == 1:
		for n, c := range candidates {
			name, selected = n, c
		}
	default:
		// Several contracts in one file: the one named after the file wins.
		c, ok := candidates[baseName]
		if !ok {
			return nil, fmt.Errorf("source %s defines %d contracts and none is named %s", sourcePath, len(candidates), baseName)
		}
		name, selected = baseName, c
	}

	rawABI, err := normalizeABI(selected.ABI)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize ABI: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	if selected.Bin == "" {
		return nil, fmt.Errorf("contract %s has no deployable bytecode", name)
	}

	return &pipeline.CompiledContract{
		Name:             name,
		ABI:              parsedABI,
		RawABI:           rawABI,
		Bytecode:         common.Hex2Bytes(strings.TrimPrefix(selected.Bin, "0x")),
		DeployedBytecode: common.Hex2Bytes(strings.TrimPrefix(selected.BinRuntime, "0x")),
	}, nil
}

// normalizeABI handles both modern solc (JSON array) and legacy solc
// (JSON-encoded string) combined-json ABI fields.
func normalizeABI(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", errors.New("empty ABI")
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return "", err
		}
		return inner, nil
	}

	return trimmed, nil
}
