package network

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/solforge/multideploy/configs"
	"github.com/solforge/multideploy/internal/logger"
)

// Verifier registers deployed contracts with an Etherscan-style explorer
// API and reports back the explorer URL of the verified contract.
type Verifier struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewVerifier creates a verifier with a bounded HTTP client.
func NewVerifier() *Verifier {
	return &Verifier{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Named("contract_verifier"),
	}
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// Submit posts the verification request for address to the chain's explorer
// API. The explorer's status field is "1" on acceptance.
func (v *Verifier) Submit(ctx context.Context, chain configs.ChainConfig, address common.Address, constructorArgs []any) (string, error) {
	if chain.ExplorerAPIURL == "" {
		return "", fmt.Errorf("chain %s has no explorer api url", chain.Name)
	}

	form := url.Values{}
	form.Set("module", "contract")
	form.Set("action", "verifysourcecode")
	form.Set("chainid", strconv.FormatUint(chain.ID, 10))
	form.Set("contractaddress", address.Hex())
	if len(constructorArgs) > 0 {
		form.Set("constructorArguments", encodeConstructorArgs(constructorArgs))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chain.ExplorerAPIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	v.logger.
		With("chain", chain.Name).
		With("address", address.Hex()).
		Info("submitting verification request")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("explorer returned status %d", resp.StatusCode)
	}

	var decoded verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode verification response: %w", err)
	}

	if decoded.Status != "1" {
		return "", fmt.Errorf("verification rejected: %s", decoded.Result)
	}

	verifiedURL := contractURL(chain.ExplorerURL, address)

	v.logger.
		With("chain", chain.Name).
		With("url", verifiedURL).
		Info("contract verified")

	return verifiedURL, nil
}

func contractURL(explorerURL string, address common.Address) string {
	return fmt.Sprintf("%s/address/%s#code", strings.TrimSuffix(explorerURL, "/"), address.Hex())
}

func encodeConstructorArgs(args []any) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, fmt.Sprintf("%v", arg))
	}
	return strings.Join(parts, ",")
}
