// Package network implements the NetworkTarget collaborator on top of
// go-ethereum: dialing chain RPCs, signing with a configured key, submitting
// deployment transactions and requesting explorer verification.
package network

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/solforge/multideploy/configs"
	"github.com/solforge/multideploy/internal/logger"
	"github.com/solforge/multideploy/internal/pipeline"
)

// EthTarget is the go-ethereum backed pipeline.NetworkTarget. Connect binds
// it to one chain at a time; the deployer drives chains strictly one after
// another, so a single instance serves the whole batch.
type EthTarget struct {
	cfg      configs.Deployer
	verifier *Verifier
	logger   *slog.Logger

	client  *ethclient.Client
	chainID *big.Int
}

// NewEthTarget creates a target using the deployer settings (signing key,
// gas limit, receipt policy).
func NewEthTarget(cfg configs.Deployer) *EthTarget {
	return &EthTarget{
		cfg:      cfg,
		verifier: NewVerifier(),
		logger:   logger.Named("network_target"),
	}
}

// Connect dials the chain RPC and fetches its chain id. A previous
// connection is closed first.
func (t *EthTarget) Connect(ctx context.Context, rpcURL string) error {
	if t.client != nil {
		t.client.Close()
		t.client, t.chainID = nil, nil
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to get chain ID from %s: %w", rpcURL, err)
	}

	t.logger.
		With("rpc_url", rpcURL).
		With("chain_id", chainID).
		Debug("connected to chain")

	t.client = client
	t.chainID = chainID

	return nil
}

type signingIdentity struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func (s *signingIdentity) Address() common.Address {
	return s.address
}

// SigningIdentity derives the deploying identity from the configured
// private key.
func (t *EthTarget) SigningIdentity(_ context.Context) (pipeline.Identity, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(t.cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	pubKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to cast public key to ECDSA")
	}

	return &signingIdentity{
		key:     key,
		address: crypto.PubkeyToAddress(*pubKey),
	}, nil
}

// Deploy submits the artifact's deployment transaction on the connected
// chain and optionally waits for its receipt.
func (t *EthTarget) Deploy(ctx context.Context, artifact *pipeline.BuildResult, identity pipeline.Identity, constructorArgs ...any) (*pipeline.DeployedContract, error) {
	if t.client == nil {
		return nil, fmt.Errorf("not connected to a chain")
	}

	ident, ok := identity.(*signingIdentity)
	if !ok {
		return nil, fmt.Errorf("unsupported signing identity type %T", identity)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(ident.key, t.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	gasPrice, err := t.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	auth.Context = ctx
	auth.GasLimit = t.cfg.GasLimit
	auth.GasPrice = gasPrice

	address, tx, _, err := bind.DeployContract(auth, artifact.ABI, artifact.Bytecode, t.client, constructorArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy contract: %w", err)
	}

	t.logger.
		With("address", address.Hex()).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract deployment transaction sent")

	if t.cfg.WaitForReceipt {
		receipt, err := bind.WaitMined(ctx, t.client, tx)
		if err != nil {
			return nil, fmt.Errorf("failed to wait for transaction: %w", err)
		}

		if receipt.Status != types.ReceiptStatusSuccessful {
			return nil, fmt.Errorf("contract deployment failed with status %d", receipt.Status)
		}
	}

	return &pipeline.DeployedContract{
		Address: address,
		TxHash:  tx.Hash(),
	}, nil
}

// Verify submits the deployed address to the chain's explorer API and
// returns the explorer URL of the verified contract.
func (t *EthTarget) Verify(ctx context.Context, chain configs.ChainConfig, address common.Address, constructorArgs []any) (string, error) {
	return t.verifier.Submit(ctx, chain, address, constructorArgs)
}

// Close releases the current chain connection, if any.
func (t *EthTarget) Close() {
	if t.client != nil {
		t.client.Close()
		t.client, t.chainID = nil, nil
	}
}
