package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solforge/multideploy/configs"
)

type fakeIdentity struct {
	addr common.Address
}

func (f fakeIdentity) Address() common.Address { return f.addr }

// fakeTarget scripts per-RPC behavior and records the call sequence.
type fakeTarget struct {
	connectErr map[string]error
	deployErr  map[string]error
	verifyErr  map[string]error
	addresses  map[string]common.Address
	verifyURLs map[string]string

	current   string
	connected []string
	deployed  []string
	verified  []string
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		connectErr: map[string]error{},
		deployErr:  map[string]error{},
		verifyErr:  map[string]error{},
		addresses:  map[string]common.Address{},
		verifyURLs: map[string]string{},
	}
}

func (f *fakeTarget) Connect(_ context.Context, rpcURL string) error {
	f.connected = append(f.connected, rpcURL)
	if err := f.connectErr[rpcURL]; err != nil {
		return err
	}
	f.current = rpcURL
	return nil
}

func (f *fakeTarget) SigningIdentity(_ context.Context) (Identity, error) {
	return fakeIdentity{addr: common.HexToAddress("0x1111111111111111111111111111111111111111")}, nil
}

func (f *fakeTarget) Deploy(_ context.Context, _ *BuildResult, _ Identity, _ ...any) (*DeployedContract, error) {
	f.deployed = append(f.deployed, f.current)
	if err := f.deployErr[f.current]; err != nil {
		return nil, err
	}
	return &DeployedContract{
		Address: f.addresses[f.current],
		TxHash:  common.HexToHash(fmt.Sprintf("0x%x", len(f.deployed))),
	}, nil
}

func (f *fakeTarget) Verify(_ context.Context, _ configs.ChainConfig, _ common.Address, _ []any) (string, error) {
	f.verified = append(f.verified, f.current)
	if err := f.verifyErr[f.current]; err != nil {
		return "", err
	}
	return f.verifyURLs[f.current], nil
}

type fakeProducer struct {
	artifact *BuildResult
	err      error
	calls    int
}

func (f *fakeProducer) Build(_ context.Context, _ string) (*BuildResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.artifact, nil
}

type progressReport struct {
	message   string
	increment float64
}

type recordingProgress struct {
	reports []progressReport
}

func (r *recordingProgress) Report(message string, increment float64) {
	r.reports = append(r.reports, progressReport{message: message, increment: increment})
}

func testArtifact(t *testing.T) *BuildResult {
	t.Helper()

	compiled := testCompiled(t)
	return &BuildResult{
		ContractName:     compiled.Name,
		ABI:              compiled.ABI,
		RawABI:           compiled.RawABI,
		Bytecode:         compiled.Bytecode,
		DeployedBytecode: compiled.DeployedBytecode,
	}
}

func testChains() []configs.ChainConfig {
	return []configs.ChainConfig{
		{ID: 1, Name: "A", RPCURL: "http://a:8545"},
		{ID: 2, Name: "B", RPCURL: "http://b:8545", Verify: true, ExplorerURL: "https://explorer", ExplorerAPIURL: "https://explorer/api"},
	}
}

func newTestDeployer(t *testing.T, target NetworkTarget, producer ArtifactProducer, chains []configs.ChainConfig) (*MultiChainDeployer, *recordingProgress) {
	t.Helper()

	progress := &recordingProgress{}
	return NewMultiChainDeployer(target, producer, chains, testOps(), progress), progress
}

func TestMultiChainDeployer_DeployRequiresInitialize(t *testing.T) {
	deployer, _ := newTestDeployer(t, newFakeTarget(), &fakeProducer{artifact: testArtifact(t)}, testChains())

	_, err := deployer.DeployToChains(context.Background(), "Token.sol", nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestMultiChainDeployer_InitializeValidation(t *testing.T) {
	tests := []struct {
		name   string
		chains []configs.ChainConfig
		chain  string
	}{
		{
			name: "missing rpc url",
			chains: []configs.ChainConfig{
				{ID: 1, Name: "A", RPCURL: "http://a:8545"},
				{ID: 2, Name: "B"},
			},
			chain: "B",
		},
		{
			name: "missing chain id",
			chains: []configs.ChainConfig{
				{Name: "A", RPCURL: "http://a:8545"},
			},
			chain: "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newFakeTarget()
			deployer, _ := newTestDeployer(t, target, &fakeProducer{artifact: testArtifact(t)}, tt.chains)

			err := deployer.Initialize()

			var cfgErr *InvalidChainConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.chain, cfgErr.Chain)
			assert.Empty(t, target.connected, "validation must not contact the network")

			// The instance stays unready.
			_, err = deployer.DeployToChains(context.Background(), "Token.sol", nil)
			assert.ErrorIs(t, err, ErrNotInitialized)
		})
	}
}

func TestMultiChainDeployer_AllChainsSucceed(t *testing.T) {
	target := newFakeTarget()
	target.addresses["http://a:8545"] = common.HexToAddress("0xA")
	target.addresses["http://b:8545"] = common.HexToAddress("0xB")
	target.verifyURLs["http://b:8545"] = "https://explorer/0xB"

	producer := &fakeProducer{artifact: testArtifact(t)}
	deployer, progress := newTestDeployer(t, target, producer, testChains())
	require.NoError(t, deployer.Initialize())

	results, err := deployer.DeployToChains(context.Background(), "Token.sol", nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, uint64(1), results[0].ChainID)
	assert.Equal(t, common.HexToAddress("0xA"), results[0].Address)
	assert.Empty(t, results[0].VerificationURL)
	assert.Equal(t, uint64(2), results[1].ChainID)
	assert.Equal(t, common.HexToAddress("0xB"), results[1].Address)
	assert.Equal(t, "https://explorer/0xB", results[1].VerificationURL)

	for _, result := range results {
		assert.False(t, result.Timestamp.IsZero())
		assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
	}

	assert.Equal(t, 1, producer.calls, "compilation must happen exactly once per call")
	assert.Equal(t, []string{"http://a:8545", "http://b:8545"}, target.connected)
	assert.Equal(t, []string{"http://b:8545"}, target.verified, "only chains requesting verification are verified")
	assert.Len(t, progress.reports, 2)
}

func TestMultiChainDeployer_FirstFailureAbortsRemaining(t *testing.T) {
	chains := []configs.ChainConfig{
		{ID: 1, Name: "A", RPCURL: "http://a:8545"},
		{ID: 2, Name: "B", RPCURL: "http://b:8545"},
		{ID: 3, Name: "C", RPCURL: "http://c:8545"},
	}

	cause := errors.New("insufficient funds")
	target := newFakeTarget()
	target.deployErr["http://b:8545"] = cause

	deployer, progress := newTestDeployer(t, target, &fakeProducer{artifact: testArtifact(t)}, chains)
	require.NoError(t, deployer.Initialize())

	results, err := deployer.DeployToChains(context.Background(), "Token.sol", nil)
	require.Nil(t, results, "no partial result list is returned")

	var deployErr *DeploymentFailedError
	require.ErrorAs(t, err, &deployErr)
	assert.Equal(t, "B", deployErr.Chain)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, []string{"http://a:8545", "http://b:8545"}, target.connected, "chains after the failing one are never attempted")
	assert.Len(t, progress.reports, 2, "the failing attempt still advances progress")
}

func TestMultiChainDeployer_ConnectFailureAbortsChain(t *testing.T) {
	cause := errors.New("connection refused")
	target := newFakeTarget()
	target.connectErr["http://a:8545"] = cause

	deployer, _ := newTestDeployer(t, target, &fakeProducer{artifact: testArtifact(t)}, testChains())
	require.NoError(t, deployer.Initialize())

	_, err := deployer.DeployToChains(context.Background(), "Token.sol", nil)

	var deployErr *DeploymentFailedError
	require.ErrorAs(t, err, &deployErr)
	assert.Equal(t, "A", deployErr.Chain)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, target.deployed)
}

func TestMultiChainDeployer_VerificationFailureAbortsBatch(t *testing.T) {
	cause := errors.New("explorer rejected source")
	target := newFakeTarget()
	target.verifyErr["http://b:8545"] = cause

	deployer, _ := newTestDeployer(t, target, &fakeProducer{artifact: testArtifact(t)}, testChains())
	require.NoError(t, deployer.Initialize())

	results, err := deployer.DeployToChains(context.Background(), "Token.sol", nil)
	require.Nil(t, results)

	var deployErr *DeploymentFailedError
	require.ErrorAs(t, err, &deployErr)
	assert.Equal(t, "B", deployErr.Chain)
	assert.ErrorIs(t, err, cause)
}

func TestMultiChainDeployer_BuildFailurePropagates(t *testing.T) {
	cause := &BuildFailedError{Path: "Token.sol", Err: errors.New("boom")}
	target := newFakeTarget()

	deployer, progress := newTestDeployer(t, target, &fakeProducer{err: cause}, testChains())
	require.NoError(t, deployer.Initialize())

	_, err := deployer.DeployToChains(context.Background(), "Token.sol", nil)
	require.Error(t, err)

	var buildErr *BuildFailedError
	assert.ErrorAs(t, err, &buildErr)
	assert.Empty(t, target.connected, "no chain is attempted when the build fails")
	assert.Empty(t, progress.reports)
}

func TestMultiChainDeployer_ProgressIncrementsSumToTotal(t *testing.T) {
	chains := make([]configs.ChainConfig, 0, 4)
	target := newFakeTarget()
	for i := 1; i <= 4; i++ {
		rpc := fmt.Sprintf("http://chain-%d:8545", i)
		chains = append(chains, configs.ChainConfig{ID: uint64(i), Name: fmt.Sprintf("chain-%d", i), RPCURL: rpc})
		target.addresses[rpc] = common.HexToAddress(fmt.Sprintf("0x%d", i))
	}

	deployer, progress := newTestDeployer(t, target, &fakeProducer{artifact: testArtifact(t)}, chains)
	require.NoError(t, deployer.Initialize())

	_, err := deployer.DeployToChains(context.Background(), "Token.sol", nil)
	require.NoError(t, err)

	require.Len(t, progress.reports, 4)

	var total float64
	for _, r := range progress.reports {
		assert.InDelta(t, 25.0, r.increment, 1e-9)
		total += r.increment
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestMultiChainDeployer_ReadyIsReusable(t *testing.T) {
	target := newFakeTarget()
	target.addresses["http://a:8545"] = common.HexToAddress("0xA")
	target.addresses["http://b:8545"] = common.HexToAddress("0xB")

	chains := []configs.ChainConfig{
		{ID: 1, Name: "A", RPCURL: "http://a:8545"},
		{ID: 2, Name: "B", RPCURL: "http://b:8545"},
	}

	producer := &fakeProducer{artifact: testArtifact(t)}
	deployer, _ := newTestDeployer(t, target, producer, chains)
	require.NoError(t, deployer.Initialize())

	for i := 0; i < 2; i++ {
		results, err := deployer.DeployToChains(context.Background(), "Token.sol", nil)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	}

	assert.Equal(t, 2, producer.calls, "each call compiles once")
}
