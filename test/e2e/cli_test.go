package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/tokenctl/internal/units"
	"github.com/Mohsinsiddi/tokenctl/test/fixtures"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "tokenctl-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "tokenctl")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func command(configDir, stdin string, args ...string) *exec.Cmd {
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = configDir
	cmd.Env = append(os.Environ(),
		"TOKENCTL_CONFIG_DIR="+configDir,
		"TOKENCTL_KEYRING_PASSWORD=e2e-secret",
		"TOKENCTL_NETWORK=",
		"TOKENCTL_RPC_URL=",
		"TOKENCTL_DEFAULT_WALLET=",
	)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	out, err := command(configDir, "", args...).CombinedOutput()
	return string(out), err
}

func runWithInput(t *testing.T, configDir, stdin string, args ...string) (string, error) {
	t.Helper()
	out, err := command(configDir, stdin, args...).CombinedOutput()
	return string(out), err
}

func addWallets(t *testing.T, dir string) {
	t.Helper()
	for _, a := range []fixtures.Account{fixtures.Owner, fixtures.Holder} {
		out, err := runCLI(t, dir, "wallet", "add", a.Name, "--key", a.Key)
		require.NoError(t, err, out)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "tokenctl")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--help")
	require.NoError(t, err)
	for _, c := range []string{"info", "transfer", "burn", "mint", "dashboard", "wallet", "network", "config", "convert"} {
		assert.Contains(t, out, c)
	}
	assert.Contains(t, out, "--rpc")
	assert.Contains(t, out, "--wallet")
}

func TestUnknownCommandShowsError(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "unknowncommand")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(out), "unknown command")
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "convert", "1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "1500000000000000000")

	out, err = runCLI(t, dir, "convert", "--from-base", "2500000000000000000")
	require.NoError(t, err)
	assert.Contains(t, out, "2.5")

	_, err = runCLI(t, dir, "convert", "1e18")
	assert.Error(t, err)
}

func TestNetworkList(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "network", "list")
	require.NoError(t, err)
	for _, n := range []string{"sepolia", "holesky", "ethereum", "localhost"} {
		assert.Contains(t, out, n)
	}
}

func TestNetworkUse(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "use", "sepolia")
	require.NoError(t, err)
	assert.Contains(t, out, "Sepolia")

	cfgOut, err := runCLI(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, cfgOut, `"network": "sepolia"`)
}

func TestNetworkUseUnknown(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "network", "use", "unknownchain99")
	assert.Error(t, err)
}

func TestConfigShowAndSet(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "rpc_algorithm")
	assert.Contains(t, out, "confirm_timeout")

	_, err = runCLI(t, dir, "config", "set", "rpc_algorithm", "failover")
	require.NoError(t, err)
	out, _ = runCLI(t, dir, "config", "show")
	assert.Contains(t, out, `"rpc_algorithm": "failover"`)

	_, err = runCLI(t, dir, "config", "set", "rpc_algorithm", "round-robin")
	assert.Error(t, err)
	_, err = runCLI(t, dir, "config", "set", "no_such_key", "x")
	assert.Error(t, err)
}

func TestConfigShowReflectsEnv(t *testing.T) {
	dir := t.TempDir()
	cmd := command(dir, "", "config", "show")
	cmd.Env = append(cmd.Env, "TOKENCTL_LOG_LEVEL=debug")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"log_level": "debug"`)
}

func TestWalletAddListUseRemove(t *testing.T) {
	dir := t.TempDir()
	addWallets(t, dir)

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "owner")
	assert.Contains(t, out, "holder")
	assert.Contains(t, out, fixtures.Owner.Address.Hex())
	assert.NotContains(t, out, strings.TrimPrefix(fixtures.Owner.Key, "0x"), "keys never reach wallets.json or output")

	_, err = runCLI(t, dir, "wallet", "use", "holder")
	require.NoError(t, err)
	cfgOut, _ := runCLI(t, dir, "config", "show")
	assert.Contains(t, cfgOut, `"default_wallet": "holder"`)

	_, err = runCLI(t, dir, "wallet", "remove", "holder", "--force")
	require.NoError(t, err)
	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "holder")
	cfgOut, _ = runCLI(t, dir, "config", "show")
	assert.Contains(t, cfgOut, `"default_wallet": ""`)
}

func TestWalletRemoveDeclined(t *testing.T) {
	dir := t.TempDir()
	addWallets(t, dir)

	out, err := runWithInput(t, dir, "n\n", "wallet", "remove", "holder")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, _ = runCLI(t, dir, "wallet", "list")
	assert.Contains(t, out, "holder")
}

func TestWalletAddRejectsBadKey(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "wallet", "add", "bad", "--key", "0x1234")
	assert.Error(t, err)
}

func TestInfoWithoutWallet(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "info")
	assert.Error(t, err)
	assert.Contains(t, out, "[ProviderUnavailable]")
	assert.Contains(t, out, "wallet add")
}

// --- against a simulated node ---

func startNode(t *testing.T) (*fixtures.TokenChain, string) {
	t.Helper()
	v, err := units.ToBaseUnits("1000")
	require.NoError(t, err)
	sim := fixtures.NewTokenChain(fixtures.Owner.Address, v)
	return sim, fixtures.Serve(t, sim).URL
}

func TestInfoAgainstNode(t *testing.T) {
	dir := t.TempDir()
	addWallets(t, dir)
	_, url := startNode(t)

	out, err := runCLI(t, dir, "--rpc", url, "info")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ReveCoin")
	assert.Contains(t, out, "REVE")
	assert.Contains(t, out, "1000.0")
	assert.Contains(t, out, "owner (burn and mint enabled)")

	out, err = runCLI(t, dir, "--rpc", url, "--wallet", "holder", "info")
	require.NoError(t, err, out)
	assert.Contains(t, out, "holder")
	assert.NotContains(t, out, "burn and mint enabled")
}

func TestTransferAgainstNode(t *testing.T) {
	dir := t.TempDir()
	addWallets(t, dir)
	sim, url := startNode(t)

	out, err := runCLI(t, dir, "--rpc", url, "transfer",
		"--to", fixtures.Holder.Address.Hex(), "--amount", "1.5", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "confirmed")
	assert.Equal(t, "1.5", units.ToDecimal(sim.Balance(fixtures.Holder.Address)))
}

func TestTransferDeclinedAtPrompt(t *testing.T) {
	dir := t.TempDir()
	addWallets(t, dir)
	sim, url := startNode(t)

	out, err := runWithInput(t, dir, "n\n", "--rpc", url, "transfer",
		"--to", fixtures.Holder.Address.Hex(), "--amount", "1")
	assert.Error(t, err)
	assert.Contains(t, out, "[UserRejected]")
	assert.Empty(t, sim.Sent())
}

func TestBurnAndMintAgainstNode(t *testing.T) {
	dir := t.TempDir()
	addWallets(t, dir)
	sim, url := startNode(t)

	out, err := runCLI(t, dir, "--rpc", url, "burn", "--amount", "100", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Total supply")
	assert.Contains(t, out, "900.0")

	out, err = runCLI(t, dir, "--rpc", url, "mint", "--amount", "50", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "950.0")
	assert.Equal(t, "950.0", units.ToDecimal(sim.Supply()))
}

func TestHolderCannotBurn(t *testing.T) {
	dir := t.TempDir()
	addWallets(t, dir)
	sim, url := startNode(t)

	out, err := runCLI(t, dir, "--rpc", url, "--wallet", "holder", "burn", "--amount", "1", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "[NotOwner]")
	assert.Empty(t, sim.Sent())
}

func TestInvalidAmountRejected(t *testing.T) {
	dir := t.TempDir()
	addWallets(t, dir)
	_, url := startNode(t)

	out, err := runCLI(t, dir, "--rpc", url, "transfer",
		"--to", fixtures.Holder.Address.Hex(), "--amount=-3", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "[InvalidAmount]")
}
