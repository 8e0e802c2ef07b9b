package rpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mohsinsiddi/tokenctl/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

func healthy(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block}
}

func down(url string) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Err: errDown}
}

// blockServer answers eth_blockNumber with block after sleeping delay.
func blockServer(t *testing.T, block string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": block}) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// Pick
// ---------------------------------------------------------------------------

func TestPickSelectsFastest(t *testing.T) {
	winner, err := rpc.Pick([]rpc.Endpoint{
		healthy("http://slow.rpc", 200*time.Millisecond, 100),
		healthy("http://fast.rpc", 30*time.Millisecond, 100),
		healthy("http://medium.rpc", 80*time.Millisecond, 100),
	}, rpc.AlgorithmFastest)

	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickDiscardsStaleNodes(t *testing.T) {
	winner, err := rpc.Pick([]rpc.Endpoint{
		healthy("http://fresh.rpc", 50*time.Millisecond, 1000),
		healthy("http://stale.rpc", 10*time.Millisecond, 990), // 10 blocks behind
	}, rpc.AlgorithmFastest)

	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL, "stale node should be discarded even if faster")
}

func TestPickSkipsUnhealthy(t *testing.T) {
	winner, err := rpc.Pick([]rpc.Endpoint{
		down("http://dead.rpc"),
		healthy("http://alive.rpc", 90*time.Millisecond, 5),
	}, rpc.AlgorithmFastest)

	require.NoError(t, err)
	assert.Equal(t, "http://alive.rpc", winner.URL)
}

func TestPickAllUnhealthy(t *testing.T) {
	_, err := rpc.Pick([]rpc.Endpoint{down("http://a"), down("http://b")}, rpc.AlgorithmFastest)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)

	_, err = rpc.Pick(nil, rpc.AlgorithmFailover)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

func TestPickFailoverKeepsOrder(t *testing.T) {
	winner, err := rpc.Pick([]rpc.Endpoint{
		down("http://primary.rpc"),
		healthy("http://secondary.rpc", 300*time.Millisecond, 1),
		healthy("http://tertiary.rpc", 1*time.Millisecond, 1),
	}, rpc.AlgorithmFailover)

	require.NoError(t, err)
	assert.Equal(t, "http://secondary.rpc", winner.URL)
}

func TestParseAlgorithm(t *testing.T) {
	a, err := rpc.ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, rpc.AlgorithmFastest, a)

	a, err = rpc.ParseAlgorithm("failover")
	require.NoError(t, err)
	assert.Equal(t, rpc.AlgorithmFailover, a)

	_, err = rpc.ParseAlgorithm("round-robin")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Probe / Select
// ---------------------------------------------------------------------------

func TestProbeRecordsHealthAndOrder(t *testing.T) {
	good := blockServer(t, "0x10", 0)

	results := rpc.Probe(context.Background(), []string{"http://127.0.0.1:19993", good.URL})
	require.Len(t, results, 2)
	assert.False(t, results[0].Healthy())
	assert.True(t, results[1].Healthy())
	assert.Equal(t, uint64(16), results[1].BlockNumber)
}

func TestSelectPrefersFasterNode(t *testing.T) {
	slow := blockServer(t, "0x10", 150*time.Millisecond)
	fast := blockServer(t, "0x10", 0)

	url, err := rpc.Select(context.Background(), []string{slow.URL, fast.URL}, rpc.AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, fast.URL, url)
}

func TestSelectSingleURLSkipsProbe(t *testing.T) {
	url, err := rpc.Select(context.Background(), []string{"http://127.0.0.1:19994"}, rpc.AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:19994", url)
}

func TestSelectEmpty(t *testing.T) {
	_, err := rpc.Select(context.Background(), nil, rpc.AlgorithmFastest)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}
