package api

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/blockchain/blockchaintest"
	"github.com/kostaleonard/leocoin/consensus"
	"github.com/kostaleonard/leocoin/discovery"
	"github.com/kostaleonard/leocoin/jsonx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*APIServer, *blockchain.Blockchain) {
	t.Helper()
	c, _ := blockchaintest.Chain(t, 1, 3)
	peers := discovery.NewPeerList()
	peers.Upsert(netip.MustParseAddrPort("[::1]:8333"), time.Unix(100, 0))
	return NewAPIServer(consensus.NewSynchronizedChain(c.Clone()), peers, "127.0.0.1:0"), c
}

func get(t *testing.T, s *APIServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func TestStatus(t *testing.T) {
	s, c := newTestServer(t)
	rr := get(t, s, "/status")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, jsonx.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["length"])
	assert.Equal(t, float64(1), body["difficulty"])
	assert.Equal(t, float64(1), body["peers"])
	assert.Equal(t, c.TipHash().String(), body["tip_hash"])
}

func TestChainRaw(t *testing.T) {
	s, c := newTestServer(t)
	rr := get(t, s, "/chain/raw")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, c.Encode(), rr.Body.Bytes())
	assert.Equal(t, "0", rr.Header().Get("X-Chain-Version"))
}

func TestBlock(t *testing.T) {
	s, c := newTestServer(t)

	rr := get(t, s, "/blocks/2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), c.Blocks[2].Hash().String())

	assert.Equal(t, http.StatusNotFound, get(t, s, "/blocks/3").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/blocks/abc").Code)
}

func TestChainPeersBalances(t *testing.T) {
	s, _ := newTestServer(t)

	rr := get(t, s, "/chain")
	require.Equal(t, http.StatusOK, rr.Code)
	var chain map[string]interface{}
	require.NoError(t, jsonx.Unmarshal(rr.Body.Bytes(), &chain))
	assert.Len(t, chain["blocks"], 3)

	rr = get(t, s, "/peers")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "[::1]:8333")

	rr = get(t, s, "/balances")
	require.Equal(t, http.StatusOK, rr.Code)
	var balances []balanceResponse
	require.NoError(t, jsonx.Unmarshal(rr.Body.Bytes(), &balances))
	assert.Len(t, balances, 3)
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	rr := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "leocoin_chain_length")
}
