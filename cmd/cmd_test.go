package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/blockchain/blockchaintest"
	"github.com/kostaleonard/leocoin/config"
	"github.com/kostaleonard/leocoin/jsonx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--env", ""))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestInspectReportsChain(t *testing.T) {
	c, _ := blockchaintest.Chain(t, 1, 3)
	path := filepath.Join(t.TempDir(), "chain.bin")
	require.NoError(t, blockchain.WriteFile(path, c))

	var report struct {
		Valid    bool                     `json:"valid"`
		Length   int                      `json:"length"`
		Blocks   []map[string]interface{} `json:"blocks"`
		Balances []map[string]interface{} `json:"balances"`
	}
	require.NoError(t, jsonx.Unmarshal([]byte(execute(t, "inspect", path, "--balances")), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, 3, report.Length)
	assert.Len(t, report.Blocks, 3)
	assert.NotEmpty(t, report.Balances)
}

func TestKeygenWritesLoadableKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.key")
	out := execute(t, "keygen", "--out", path)
	assert.True(t, strings.Contains(out, "public key: "))

	priv, err := config.LoadEd25519PrivKey(path)
	require.NoError(t, err)
	assert.Len(t, priv, 64)
}

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := loadOptions("", "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultListenAddr, opts.Config.Node.ListenAddr)
	assert.Equal(t, uint64(config.DefaultDifficulty), opts.Mining.Difficulty)
	assert.Nil(t, opts.PrivKey)
}
