// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/forkdb/types"
)

func TestReadAddresses(t *testing.T) {
	input := `
# tokens
0x00000000000000000000000000000000000000aa

00000000000000000000000000000000000000bb
`
	addrs, err := readAddresses(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []types.Address{
		types.MustParseAddress("0x00000000000000000000000000000000000000aa"),
		types.MustParseAddress("0x00000000000000000000000000000000000000bb"),
	}, addrs)

	_, err = readAddresses(strings.NewReader("0x00aa\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forkdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc: https://rpc.example.org
block: 19000000
cache-dir: /tmp/forkdb
request-timeout: 5s
fetch-concurrency: 8
code-cache-mb: 64
`), 0o600))

	cfg, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, &config{
		RPC:              "https://rpc.example.org",
		Block:            19000000,
		CacheDir:         "/tmp/forkdb",
		RequestTimeout:   5 * time.Second,
		FetchConcurrency: 8,
		CodeCacheSizeMB:  64,
	}, cfg)

	_, err = loadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
