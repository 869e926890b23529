// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote_test

import (
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/forkdb/remote"
	"github.com/vechain/forkdb/types"
)

func TestCacheCopyOnReadWrite(t *testing.T) {
	c := remote.NewCache()
	addr := types.BytesToAddress([]byte("acc"))

	info := types.NewAccountInfo(uint256.NewInt(10), 1, []byte{0x60})
	c.SetAccount(addr, info)
	info.Balance.SetUint64(99)
	info.Code[0] = 0xff

	got, ok := c.Account(addr)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), got.Balance.Uint64())
	assert.Equal(t, []byte{0x60}, got.Code)

	got.Balance.SetUint64(77)
	again, _ := c.Account(addr)
	assert.Equal(t, uint64(10), again.Balance.Uint64())
}

func TestCacheSnapshotRestore(t *testing.T) {
	c := remote.NewCache()
	a1 := types.BytesToAddress([]byte("a1"))
	a2 := types.BytesToAddress([]byte("a2"))
	key := types.BytesToBytes32([]byte("k"))

	c.SetAccount(a1, types.NewAccountInfo(uint256.NewInt(1), 0, nil))
	c.SetStorage(a1, key, types.BytesToBytes32([]byte{1}))
	c.SetBlockHash(1, types.BytesToBytes32([]byte("h1")))

	snap := c.Snapshot()

	// changes after the capture
	c.SetAccount(a2, types.NewAccountInfo(uint256.NewInt(2), 0, nil))
	c.SetStorage(a1, key, types.BytesToBytes32([]byte{2}))
	c.SetBlockHash(2, types.BytesToBytes32([]byte("h2")))

	assert.Len(t, snap.Accounts, 1)
	assert.Equal(t, types.BytesToBytes32([]byte{1}), snap.Storage[a1][key])
	assert.Len(t, snap.BlockHashes, 1)

	c.Restore(snap.Copy())

	_, ok := c.Account(a2)
	assert.False(t, ok, "fetched after capture must be discarded")
	v, _ := c.Storage(a1, key)
	assert.Equal(t, types.BytesToBytes32([]byte{1}), v)
	_, ok = c.BlockHash(2)
	assert.False(t, ok)

	accounts, slots, hashes := c.Len()
	assert.Equal(t, 1, accounts)
	assert.Equal(t, 1, slots)
	assert.Equal(t, 1, hashes)

	c.Clear()
	accounts, slots, hashes = c.Len()
	assert.Zero(t, accounts+slots+hashes)
}

func TestCacheConcurrent(t *testing.T) {
	c := remote.NewCache()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				addr := types.BytesToAddress([]byte{byte(i), byte(j)})
				c.SetAccount(addr, types.DefaultAccountInfo())
				c.SetStorage(addr, types.Bytes32{}, types.Bytes32{1})
				c.SetBlockHash(uint64(i*100+j), types.Bytes32{2})
				c.Account(addr)
				c.Snapshot()
			}
		}()
	}
	wg.Wait()

	accounts, slots, hashes := c.Len()
	assert.Equal(t, 800, accounts)
	assert.Equal(t, 800, slots)
	assert.Equal(t, 800, hashes)
}
