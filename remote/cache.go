// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"bytes"
	"maps"
	"sync"

	"github.com/vechain/forkdb/types"
)

// Cache holds the data fetched from the remote chain.
// Each of the three maps is guarded by its own lock, so that readers and writers
// of different maps never contend.
type Cache struct {
	accounts struct {
		m    map[types.Address]types.AccountInfo
		lock sync.RWMutex
	}
	storage struct {
		m    map[types.Address]map[types.Bytes32]types.Bytes32
		lock sync.RWMutex
	}
	blockHashes struct {
		m    map[uint64]types.Bytes32
		lock sync.RWMutex
	}
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.accounts.m = make(map[types.Address]types.AccountInfo)
	c.storage.m = make(map[types.Address]map[types.Bytes32]types.Bytes32)
	c.blockHashes.m = make(map[uint64]types.Bytes32)
	return c
}

// Account returns a copy of the cached account info.
func (c *Cache) Account(addr types.Address) (types.AccountInfo, bool) {
	c.accounts.lock.RLock()
	defer c.accounts.lock.RUnlock()

	info, ok := c.accounts.m[addr]
	if !ok {
		return types.AccountInfo{}, false
	}
	return info.Copy(), true
}

// SetAccount stores a copy of info, with the code hash filled.
func (c *Cache) SetAccount(addr types.Address, info types.AccountInfo) {
	info = info.Copy()
	info.FillCodeHash()

	c.accounts.lock.Lock()
	defer c.accounts.lock.Unlock()
	c.accounts.m[addr] = info
}

// Storage returns the cached storage value.
func (c *Cache) Storage(addr types.Address, key types.Bytes32) (types.Bytes32, bool) {
	c.storage.lock.RLock()
	defer c.storage.lock.RUnlock()

	v, ok := c.storage.m[addr][key]
	return v, ok
}

// SetStorage stores the storage value.
func (c *Cache) SetStorage(addr types.Address, key, value types.Bytes32) {
	c.storage.lock.Lock()
	defer c.storage.lock.Unlock()

	slots, ok := c.storage.m[addr]
	if !ok {
		slots = make(map[types.Bytes32]types.Bytes32)
		c.storage.m[addr] = slots
	}
	slots[key] = value
}

// BlockHash returns the cached block hash.
func (c *Cache) BlockHash(number uint64) (types.Bytes32, bool) {
	c.blockHashes.lock.RLock()
	defer c.blockHashes.lock.RUnlock()

	h, ok := c.blockHashes.m[number]
	return h, ok
}

// SetBlockHash stores the block hash.
func (c *Cache) SetBlockHash(number uint64, hash types.Bytes32) {
	c.blockHashes.lock.Lock()
	defer c.blockHashes.lock.Unlock()
	c.blockHashes.m[number] = hash
}

// code scans cached accounts for loaded code with the given hash.
func (c *Cache) code(hash types.Bytes32) ([]byte, bool) {
	c.accounts.lock.RLock()
	defer c.accounts.lock.RUnlock()

	for _, info := range c.accounts.m {
		if info.CodeHash == hash && info.Code != nil {
			return bytes.Clone(info.Code), true
		}
	}
	return nil, false
}

// Clear wipes all three maps.
func (c *Cache) Clear() {
	c.Restore(NewMaps())
}

// Snapshot returns a deep copy of the three maps.
// Each map is copied under its own read lock.
func (c *Cache) Snapshot() Maps {
	var m Maps

	c.accounts.lock.RLock()
	m.Accounts = copyAccounts(c.accounts.m)
	c.accounts.lock.RUnlock()

	c.storage.lock.RLock()
	m.Storage = copyStorage(c.storage.m)
	c.storage.lock.RUnlock()

	c.blockHashes.lock.RLock()
	m.BlockHashes = maps.Clone(c.blockHashes.m)
	c.blockHashes.lock.RUnlock()

	return m
}

// Restore replaces the content of each map with the given one.
// Nothing fetched after m was captured survives. The cache takes ownership of m.
func (c *Cache) Restore(m Maps) {
	if m.Accounts == nil {
		m.Accounts = make(map[types.Address]types.AccountInfo)
	}
	for addr, info := range m.Accounts {
		if info.CodeHash.IsZero() {
			info.FillCodeHash()
			m.Accounts[addr] = info
		}
	}
	if m.Storage == nil {
		m.Storage = make(map[types.Address]map[types.Bytes32]types.Bytes32)
	}
	if m.BlockHashes == nil {
		m.BlockHashes = make(map[uint64]types.Bytes32)
	}

	c.accounts.lock.Lock()
	c.accounts.m = m.Accounts
	c.accounts.lock.Unlock()

	c.storage.lock.Lock()
	c.storage.m = m.Storage
	c.storage.lock.Unlock()

	c.blockHashes.lock.Lock()
	c.blockHashes.m = m.BlockHashes
	c.blockHashes.lock.Unlock()
}

// Len returns the number of cached accounts, storage slots and block hashes.
func (c *Cache) Len() (accounts, slots, blockHashes int) {
	c.accounts.lock.RLock()
	accounts = len(c.accounts.m)
	c.accounts.lock.RUnlock()

	c.storage.lock.RLock()
	for _, s := range c.storage.m {
		slots += len(s)
	}
	c.storage.lock.RUnlock()

	c.blockHashes.lock.RLock()
	blockHashes = len(c.blockHashes.m)
	c.blockHashes.lock.RUnlock()
	return
}
