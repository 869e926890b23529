// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forkdb

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/forkdb/types"
)

func TestOverlayCopyIsDeep(t *testing.T) {
	f := fuzz.New().NilChance(0)

	o := NewOverlay()
	for range 20 {
		var (
			addr    types.Address
			key     types.Bytes32
			val     types.Bytes32
			balance uint64
			code    []byte
		)
		f.Fuzz(&addr)
		f.Fuzz(&key)
		f.Fuzz(&val)
		f.Fuzz(&balance)
		f.Fuzz(&code)
		o.InsertAccountInfo(addr, types.NewAccountInfo(uint256.NewInt(balance), 0, code))
		o.InsertAccountStorage(addr, key, val)
	}
	o.InsertBlockHash(1, types.Bytes32{1})

	cpy := o.Copy()
	assert.Equal(t, o, cpy)

	for addr, acc := range cpy.accounts {
		acc.info.Balance.AddUint64(acc.info.Balance, 1)
		for key := range acc.storage {
			acc.storage[key] = types.Bytes32{0xff}
		}
		if len(acc.info.Code) > 0 {
			acc.info.Code[0]++
		}
		assert.NotEqual(t, o.accounts[addr], acc)
	}
	for _, code := range cpy.contracts {
		code[0]++
	}
	cpy.InsertBlockHash(2, types.Bytes32{2})

	assert.NotEqual(t, o, cpy)
	_, ok := o.BlockHash(2)
	assert.False(t, ok)
}

func TestOverlayStorageResolution(t *testing.T) {
	addr := types.BytesToAddress([]byte("a"))
	key := types.BytesToBytes32([]byte("k"))

	o := NewOverlay()
	_, ok := o.Storage(addr, key)
	assert.False(t, ok)

	// storage only, info is still unknown
	o.InsertAccountStorage(addr, key, types.Bytes32{1})
	_, ok = o.Account(addr)
	assert.False(t, ok)
	v, ok := o.Storage(addr, key)
	assert.True(t, ok)
	assert.Equal(t, types.Bytes32{1}, v)

	other := types.BytesToBytes32([]byte("other"))
	_, ok = o.Storage(addr, other)
	assert.False(t, ok)

	o.ReplaceAccountStorage(addr, nil)
	v, ok = o.Storage(addr, key)
	assert.True(t, ok)
	assert.True(t, v.IsZero())
}

func TestOverlayLoadKeepsExisting(t *testing.T) {
	addr := types.BytesToAddress([]byte("a"))
	key := types.BytesToBytes32([]byte("k"))

	o := NewOverlay()
	o.InsertAccountInfo(addr, types.NewAccountInfo(uint256.NewInt(1), 0, nil))
	got := o.loadAccount(addr, types.NewAccountInfo(uint256.NewInt(2), 0, nil))
	assert.Equal(t, uint64(1), got.Balance.Uint64())

	o.InsertAccountStorage(addr, key, types.Bytes32{1})
	assert.Equal(t, types.Bytes32{1}, o.loadStorage(addr, key, types.Bytes32{2}))

	assert.Equal(t, types.Bytes32{3}, o.loadBlockHash(7, types.Bytes32{3}))
	assert.Equal(t, types.Bytes32{3}, o.loadBlockHash(7, types.Bytes32{4}))
}

func TestOverlayCommitRevivedAccount(t *testing.T) {
	addr := types.BytesToAddress([]byte("a"))
	key := types.BytesToBytes32([]byte("k"))

	o := NewOverlay()
	o.commit(map[types.Address]*types.Account{addr: {Status: types.Touched | types.SelfDestructed}})
	assert.Equal(t, stateNotExisting, o.accounts[addr].state)

	o.commit(map[types.Address]*types.Account{addr: types.NewTouchedAccount(types.NewAccountInfo(uint256.NewInt(5), 1, nil), nil)})
	assert.Equal(t, stateStorageCleared, o.accounts[addr].state)

	v, ok := o.Storage(addr, key)
	assert.True(t, ok)
	assert.True(t, v.IsZero())
	info, _ := o.Account(addr)
	assert.Equal(t, uint64(5), info.Balance.Uint64())
}
