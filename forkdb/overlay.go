// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forkdb

import (
	"bytes"
	"maps"

	"github.com/vechain/forkdb/types"
)

type accountState uint8

const (
	// stateNone the account was only loaded, missing slots are resolved remotely.
	stateNone accountState = iota
	// stateTouched the account was changed by a commit.
	stateTouched
	// stateStorageCleared all storage of the account is local, missing slots are zero.
	stateStorageCleared
	// stateNotExisting the account was destroyed.
	stateNotExisting
)

// storageLocal reports whether missing slots resolve to zero without a remote lookup.
func (s accountState) storageLocal() bool {
	return s == stateStorageCleared || s == stateNotExisting
}

type overlayAccount struct {
	info    types.AccountInfo
	hasInfo bool // false if only storage was loaded
	storage map[types.Bytes32]types.Bytes32
	state   accountState
}

func (a *overlayAccount) copy() *overlayAccount {
	cpy := *a
	cpy.info = a.info.Copy()
	cpy.storage = maps.Clone(a.storage)
	if cpy.storage == nil {
		cpy.storage = make(map[types.Bytes32]types.Bytes32)
	}
	return &cpy
}

// Overlay is the local write layer of a database.
// It holds the data written by commits and the data fetched through it.
// Overlay is not safe for concurrent use.
type Overlay struct {
	accounts    map[types.Address]*overlayAccount
	contracts   map[types.Bytes32][]byte
	blockHashes map[uint64]types.Bytes32
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{
		accounts:    make(map[types.Address]*overlayAccount),
		contracts:   make(map[types.Bytes32][]byte),
		blockHashes: make(map[uint64]types.Bytes32),
	}
}

// Copy returns a deep copy.
func (o *Overlay) Copy() *Overlay {
	cpy := &Overlay{
		accounts:    make(map[types.Address]*overlayAccount, len(o.accounts)),
		contracts:   make(map[types.Bytes32][]byte, len(o.contracts)),
		blockHashes: maps.Clone(o.blockHashes),
	}
	for addr, acc := range o.accounts {
		cpy.accounts[addr] = acc.copy()
	}
	for hash, code := range o.contracts {
		cpy.contracts[hash] = bytes.Clone(code)
	}
	return cpy
}

// Len returns the number of accounts held.
func (o *Overlay) Len() int {
	return len(o.accounts)
}

func (o *Overlay) entry(addr types.Address) *overlayAccount {
	acc, ok := o.accounts[addr]
	if !ok {
		acc = &overlayAccount{storage: make(map[types.Bytes32]types.Bytes32)}
		o.accounts[addr] = acc
	}
	return acc
}

// InsertAccountInfo puts the account info, keeping the loaded storage.
func (o *Overlay) InsertAccountInfo(addr types.Address, info types.AccountInfo) {
	o.insertContract(&info)
	acc := o.entry(addr)
	acc.info = info.Copy()
	acc.hasInfo = true
}

// InsertAccountStorage puts a storage slot.
func (o *Overlay) InsertAccountStorage(addr types.Address, key, value types.Bytes32) {
	o.entry(addr).storage[key] = value
}

// ReplaceAccountStorage replaces the whole storage of the account.
// Slots absent from storage resolve to zero afterwards.
func (o *Overlay) ReplaceAccountStorage(addr types.Address, storage map[types.Bytes32]types.Bytes32) {
	acc := o.entry(addr)
	acc.storage = maps.Clone(storage)
	if acc.storage == nil {
		acc.storage = make(map[types.Bytes32]types.Bytes32)
	}
	acc.state = stateStorageCleared
}

// InsertBlockHash puts a block hash.
func (o *Overlay) InsertBlockHash(number uint64, hash types.Bytes32) {
	o.blockHashes[number] = hash
}

// insertContract keeps the code by hash and makes sure the code hash is set.
func (o *Overlay) insertContract(info *types.AccountInfo) {
	info.FillCodeHash()
	if len(info.Code) > 0 {
		if _, ok := o.contracts[info.CodeHash]; !ok {
			o.contracts[info.CodeHash] = bytes.Clone(info.Code)
		}
	}
}

// Account returns the account info held by the overlay.
func (o *Overlay) Account(addr types.Address) (types.AccountInfo, bool) {
	acc, ok := o.accounts[addr]
	if !ok || !acc.hasInfo {
		return types.AccountInfo{}, false
	}
	return acc.info.Copy(), true
}

// Storage returns the storage value held by the overlay.
// Slots of cleared or destroyed accounts resolve to zero.
func (o *Overlay) Storage(addr types.Address, key types.Bytes32) (types.Bytes32, bool) {
	acc, ok := o.accounts[addr]
	if !ok {
		return types.Bytes32{}, false
	}
	if v, ok := acc.storage[key]; ok {
		return v, true
	}
	if acc.state.storageLocal() {
		return types.Bytes32{}, true
	}
	return types.Bytes32{}, false
}

// Code returns the code held by the overlay.
func (o *Overlay) Code(codeHash types.Bytes32) ([]byte, bool) {
	code, ok := o.contracts[codeHash]
	if !ok {
		return nil, false
	}
	return bytes.Clone(code), true
}

// BlockHash returns the block hash held by the overlay.
func (o *Overlay) BlockHash(number uint64) (types.Bytes32, bool) {
	h, ok := o.blockHashes[number]
	return h, ok
}

// loadAccount records fetched info unless the overlay already has some,
// and returns what the overlay holds afterwards.
func (o *Overlay) loadAccount(addr types.Address, info types.AccountInfo) types.AccountInfo {
	if cur, ok := o.Account(addr); ok {
		return cur
	}
	o.InsertAccountInfo(addr, info)
	cur, _ := o.Account(addr)
	return cur
}

// loadStorage records a fetched slot unless the overlay already resolves it,
// and returns what the overlay holds afterwards.
func (o *Overlay) loadStorage(addr types.Address, key, value types.Bytes32) types.Bytes32 {
	if cur, ok := o.Storage(addr, key); ok {
		return cur
	}
	o.InsertAccountStorage(addr, key, value)
	return value
}

func (o *Overlay) loadCode(codeHash types.Bytes32, code []byte) {
	if _, ok := o.contracts[codeHash]; !ok && len(code) > 0 {
		o.contracts[codeHash] = bytes.Clone(code)
	}
}

func (o *Overlay) loadBlockHash(number uint64, hash types.Bytes32) types.Bytes32 {
	if cur, ok := o.blockHashes[number]; ok {
		return cur
	}
	o.blockHashes[number] = hash
	return hash
}

// commit applies post-execution account states.
// Untouched accounts are skipped. Account info is replaced, and changed slots
// overwrite existing ones. Created accounts lose their previous storage,
// destroyed accounts lose everything.
func (o *Overlay) commit(changes map[types.Address]*types.Account) {
	for addr, change := range changes {
		if change == nil || !change.Status.Has(types.Touched) {
			continue
		}
		acc := o.entry(addr)
		if change.Status.Has(types.SelfDestructed) {
			acc.storage = make(map[types.Bytes32]types.Bytes32)
			acc.info = types.DefaultAccountInfo()
			acc.hasInfo = true
			acc.state = stateNotExisting
			continue
		}

		info := change.Info.Copy()
		o.insertContract(&info)
		acc.info = info
		acc.hasInfo = true

		switch {
		case change.Status.Has(types.Created):
			acc.storage = make(map[types.Bytes32]types.Bytes32, len(change.Storage))
			acc.state = stateStorageCleared
		case acc.state.storageLocal():
			// a destroyed account brought back keeps resolving missing slots to zero
			acc.state = stateStorageCleared
		default:
			acc.state = stateTouched
		}
		for key, val := range change.Storage {
			acc.storage[key] = val
		}
	}
}
