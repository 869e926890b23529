// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forkdb

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/forkdb/log"
	"github.com/vechain/forkdb/remote"
	"github.com/vechain/forkdb/types"
)

var logger = log.WithContext("pkg", "forkdb")

// State is the query surface shared by Database and its read-only view.
type State interface {
	Account(addr types.Address) (types.AccountInfo, error)
	Storage(addr types.Address, key types.Bytes32) (types.Bytes32, error)
	Code(codeHash types.Bytes32) ([]byte, error)
	BlockHash(number uint64) (types.Bytes32, error)
}

// StateReader is a State answering only from data already materialized locally.
// A miss results in remote.ErrNotResident instead of a fetch.
type StateReader interface {
	State
	residentOnly()
}

var (
	_ State       = (*Database)(nil)
	_ StateReader = (*ReadOnly)(nil)
)

// Database is a state database forked from a remote chain.
// Queries fall back to the remote source on overlay miss and remember the answer.
// Commits only change the overlay.
type Database struct {
	source    remote.Source
	snapshots *Snapshots

	// lock is held shared by queries and exclusively by operations replacing state,
	// so that no query observes a half-reverted database.
	lock sync.RWMutex
	// omu guards the overlay among concurrent queries.
	omu     sync.Mutex
	overlay *Overlay
}

// New creates a database with an empty overlay.
func New(source remote.Source) *Database {
	return NewWithOverlay(source, NewOverlay())
}

// NewWithOverlay creates a database on top of the given overlay, which is owned by the database afterwards.
func NewWithOverlay(source remote.Source, overlay *Overlay) *Database {
	return &Database{
		source:    source,
		snapshots: NewSnapshots(),
		overlay:   overlay,
	}
}

// Source returns the shared remote source.
func (db *Database) Source() remote.Source {
	return db.source
}

// Snapshots returns the snapshot store, which is shared with branches.
func (db *Database) Snapshots() *Snapshots {
	return db.snapshots
}

// Overlay returns a copy of the overlay.
func (db *Database) Overlay() *Overlay {
	db.lock.RLock()
	defer db.lock.RUnlock()
	db.omu.Lock()
	defer db.omu.Unlock()

	return db.overlay.Copy()
}

// Reader returns the read-only view of the database. The view never fetches,
// data not materialized yet results in remote.ErrNotResident.
func (db *Database) Reader() *ReadOnly {
	return &ReadOnly{db}
}

// Account returns the account info. Accounts absent upstream resolve to the default info.
func (db *Database) Account(addr types.Address) (types.AccountInfo, error) {
	return db.account(addr, true)
}

// Storage returns the storage value.
func (db *Database) Storage(addr types.Address, key types.Bytes32) (types.Bytes32, error) {
	return db.storage(addr, key, true)
}

// Code returns the code with the given hash.
func (db *Database) Code(codeHash types.Bytes32) ([]byte, error) {
	return db.code(codeHash, true)
}

// BlockHash returns the hash of the block with the given number.
func (db *Database) BlockHash(number uint64) (types.Bytes32, error) {
	return db.blockHash(number, true)
}

func (db *Database) account(addr types.Address, mayFetch bool) (types.AccountInfo, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	db.omu.Lock()
	info, ok := db.overlay.Account(addr)
	db.omu.Unlock()
	if ok {
		return info, nil
	}

	if !mayFetch {
		if info, ok := db.source.Cache().Account(addr); ok {
			return info, nil
		}
		return types.AccountInfo{}, &Error{"account", errors.Wrapf(remote.ErrNotResident, "account %v", addr)}
	}

	info, err := db.source.Account(addr)
	if err != nil {
		return types.AccountInfo{}, &Error{"account", err}
	}

	db.omu.Lock()
	defer db.omu.Unlock()
	return db.overlay.loadAccount(addr, info), nil
}

func (db *Database) storage(addr types.Address, key types.Bytes32, mayFetch bool) (types.Bytes32, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	db.omu.Lock()
	v, ok := db.overlay.Storage(addr, key)
	db.omu.Unlock()
	if ok {
		return v, nil
	}

	if !mayFetch {
		if v, ok := db.source.Cache().Storage(addr, key); ok {
			return v, nil
		}
		return types.Bytes32{}, &Error{"storage", errors.Wrapf(remote.ErrNotResident, "storage %v/%v", addr, key)}
	}

	v, err := db.source.Storage(addr, key)
	if err != nil {
		return types.Bytes32{}, &Error{"storage", err}
	}

	db.omu.Lock()
	defer db.omu.Unlock()
	return db.overlay.loadStorage(addr, key, v), nil
}

func (db *Database) code(codeHash types.Bytes32, mayFetch bool) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	db.omu.Lock()
	code, ok := db.overlay.Code(codeHash)
	db.omu.Unlock()
	if ok {
		return code, nil
	}

	// code is never fetched by hash, the source only answers from what it has loaded
	code, err := db.source.Code(codeHash)
	if err != nil {
		return nil, &Error{"code", err}
	}
	if mayFetch {
		db.omu.Lock()
		db.overlay.loadCode(codeHash, code)
		db.omu.Unlock()
	}
	return code, nil
}

func (db *Database) blockHash(number uint64, mayFetch bool) (types.Bytes32, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	db.omu.Lock()
	h, ok := db.overlay.BlockHash(number)
	db.omu.Unlock()
	if ok {
		return h, nil
	}

	if !mayFetch {
		if h, ok := db.source.Cache().BlockHash(number); ok {
			return h, nil
		}
		return types.Bytes32{}, &Error{"blockhash", errors.Wrapf(remote.ErrNotResident, "block hash %d", number)}
	}

	h, err := db.source.BlockHash(number)
	if err != nil {
		return types.Bytes32{}, &Error{"blockhash", err}
	}

	db.omu.Lock()
	defer db.omu.Unlock()
	return db.overlay.loadBlockHash(number, h), nil
}

// Commit applies post-execution account states to the overlay.
// The remote cache is never changed by commits.
func (db *Database) Commit(changes map[types.Address]*types.Account) {
	db.lock.Lock()
	defer db.lock.Unlock()

	db.overlay.commit(changes)
}

// Reset re-pins the remote source to block, clears the remote cache, drops the overlay
// and all snapshots. If re-pinning fails, nothing is changed.
// The remote source is shared, other branches should be reset as well.
func (db *Database) Reset(block uint64) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if err := db.source.SetPinnedBlock(block); err != nil {
		return &Error{"reset", err}
	}
	db.source.Cache().Clear()
	db.overlay = NewOverlay()
	n := db.snapshots.Clear()

	logger.Debug("database reset", "block", block, "droppedSnapshots", n)
	return nil
}

// FlushCache persists the remote cache. Failures are only logged.
func (db *Database) FlushCache() {
	if err := db.source.Persist(); err != nil {
		logger.Warn("failed to flush cache", "err", err)
	}
}

// CreateSnapshot captures the overlay and the remote cache.
// The live database is not affected.
func (db *Database) CreateSnapshot() *Snapshot {
	db.lock.Lock()
	defer db.lock.Unlock()

	return &Snapshot{
		overlay: db.overlay.Copy(),
		remote:  db.source.Cache().Snapshot(),
	}
}

// InsertSnapshot captures a snapshot, stores it and returns its id.
func (db *Database) InsertSnapshot() uint64 {
	id := db.snapshots.Insert(db.CreateSnapshot())
	logger.Trace("snapshot inserted", "id", id)
	return id
}

// RevertSnapshot restores the database to the snapshot with the given id, and removes
// that snapshot along with all later ones. It returns false if no such snapshot,
// in which case the database is left untouched.
func (db *Database) RevertSnapshot(id uint64) bool {
	db.lock.Lock()
	defer db.lock.Unlock()

	snap, ok := db.snapshots.Remove(id)
	if !ok {
		metricRevertCount().AddWithLabel(1, map[string]string{"result": "missing"})
		logger.Warn("snapshot not found", "id", id)
		return false
	}

	db.source.Cache().Restore(snap.Remote())
	db.overlay = snap.Overlay()

	metricRevertCount().AddWithLabel(1, map[string]string{"result": "ok"})
	logger.Trace("snapshot reverted", "id", id)
	return true
}

// Branch returns a database sharing the remote source and the snapshot store,
// with a copy of the overlay. Commits to either are invisible to the other.
func (db *Database) Branch() *Database {
	return &Database{
		source:    db.source,
		snapshots: db.snapshots,
		overlay:   db.Overlay(),
	}
}

// ReadOnly is the read-only view of a database. It never fetches and never
// changes the database.
type ReadOnly struct {
	db *Database
}

func (r *ReadOnly) residentOnly() {}

// Account returns the account info, if materialized.
func (r *ReadOnly) Account(addr types.Address) (types.AccountInfo, error) {
	return r.db.account(addr, false)
}

// Storage returns the storage value, if materialized.
func (r *ReadOnly) Storage(addr types.Address, key types.Bytes32) (types.Bytes32, error) {
	return r.db.storage(addr, key, false)
}

// Code returns the code with the given hash, if loaded.
func (r *ReadOnly) Code(codeHash types.Bytes32) ([]byte, error) {
	return r.db.code(codeHash, false)
}

// BlockHash returns the block hash, if materialized.
func (r *ReadOnly) BlockHash(number uint64) (types.Bytes32, error) {
	return r.db.blockHash(number, false)
}
