// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forkdb

import (
	"github.com/vechain/forkdb/remote"
	"github.com/vechain/forkdb/types"
)

// Snapshot is a point-in-time copy of a database's overlay and of the remote cache.
// It shares nothing with the database it was captured from.
type Snapshot struct {
	overlay *Overlay
	remote  remote.Maps
}

// Overlay returns a copy of the captured overlay.
func (s *Snapshot) Overlay() *Overlay {
	return s.overlay.Copy()
}

// Remote returns a copy of the captured remote cache maps.
func (s *Snapshot) Remote() remote.Maps {
	return s.remote.Copy()
}

// Account returns the captured account info, preferring the overlay.
func (s *Snapshot) Account(addr types.Address) (types.AccountInfo, bool) {
	if info, ok := s.overlay.Account(addr); ok {
		return info, true
	}
	info, ok := s.remote.Accounts[addr]
	if !ok {
		return types.AccountInfo{}, false
	}
	return info.Copy(), true
}

// Storage returns the captured storage value, preferring the overlay.
func (s *Snapshot) Storage(addr types.Address, key types.Bytes32) (types.Bytes32, bool) {
	if v, ok := s.overlay.Storage(addr, key); ok {
		return v, true
	}
	v, ok := s.remote.Storage[addr][key]
	return v, ok
}

// BlockHash returns the captured block hash, preferring the overlay.
func (s *Snapshot) BlockHash(number uint64) (types.Bytes32, bool) {
	if h, ok := s.overlay.BlockHash(number); ok {
		return h, true
	}
	h, ok := s.remote.BlockHashes[number]
	return h, ok
}
