// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"maps"

	"github.com/vechain/forkdb/types"
)

// Maps is an owned copy of the three cache maps.
type Maps struct {
	Accounts    map[types.Address]types.AccountInfo
	Storage     map[types.Address]map[types.Bytes32]types.Bytes32
	BlockHashes map[uint64]types.Bytes32
}

// NewMaps creates empty maps.
func NewMaps() Maps {
	return Maps{
		Accounts:    make(map[types.Address]types.AccountInfo),
		Storage:     make(map[types.Address]map[types.Bytes32]types.Bytes32),
		BlockHashes: make(map[uint64]types.Bytes32),
	}
}

// Copy returns a deep copy.
func (m *Maps) Copy() Maps {
	return Maps{
		Accounts:    copyAccounts(m.Accounts),
		Storage:     copyStorage(m.Storage),
		BlockHashes: maps.Clone(m.BlockHashes),
	}
}

func copyAccounts(src map[types.Address]types.AccountInfo) map[types.Address]types.AccountInfo {
	dst := make(map[types.Address]types.AccountInfo, len(src))
	for addr, info := range src {
		dst[addr] = info.Copy()
	}
	return dst
}

func copyStorage(src map[types.Address]map[types.Bytes32]types.Bytes32) map[types.Address]map[types.Bytes32]types.Bytes32 {
	dst := make(map[types.Address]map[types.Bytes32]types.Bytes32, len(src))
	for addr, slots := range src {
		dst[addr] = maps.Clone(slots)
	}
	return dst
}
