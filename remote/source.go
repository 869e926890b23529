// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"context"

	"github.com/vechain/forkdb/types"
)

// Fetcher is the transport to a remote chain.
// Absent accounts and slots are not errors, they resolve to default values.
type Fetcher interface {
	Account(ctx context.Context, addr types.Address, block uint64) (types.AccountInfo, error)
	Storage(ctx context.Context, addr types.Address, key types.Bytes32, block uint64) (types.Bytes32, error)
	BlockHash(ctx context.Context, number uint64) (types.Bytes32, error)
}

// Source answers state queries against a pinned remote block.
// Implementations are shared by many databases and must be safe for concurrent use.
type Source interface {
	// Account returns the account info. Accounts absent upstream resolve to the default info.
	Account(addr types.Address) (types.AccountInfo, error)
	Storage(addr types.Address, key types.Bytes32) (types.Bytes32, error)
	Code(codeHash types.Bytes32) ([]byte, error)
	BlockHash(number uint64) (types.Bytes32, error)

	PinnedBlock() uint64
	// SetPinnedBlock re-targets subsequent fetches. On error nothing is changed.
	SetPinnedBlock(number uint64) error
	// Persist flushes the cache to the backing store, if any.
	Persist() error
	// Cache returns the shared cache of fetched data.
	Cache() *Cache
}
