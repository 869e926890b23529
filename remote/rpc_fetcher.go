// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/forkdb/cache"
	"github.com/vechain/forkdb/types"
)

const blockHashCacheSize = 4096

var _ Fetcher = (*RPCFetcher)(nil)

// RPCFetcher fetches state from an ethereum JSON-RPC endpoint.
// The endpoint must serve historical state for the pinned block.
type RPCFetcher struct {
	client *rpc.Client
	hashes *cache.LRU[uint64, types.Bytes32]
}

// DialRPC connects to the endpoint at url.
func DialRPC(ctx context.Context, url string) (*RPCFetcher, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return NewRPCFetcher(client), nil
}

// NewRPCFetcher creates a fetcher over an established client.
func NewRPCFetcher(client *rpc.Client) *RPCFetcher {
	hashes, _ := cache.NewLRU[uint64, types.Bytes32](blockHashCacheSize)
	return &RPCFetcher{client: client, hashes: hashes}
}

// Close closes the underlying client.
func (f *RPCFetcher) Close() {
	f.client.Close()
}

// LatestBlock returns the number of the chain head.
func (f *RPCFetcher) LatestBlock(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := f.client.CallContext(ctx, &n, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// Account fetches balance, nonce and code in one batch.
func (f *RPCFetcher) Account(ctx context.Context, addr types.Address, block uint64) (types.AccountInfo, error) {
	var (
		balance hexutil.Big
		nonce   hexutil.Uint64
		code    hexutil.Bytes
		at      = hexutil.EncodeUint64(block)
		a       = common.Address(addr)
	)
	batch := []rpc.BatchElem{
		{Method: "eth_getBalance", Args: []any{a, at}, Result: &balance},
		{Method: "eth_getTransactionCount", Args: []any{a, at}, Result: &nonce},
		{Method: "eth_getCode", Args: []any{a, at}, Result: &code},
	}
	if err := f.client.BatchCallContext(ctx, batch); err != nil {
		return types.AccountInfo{}, err
	}
	for _, elem := range batch {
		if elem.Error != nil {
			return types.AccountInfo{}, errors.Wrap(elem.Error, elem.Method)
		}
	}

	bal, overflow := uint256.FromBig(balance.ToInt())
	if overflow {
		return types.AccountInfo{}, errors.Errorf("balance of %v overflows 256 bits", addr)
	}
	return types.NewAccountInfo(bal, uint64(nonce), code), nil
}

// Storage fetches a storage slot.
func (f *RPCFetcher) Storage(ctx context.Context, addr types.Address, key types.Bytes32, block uint64) (types.Bytes32, error) {
	var val hexutil.Bytes
	if err := f.client.CallContext(ctx, &val, "eth_getStorageAt", common.Address(addr), common.Hash(key), hexutil.EncodeUint64(block)); err != nil {
		return types.Bytes32{}, err
	}
	return types.BytesToBytes32(val), nil
}

// BlockHash fetches the hash of the block. Hashes are immutable once known, so they are memoized.
func (f *RPCFetcher) BlockHash(ctx context.Context, number uint64) (types.Bytes32, error) {
	return f.hashes.GetOrLoad(number, func(number uint64) (types.Bytes32, error) {
		var head *struct {
			Hash common.Hash `json:"hash"`
		}
		if err := f.client.CallContext(ctx, &head, "eth_getBlockByNumber", hexutil.EncodeUint64(number), false); err != nil {
			return types.Bytes32{}, err
		}
		if head == nil {
			return types.Bytes32{}, errors.Wrapf(ErrUnknownBlock, "block %d", number)
		}
		return types.Bytes32(head.Hash), nil
	})
}
