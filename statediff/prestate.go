// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package statediff

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/forkdb/co"
	"github.com/vechain/forkdb/forkdb"
	"github.com/vechain/forkdb/log"
	"github.com/vechain/forkdb/remote"
	"github.com/vechain/forkdb/types"
)

var logger = log.WithContext("pkg", "statediff")

// Prestate builds an overlay holding the state touched by diff as it was before the change.
// Account info is fetched at block, and each touched slot is set to its previous value.
// Born and unchanged slots are left out.
func Prestate(ctx context.Context, diff StateDiff, fetcher remote.Fetcher, block uint64, workers int) (*forkdb.Overlay, error) {
	var (
		lock     sync.Mutex
		overlay  = forkdb.NewOverlay()
		firstErr error
	)
	co.Parallel(workers, func(enqueue co.Enqueue) {
		for addr, acc := range diff {
			enqueue(func() {
				if ctx.Err() != nil {
					return
				}
				info, err := fetcher.Account(ctx, addr, block)

				lock.Lock()
				defer lock.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = errors.Wrapf(err, "fetch account %v", addr)
					}
					return
				}
				overlay.InsertAccountInfo(addr, info)
				for key, d := range acc.Storage {
					if v, ok := d.Pre(); ok {
						overlay.InsertAccountStorage(addr, key, v)
					}
				}
			})
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("prestate built", "block", block, "accounts", overlay.Len())
	return overlay, nil
}

// Touched returns the addresses of all accounts in diff.
func (diff StateDiff) Touched() []types.Address {
	addrs := make([]types.Address, 0, len(diff))
	for addr := range diff {
		addrs = append(addrs, addr)
	}
	return addrs
}
