// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vechain/forkdb/cache"
	"github.com/vechain/forkdb/kv"
	"github.com/vechain/forkdb/log"
	"github.com/vechain/forkdb/types"
)

var logger = log.WithContext("pkg", "remote")

const statsLogInterval = 20 * time.Second

var _ Source = (*Backend)(nil)

// Options options for creating a backend.
type Options struct {
	RequestTimeout   time.Duration // per fetch, 0 means no timeout
	CodeCacheSizeMB  int
	FetchConcurrency int // used by Prefetch
}

// Backend is the shared handle to a remote chain.
// It fetches missing data through the Fetcher and records every answer in its Cache.
// Branches share a Backend by pointer.
type Backend struct {
	ctx     context.Context
	fetcher Fetcher
	opts    Options
	cache   *Cache
	codes   *codeCache
	store   kv.Store // optional

	pinned atomic.Uint64
	pinMu  sync.RWMutex // held exclusively while re-pinning
	flight singleflight.Group

	accountStats cache.Stats
	storageStats cache.Stats
	hashStats    cache.Stats
}

// New creates a backend pinned at block.
// ctx bounds all fetches for the life-time of the backend.
func New(ctx context.Context, fetcher Fetcher, block uint64, opts Options) *Backend {
	b := &Backend{
		ctx:     ctx,
		fetcher: fetcher,
		opts:    opts,
		cache:   NewCache(),
		codes:   newCodeCache(opts.CodeCacheSizeMB),
	}
	b.pinned.Store(block)
	return b
}

// NewWithStore creates a backend which persists its cache into store.
// Data persisted for the same pinned block is loaded.
func NewWithStore(ctx context.Context, fetcher Fetcher, block uint64, store kv.Store, opts Options) (*Backend, error) {
	b := New(ctx, fetcher, block, opts)
	b.store = store
	loaded, err := b.load()
	if err != nil {
		return nil, errors.Wrap(err, "load persisted cache")
	}
	if loaded {
		accounts, slots, hashes := b.cache.Len()
		logger.Info("loaded persisted cache", "block", block, "accounts", accounts, "slots", slots, "blockHashes", hashes)
	}
	return b, nil
}

// Cache returns the shared cache.
func (b *Backend) Cache() *Cache {
	return b.cache
}

// PinnedBlock returns the block all fetches are evaluated against.
func (b *Backend) PinnedBlock() uint64 {
	return b.pinned.Load()
}

// SetPinnedBlock validates the block against the remote chain and re-targets
// subsequent fetches to it. The cache is left untouched, clearing it is up to the caller.
func (b *Backend) SetPinnedBlock(number uint64) error {
	ctx, cancel := b.requestContext()
	defer cancel()

	if _, err := b.fetcher.BlockHash(ctx, number); err != nil {
		return errors.Wrapf(err, "pin block %d", number)
	}

	b.pinMu.Lock()
	defer b.pinMu.Unlock()
	b.pinned.Store(number)

	logger.Debug("pinned block changed", "block", number)
	return nil
}

// Account returns the account info, fetching it on miss.
func (b *Backend) Account(addr types.Address) (types.AccountInfo, error) {
	if info, ok := b.cache.Account(addr); ok {
		b.hit(&b.accountStats, "account")
		return info, nil
	}
	b.miss(&b.accountStats, "account")

	block := b.pinned.Load()
	v, err, _ := b.flight.Do(fmt.Sprintf("a%d%x", block, addr[:]), func() (any, error) {
		if info, ok := b.cache.Account(addr); ok {
			return info, nil
		}
		info, err := fetch(b, "account", addr.String(), block, func(ctx context.Context) (types.AccountInfo, error) {
			return b.fetcher.Account(ctx, addr, block)
		})
		if err != nil {
			return nil, err
		}
		info.FillCodeHash()
		b.codes.Set(info.CodeHash, info.Code)
		b.record(block, func() { b.cache.SetAccount(addr, info) })
		return info, nil
	})
	if err != nil {
		return types.AccountInfo{}, err
	}
	info := v.(types.AccountInfo)
	// the value may be shared with other callers
	return info.Copy(), nil
}

// Storage returns the storage value, fetching it on miss.
func (b *Backend) Storage(addr types.Address, key types.Bytes32) (types.Bytes32, error) {
	if v, ok := b.cache.Storage(addr, key); ok {
		b.hit(&b.storageStats, "storage")
		return v, nil
	}
	b.miss(&b.storageStats, "storage")

	block := b.pinned.Load()
	v, err, _ := b.flight.Do(fmt.Sprintf("s%d%x%x", block, addr[:], key[:]), func() (any, error) {
		if v, ok := b.cache.Storage(addr, key); ok {
			return v, nil
		}
		v, err := fetch(b, "storage", addr.String()+"/"+key.String(), block, func(ctx context.Context) (types.Bytes32, error) {
			return b.fetcher.Storage(ctx, addr, key, block)
		})
		if err != nil {
			return nil, err
		}
		b.record(block, func() { b.cache.SetStorage(addr, key, v) })
		return v, nil
	})
	if err != nil {
		return types.Bytes32{}, err
	}
	return v.(types.Bytes32), nil
}

// BlockHash returns the hash of the block with the given number, fetching it on miss.
func (b *Backend) BlockHash(number uint64) (types.Bytes32, error) {
	if h, ok := b.cache.BlockHash(number); ok {
		b.hit(&b.hashStats, "blockhash")
		return h, nil
	}
	b.miss(&b.hashStats, "blockhash")

	block := b.pinned.Load()
	v, err, _ := b.flight.Do(fmt.Sprintf("h%d", number), func() (any, error) {
		if h, ok := b.cache.BlockHash(number); ok {
			return h, nil
		}
		h, err := fetch(b, "blockhash", fmt.Sprint(number), block, func(ctx context.Context) (types.Bytes32, error) {
			return b.fetcher.BlockHash(ctx, number)
		})
		if err != nil {
			return nil, err
		}
		b.record(block, func() { b.cache.SetBlockHash(number, h) })
		return h, nil
	})
	if err != nil {
		return types.Bytes32{}, err
	}
	return v.(types.Bytes32), nil
}

// Code returns the code with the given hash.
// Code is loaded along with accounts, it can't be fetched by hash.
func (b *Backend) Code(codeHash types.Bytes32) ([]byte, error) {
	if codeHash == types.EmptyCodeHash || codeHash.IsZero() {
		return nil, nil
	}
	if code, ok := b.codes.Get(codeHash); ok {
		return code, nil
	}
	// evicted from the code cache, but may still be held by a cached account
	if code, ok := b.cache.code(codeHash); ok {
		b.codes.Set(codeHash, code)
		return code, nil
	}
	return nil, errors.Wrapf(ErrMissingCode, "code hash %v", codeHash)
}

// Prefetch loads the given accounts concurrently.
func (b *Backend) Prefetch(ctx context.Context, addrs []types.Address) error {
	g, ctx := errgroup.WithContext(ctx)
	if b.opts.FetchConcurrency > 0 {
		g.SetLimit(b.opts.FetchConcurrency)
	}
	for _, addr := range addrs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := b.Account(addr)
			return err
		})
	}
	return g.Wait()
}

// record applies the cache write only if the backend is still pinned at block.
func (b *Backend) record(block uint64, write func()) {
	b.pinMu.RLock()
	defer b.pinMu.RUnlock()
	if b.pinned.Load() == block {
		write()
	}
}

func (b *Backend) requestContext() (context.Context, context.CancelFunc) {
	if b.opts.RequestTimeout > 0 {
		return context.WithTimeout(b.ctx, b.opts.RequestTimeout)
	}
	return context.WithCancel(b.ctx)
}

// fetch runs a transport call with timeout, metrics and error typing.
func fetch[T any](b *Backend, kind, target string, block uint64, f func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := b.requestContext()
	defer cancel()

	start := time.Now()
	v, err := f(ctx)
	metricFetchMillis().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"kind": kind})
	if err != nil {
		metricFetchCount().AddWithLabel(1, map[string]string{"kind": kind, "result": "error"})
		var zero T
		return zero, &FetchError{Kind: kind, Target: target, Block: block, cause: err}
	}
	metricFetchCount().AddWithLabel(1, map[string]string{"kind": kind, "result": "ok"})
	logger.Trace("fetched", "kind", kind, "target", target, "block", block)
	return v, nil
}

func (b *Backend) hit(stats *cache.Stats, typ string) {
	stats.Hit()
	b.report(stats, typ)
}

func (b *Backend) miss(stats *cache.Stats, typ string) {
	stats.Miss()
	b.report(stats, typ)
}

// report logs and exports the hit rate periodically.
func (b *Backend) report(stats *cache.Stats, typ string) {
	if !stats.Due(time.Now(), statsLogInterval) {
		return
	}
	changed, hit, miss := stats.Stats()
	if changed {
		logger.Debug("remote cache stats", "type", typ, "hit", hit, "miss", miss, "hitrate", fmt.Sprintf("%.3f", stats.HitRate()))
	}
	metricCacheHitMiss().SetWithLabel(hit, map[string]string{"type": typ, "event": "hit"})
	metricCacheHitMiss().SetWithLabel(miss, map[string]string{"type": typ, "event": "miss"})
}
