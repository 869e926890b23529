// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/forkdb/kv"
	"github.com/vechain/forkdb/lvldb"
	"github.com/vechain/forkdb/remote"
	"github.com/vechain/forkdb/test/fakechain"
	"github.com/vechain/forkdb/types"
)

var (
	alice    = types.BytesToAddress([]byte("alice"))
	contract = types.BytesToAddress([]byte("contract"))
	slot     = types.BytesToBytes32([]byte("slot"))
	code     = []byte{0x60, 0x80, 0x60, 0x40}
)

func newChain() *fakechain.Chain {
	chain := fakechain.New()
	chain.AddBlock(func(b *fakechain.BlockBuilder) {
		b.SetAccount(alice, types.NewAccountInfo(uint256.NewInt(10), 1, nil))
		b.SetAccount(contract, types.NewAccountInfo(uint256.NewInt(0), 1, code))
		b.SetStorage(contract, slot, types.BytesToBytes32([]byte{7}))
	})
	chain.AddBlock(func(b *fakechain.BlockBuilder) {
		b.SetAccount(alice, types.NewAccountInfo(uint256.NewInt(20), 2, nil))
	})
	return chain
}

func TestBackendReadThrough(t *testing.T) {
	chain := newChain()
	b := remote.New(context.Background(), chain, 1, remote.Options{})

	info, err := b.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), info.Balance.Uint64())

	// served from cache
	info, err = b.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), info.Balance.Uint64())
	accounts, _, _ := chain.Calls()
	assert.Equal(t, int64(1), accounts)

	cached, ok := b.Cache().Account(alice)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), cached.Nonce)

	v, err := b.Storage(contract, slot)
	require.NoError(t, err)
	assert.Equal(t, types.BytesToBytes32([]byte{7}), v)

	h, err := b.BlockHash(1)
	require.NoError(t, err)
	assert.Equal(t, fakechain.Hash(1), h)
}

func TestBackendAbsentAccount(t *testing.T) {
	b := remote.New(context.Background(), newChain(), 1, remote.Options{})

	info, err := b.Account(types.BytesToAddress([]byte("nobody")))
	require.NoError(t, err)
	assert.True(t, info.IsEmpty())
	assert.Equal(t, types.EmptyCodeHash, info.CodeHash)

	v, err := b.Storage(types.BytesToAddress([]byte("nobody")), slot)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestBackendCode(t *testing.T) {
	b := remote.New(context.Background(), newChain(), 1, remote.Options{})

	got, err := b.Code(types.EmptyCodeHash)
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = b.Code(types.Keccak256(code))
	assert.True(t, errors.Is(err, remote.ErrMissingCode))

	info, err := b.Account(contract)
	require.NoError(t, err)
	assert.Equal(t, types.Keccak256(code), info.CodeHash)

	got, err = b.Code(info.CodeHash)
	assert.NoError(t, err)
	assert.Equal(t, code, got)
}

func TestBackendFetchError(t *testing.T) {
	chain := newChain()
	b := remote.New(context.Background(), chain, 1, remote.Options{})

	injected := errors.New("connection refused")
	chain.FailWith(injected)

	_, err := b.Account(alice)
	require.Error(t, err)
	assert.True(t, errors.Is(err, injected))

	var fe *remote.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "account", fe.Kind)
	assert.Equal(t, uint64(1), fe.Block)

	_, ok := b.Cache().Account(alice)
	assert.False(t, ok, "failures are not cached")

	chain.FailWith(nil)
	_, err = b.Account(alice)
	assert.NoError(t, err)
}

func TestBackendRequestTimeout(t *testing.T) {
	chain := newChain()
	chain.SetDelay(time.Second)
	b := remote.New(context.Background(), chain, 1, remote.Options{RequestTimeout: 10 * time.Millisecond})

	_, err := b.Account(alice)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestBackendCollapsesConcurrentMisses(t *testing.T) {
	chain := newChain()
	chain.SetDelay(50 * time.Millisecond)
	b := remote.New(context.Background(), chain, 1, remote.Options{})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := b.Account(alice)
			assert.NoError(t, err)
			assert.Equal(t, uint64(10), info.Balance.Uint64())
		}()
	}
	wg.Wait()

	accounts, _, _ := chain.Calls()
	assert.Equal(t, int64(1), accounts)
}

func TestBackendSetPinnedBlock(t *testing.T) {
	chain := newChain()
	b := remote.New(context.Background(), chain, 1, remote.Options{})

	err := b.SetPinnedBlock(100)
	assert.True(t, errors.Is(err, remote.ErrUnknownBlock))
	assert.Equal(t, uint64(1), b.PinnedBlock())

	require.NoError(t, b.SetPinnedBlock(2))
	assert.Equal(t, uint64(2), b.PinnedBlock())

	info, err := b.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), info.Balance.Uint64())
}

func TestBackendPrefetch(t *testing.T) {
	chain := newChain()
	b := remote.New(context.Background(), chain, 1, remote.Options{FetchConcurrency: 2})

	require.NoError(t, b.Prefetch(context.Background(), []types.Address{alice, contract}))
	accounts, _, _ := b.Cache().Len()
	assert.Equal(t, 2, accounts)

	chain.FailWith(errors.New("down"))
	assert.Error(t, b.Prefetch(context.Background(), []types.Address{types.BytesToAddress([]byte("x"))}))
}

func TestBackendPersist(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	chain := newChain()
	b, err := remote.NewWithStore(context.Background(), chain, 1, store, remote.Options{})
	require.NoError(t, err)

	_, err = b.Account(alice)
	require.NoError(t, err)
	_, err = b.Account(contract)
	require.NoError(t, err)
	_, err = b.Storage(contract, slot)
	require.NoError(t, err)
	_, err = b.BlockHash(1)
	require.NoError(t, err)
	require.NoError(t, b.Persist())

	// a dead transport proves everything below is served from the store
	chain.FailWith(errors.New("down"))

	reopened, err := remote.NewWithStore(context.Background(), chain, 1, store, remote.Options{})
	require.NoError(t, err)

	info, err := reopened.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), info.Balance.Uint64())
	assert.Equal(t, uint64(1), info.Nonce)

	info, err = reopened.Account(contract)
	require.NoError(t, err)
	got, err := reopened.Code(info.CodeHash)
	require.NoError(t, err)
	assert.Equal(t, code, got)

	v, err := reopened.Storage(contract, slot)
	require.NoError(t, err)
	assert.Equal(t, types.BytesToBytes32([]byte{7}), v)

	h, err := reopened.BlockHash(1)
	require.NoError(t, err)
	assert.Equal(t, fakechain.Hash(1), h)

	// persisted at another block, ignored
	other, err := remote.NewWithStore(context.Background(), chain, 2, store, remote.Options{})
	require.NoError(t, err)
	accounts, slots, hashes := other.Cache().Len()
	assert.Zero(t, accounts+slots+hashes)
}

type failingBatchStore struct {
	kv.Store
}

func (s failingBatchStore) NewBatch() kv.Batch {
	return failingBatch{s.Store.NewBatch()}
}

type failingBatch struct {
	kv.Batch
}

func (failingBatch) Write() error {
	return errors.New("disk full")
}

func TestBackendPersistFailureKeepsStore(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	chain := newChain()
	b, err := remote.NewWithStore(context.Background(), chain, 1, store, remote.Options{})
	require.NoError(t, err)
	_, err = b.Account(alice)
	require.NoError(t, err)
	require.NoError(t, b.Persist())

	failing, err := remote.NewWithStore(context.Background(), chain, 1, failingBatchStore{store}, remote.Options{})
	require.NoError(t, err)
	_, err = failing.Account(contract)
	require.NoError(t, err)
	assert.Error(t, failing.Persist())

	reopened, err := remote.NewWithStore(context.Background(), chain, 1, store, remote.Options{})
	require.NoError(t, err)
	accounts, _, _ := reopened.Cache().Len()
	assert.Equal(t, 1, accounts)
	_, ok := reopened.Cache().Account(alice)
	assert.True(t, ok)
}

func TestBackendCodeIsCopied(t *testing.T) {
	b := remote.New(context.Background(), newChain(), 1, remote.Options{})

	// held by a cached account only
	other := []byte{0x60, 0x01}
	info := types.NewAccountInfo(uint256.NewInt(0), 0, other)
	b.Cache().SetAccount(types.BytesToAddress([]byte("other")), info)

	got, err := b.Code(info.CodeHash)
	require.NoError(t, err)
	got[0] = 0xff

	cached, ok := b.Cache().Account(types.BytesToAddress([]byte("other")))
	require.True(t, ok)
	assert.Equal(t, []byte{0x60, 0x01}, cached.Code)
}

func TestBackendPersistWithoutStore(t *testing.T) {
	b := remote.New(context.Background(), newChain(), 1, remote.Options{})
	assert.NoError(t, b.Persist())
}
