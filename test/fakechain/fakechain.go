// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fakechain provides an in-memory remote chain for tests.
package fakechain

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/forkdb/remote"
	"github.com/vechain/forkdb/types"
)

var _ remote.Fetcher = (*Chain)(nil)

type blockState struct {
	accounts map[types.Address]types.AccountInfo
	storage  map[types.Address]map[types.Bytes32]types.Bytes32
}

// Chain is a fake remote chain. Each block carries a full copy of the state.
type Chain struct {
	lock   sync.RWMutex
	blocks []*blockState
	fail   error
	delay  time.Duration

	accountCalls   atomic.Int64
	storageCalls   atomic.Int64
	blockHashCalls atomic.Int64
}

// New creates a chain with an empty genesis block.
func New() *Chain {
	return &Chain{
		blocks: []*blockState{{
			accounts: make(map[types.Address]types.AccountInfo),
			storage:  make(map[types.Address]map[types.Bytes32]types.Bytes32),
		}},
	}
}

// Head returns the number of the latest block.
func (c *Chain) Head() uint64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return uint64(len(c.blocks) - 1)
}

// BlockBuilder mutates the state of a new block.
type BlockBuilder struct {
	s *blockState
}

// SetAccount sets the account info.
func (b *BlockBuilder) SetAccount(addr types.Address, info types.AccountInfo) *BlockBuilder {
	b.s.accounts[addr] = info.Copy()
	return b
}

// SetStorage sets a storage slot.
func (b *BlockBuilder) SetStorage(addr types.Address, key, val types.Bytes32) *BlockBuilder {
	slots := maps.Clone(b.s.storage[addr])
	if slots == nil {
		slots = make(map[types.Bytes32]types.Bytes32)
	}
	slots[key] = val
	b.s.storage[addr] = slots
	return b
}

// AddBlock appends a block derived from the head state and returns its number.
func (c *Chain) AddBlock(build func(b *BlockBuilder)) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	head := c.blocks[len(c.blocks)-1]
	s := &blockState{
		accounts: maps.Clone(head.accounts),
		storage:  maps.Clone(head.storage),
	}
	if build != nil {
		build(&BlockBuilder{s})
	}
	c.blocks = append(c.blocks, s)
	return uint64(len(c.blocks) - 1)
}

// FailWith makes every following call fail with err. Nil restores normal operation.
func (c *Chain) FailWith(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.fail = err
}

// SetDelay delays every call by d.
func (c *Chain) SetDelay(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.delay = d
}

// Calls returns the number of account, storage and block hash calls served.
func (c *Chain) Calls() (accounts, storage, blockHashes int64) {
	return c.accountCalls.Load(), c.storageCalls.Load(), c.blockHashCalls.Load()
}

// Hash returns the deterministic hash of the block number.
func Hash(number uint64) types.Bytes32 {
	var b [8]byte
	for i := range b {
		b[i] = byte(number >> (56 - 8*i))
	}
	return types.Keccak256([]byte("fakechain"), b[:])
}

func (c *Chain) block(ctx context.Context, number uint64) (*blockState, error) {
	c.lock.RLock()
	fail, delay := c.fail, c.delay
	c.lock.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail != nil {
		return nil, fail
	}

	c.lock.RLock()
	defer c.lock.RUnlock()
	if number >= uint64(len(c.blocks)) {
		return nil, errors.Wrapf(remote.ErrUnknownBlock, "block %d", number)
	}
	return c.blocks[number], nil
}

func (c *Chain) Account(ctx context.Context, addr types.Address, block uint64) (types.AccountInfo, error) {
	c.accountCalls.Add(1)
	s, err := c.block(ctx, block)
	if err != nil {
		return types.AccountInfo{}, err
	}
	if info, ok := s.accounts[addr]; ok {
		return info.Copy(), nil
	}
	return types.DefaultAccountInfo(), nil
}

func (c *Chain) Storage(ctx context.Context, addr types.Address, key types.Bytes32, block uint64) (types.Bytes32, error) {
	c.storageCalls.Add(1)
	s, err := c.block(ctx, block)
	if err != nil {
		return types.Bytes32{}, err
	}
	return s.storage[addr][key], nil
}

func (c *Chain) BlockHash(ctx context.Context, number uint64) (types.Bytes32, error) {
	c.blockHashCalls.Add(1)
	if _, err := c.block(ctx, number); err != nil {
		return types.Bytes32{}, err
	}
	return Hash(number), nil
}
