// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/vechain/forkdb/kv"
	"github.com/vechain/forkdb/types"
)

const (
	metaBucket      = kv.Bucket("m")
	accountBucket   = kv.Bucket("a")
	storageBucket   = kv.Bucket("s")
	blockHashBucket = kv.Bucket("h")
)

var pinnedBlockKey = []byte("pinned")

// persistedAccount is the rlp form of an account in the store.
type persistedAccount struct {
	Balance  []byte
	Nonce    uint64
	CodeHash []byte
	Code     []byte
}

func encodeAccount(info *types.AccountInfo) ([]byte, error) {
	var balance []byte
	if info.Balance != nil {
		balance = info.Balance.Bytes()
	}
	raw, err := rlp.EncodeToBytes(&persistedAccount{
		Balance:  balance,
		Nonce:    info.Nonce,
		CodeHash: info.CodeHash.Bytes(),
		Code:     info.Code,
	})
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func decodeAccount(data []byte) (types.AccountInfo, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return types.AccountInfo{}, err
	}
	var pa persistedAccount
	if err := rlp.DecodeBytes(raw, &pa); err != nil {
		return types.AccountInfo{}, err
	}
	info := types.AccountInfo{
		Balance:  types.BytesToBytes32(pa.Balance).Uint256(),
		Nonce:    pa.Nonce,
		CodeHash: types.BytesToBytes32(pa.CodeHash),
	}
	if len(pa.Code) > 0 {
		info.Code = pa.Code
	}
	return info, nil
}

func blockKey(n uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, n)
}

// Persist writes the whole cache into the store, replacing what was persisted before.
// It's a no-op if the backend has no store.
func (b *Backend) Persist() error {
	if b.store == nil {
		return nil
	}
	block := b.pinned.Load()
	m := b.cache.Snapshot()

	// old content is dropped in the same batch, a failed write keeps it intact
	batch := b.store.NewBatch()
	for _, bkt := range []kv.Bucket{metaBucket, accountBucket, storageBucket, blockHashBucket} {
		if err := bkt.StageDeleteAll(b.store, batch); err != nil {
			return errors.Wrap(err, "purge persisted cache")
		}
	}
	for addr, info := range m.Accounts {
		data, err := encodeAccount(&info)
		if err != nil {
			return errors.Wrapf(err, "encode account %v", addr)
		}
		if err := batch.Put(accountBucket.Key(addr[:]), data); err != nil {
			return err
		}
	}
	for addr, slots := range m.Storage {
		for key, val := range slots {
			if err := batch.Put(storageBucket.Key(addr[:], key[:]), val[:]); err != nil {
				return err
			}
		}
	}
	for n, h := range m.BlockHashes {
		if err := batch.Put(blockHashBucket.Key(blockKey(n)), h[:]); err != nil {
			return err
		}
	}
	if err := batch.Put(metaBucket.Key(pinnedBlockKey), blockKey(block)); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write persisted cache")
	}
	if c, ok := b.store.(kv.Compactor); ok {
		if err := c.Compact(kv.Range{}); err != nil {
			logger.Warn("failed to compact cache store", "err", err)
		}
	}
	logger.Debug("cache persisted", "block", block, "accounts", len(m.Accounts), "blockHashes", len(m.BlockHashes))
	return nil
}

// load restores the persisted cache if it was persisted at the pinned block.
func (b *Backend) load() (bool, error) {
	data, err := b.store.Get(metaBucket.Key(pinnedBlockKey))
	if err != nil {
		if b.store.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if len(data) != 8 || binary.BigEndian.Uint64(data) != b.pinned.Load() {
		return false, nil
	}

	m := NewMaps()
	if err := iterate(b.store, accountBucket, func(key, val []byte) error {
		info, err := decodeAccount(val)
		if err != nil {
			return errors.Wrapf(err, "decode account %x", key)
		}
		m.Accounts[types.BytesToAddress(key)] = info
		b.codes.Set(info.CodeHash, info.Code)
		return nil
	}); err != nil {
		return false, err
	}
	if err := iterate(b.store, storageBucket, func(key, val []byte) error {
		if len(key) != types.AddressLength+32 {
			return errors.Errorf("invalid storage key %x", key)
		}
		addr := types.BytesToAddress(key[:types.AddressLength])
		slots, ok := m.Storage[addr]
		if !ok {
			slots = make(map[types.Bytes32]types.Bytes32)
			m.Storage[addr] = slots
		}
		slots[types.BytesToBytes32(key[types.AddressLength:])] = types.BytesToBytes32(val)
		return nil
	}); err != nil {
		return false, err
	}
	if err := iterate(b.store, blockHashBucket, func(key, val []byte) error {
		if len(key) != 8 {
			return errors.Errorf("invalid block hash key %x", key)
		}
		m.BlockHashes[binary.BigEndian.Uint64(key)] = types.BytesToBytes32(val)
		return nil
	}); err != nil {
		return false, err
	}
	b.cache.Restore(m)
	return true, nil
}

func iterate(store kv.Store, bkt kv.Bucket, fn func(key, val []byte) error) error {
	it := store.Iterate(bkt.Range())
	defer it.Release()
	for it.Next() {
		if err := fn(bkt.Strip(it.Key()), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}
