// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/syndtr/goleveldb/leveldb/util"

// Bucket provides logical bucket for kv store.
// A bucket is a key prefix.
type Bucket string

// Key returns the full key of k in the bucket.
func (b Bucket) Key(k ...[]byte) []byte {
	n := len(b)
	for _, p := range k {
		n += len(p)
	}
	key := make([]byte, 0, n)
	key = append(key, b...)
	for _, p := range k {
		key = append(key, p...)
	}
	return key
}

// Strip returns key without the bucket prefix.
func (b Bucket) Strip(key []byte) []byte {
	return key[len(b):]
}

// Range returns the range covering all keys in the bucket.
func (b Bucket) Range() Range {
	r := util.BytesPrefix([]byte(b))
	return Range{Start: r.Start, Limit: r.Limit}
}

// DeleteAll deletes all keys in the bucket by a batch.
func (b Bucket) DeleteAll(s Store) error {
	batch := s.NewBatch()
	if err := b.StageDeleteAll(s, batch); err != nil {
		return err
	}
	return batch.Write()
}

// StageDeleteAll puts the deletion of all keys in the bucket into p.
func (b Bucket) StageDeleteAll(s Store, p Putter) error {
	it := s.Iterate(b.Range())
	defer it.Release()

	for it.Next() {
		if err := p.Delete(append([]byte(nil), it.Key()...)); err != nil {
			return err
		}
	}
	return it.Error()
}
