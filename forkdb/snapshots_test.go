// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forkdb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/forkdb/remote"
)

func newSnapshot() *Snapshot {
	return &Snapshot{overlay: NewOverlay(), remote: remote.NewMaps()}
}

func TestSnapshotsInsertGet(t *testing.T) {
	s := NewSnapshots()

	a, b := newSnapshot(), newSnapshot()
	assert.Equal(t, uint64(0), s.Insert(a))
	assert.Equal(t, uint64(1), s.Insert(b))

	got, ok := s.Get(0)
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = s.Get(2)
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestSnapshotsRemoveCascades(t *testing.T) {
	s := NewSnapshots()
	for range 5 {
		s.Insert(newSnapshot())
	}

	snap, ok := s.Remove(2)
	assert.True(t, ok)
	assert.NotNil(t, snap)
	assert.Equal(t, 2, s.Len())
	for _, id := range []uint64{2, 3, 4} {
		_, ok := s.Get(id)
		assert.False(t, ok, "id %d", id)
	}

	// absent id still cascades
	s.Insert(newSnapshot()) // 5
	s.Insert(newSnapshot()) // 6
	_, ok = s.Remove(3)
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())

	_, ok = s.Get(1)
	assert.True(t, ok)
}

func TestSnapshotsSaturate(t *testing.T) {
	s := NewSnapshots()
	s.next = math.MaxUint64 - 1

	assert.Equal(t, uint64(math.MaxUint64-1), s.Insert(newSnapshot()))
	assert.Equal(t, uint64(math.MaxUint64), s.Insert(newSnapshot()))
	assert.Equal(t, uint64(math.MaxUint64), s.Insert(newSnapshot()))
	assert.Equal(t, 2, s.Len())
}

func TestSnapshotsClear(t *testing.T) {
	s := NewSnapshots()
	s.Insert(newSnapshot())
	s.Insert(newSnapshot())

	assert.Equal(t, 2, s.Clear())
	assert.Zero(t, s.Len())
	assert.Equal(t, uint64(2), s.Insert(newSnapshot()))
}
