// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forkdb

import (
	"math"
	"sync"
)

// Snapshots stores snapshots by monotonically increasing id.
// Snapshots form a single timeline, so removing one removes all the later ones as well.
type Snapshots struct {
	lock sync.Mutex
	m    map[uint64]*Snapshot
	next uint64
}

// NewSnapshots creates an empty store.
func NewSnapshots() *Snapshots {
	return &Snapshots{m: make(map[uint64]*Snapshot)}
}

// Insert stores the snapshot and returns its id.
// The id counter saturates at math.MaxUint64, past which the last id is overwritten.
func (s *Snapshots) Insert(snap *Snapshot) uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.next
	s.m[id] = snap
	if s.next < math.MaxUint64 {
		s.next++
	}
	metricSnapshotCount().Set(int64(len(s.m)))
	return id
}

// Get returns the snapshot with the given id.
func (s *Snapshots) Get(id uint64) (*Snapshot, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	snap, ok := s.m[id]
	return snap, ok
}

// Remove removes the snapshot with the given id, along with all snapshots with greater ids.
// The later ones are removed even if id is absent.
func (s *Snapshots) Remove(id uint64) (*Snapshot, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	snap, ok := s.m[id]
	delete(s.m, id)
	for k := range s.m {
		if k > id {
			delete(s.m, k)
		}
	}
	metricSnapshotCount().Set(int64(len(s.m)))
	return snap, ok
}

// Clear removes all snapshots and returns how many were removed. Ids are never reused.
func (s *Snapshots) Clear() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	n := len(s.m)
	clear(s.m)
	metricSnapshotCount().Set(0)
	return n
}

// Len returns the number of stored snapshots.
func (s *Snapshots) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.m)
}
