// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStats(t *testing.T) {
	cs := &Stats{}
	assert.Equal(t, float64(0), cs.HitRate())

	cs.Hit()
	cs.Miss()
	_, hit, miss := cs.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
	assert.Equal(t, 0.5, cs.HitRate())

	changed, _, _ := cs.Stats()
	assert.False(t, changed)

	cs.Hit()
	assert.Equal(t, int64(3), cs.Hit())

	changed, hit, miss = cs.Stats()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(1), miss)
	assert.True(t, changed)
}

func TestStatsDue(t *testing.T) {
	cs := &Stats{}
	now := time.Now()
	assert.True(t, cs.Due(now, time.Second))
	assert.False(t, cs.Due(now.Add(500*time.Millisecond), time.Second))
	assert.True(t, cs.Due(now.Add(2*time.Second), time.Second))
}

func TestLRU(t *testing.T) {
	_, err := NewLRU[int, string](0)
	assert.Error(t, err)

	c, err := NewLRU[int, string](2)
	require.NoError(t, err)

	c.Add(1, "a")
	c.Add(2, "b")
	c.Add(3, "c") // evicts 1

	_, ok := c.Get(1)
	assert.False(t, ok)
	v, ok := c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "c", v)
	assert.Equal(t, 2, c.Len())

	loads := 0
	loader := func(k int) (string, error) {
		loads++
		if k < 0 {
			return "", errors.New("negative")
		}
		return "loaded", nil
	}

	v, err = c.GetOrLoad(4, loader)
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
	v, err = c.GetOrLoad(4, loader)
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad(-1, loader)
	assert.Error(t, err)
	_, ok = c.Get(-1)
	assert.False(t, ok)

	_, hit, miss := c.Stats().Stats()
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(4), miss)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
