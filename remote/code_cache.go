// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"bytes"

	"github.com/qianbin/directcache"

	"github.com/vechain/forkdb/cache"
	"github.com/vechain/forkdb/types"
)

// codeCache caches contract code by code hash.
// Code is content addressed, so entries never go stale across re-pinning.
type codeCache struct {
	blobs *directcache.Cache
	stats cache.Stats
}

func newCodeCache(sizeMB int) *codeCache {
	if sizeMB <= 0 {
		sizeMB = 16
	}
	return &codeCache{
		blobs: directcache.New(sizeMB * 1024 * 1024),
	}
}

// Get returns a copy of the cached code.
func (c *codeCache) Get(hash types.Bytes32) ([]byte, bool) {
	var code []byte
	if c.blobs.AdvGet(hash[:], func(val []byte) {
		code = bytes.Clone(val)
	}, false) {
		c.stats.Hit()
		return code, true
	}
	c.stats.Miss()
	return nil, false
}

// Set adds code. Empty code is skipped.
func (c *codeCache) Set(hash types.Bytes32, code []byte) {
	if len(code) == 0 {
		return
	}
	_ = c.blobs.Set(hash[:], code)
}
