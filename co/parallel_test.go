// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	n := 50
	var done atomic.Int32

	start := time.Now()
	Parallel(10, func(enqueue Enqueue) {
		for range n {
			enqueue(func() {
				time.Sleep(time.Millisecond * 20)
				done.Add(1)
			})
		}
	})
	assert.Equal(t, int32(n), done.Load())
	assert.Less(t, time.Since(start), time.Duration(n)*20*time.Millisecond)
}

func TestGoes(t *testing.T) {
	var goes Goes
	var count atomic.Int32
	for range 5 {
		goes.Go(func() { count.Add(1) })
	}
	<-goes.Done()
	assert.Equal(t, int32(5), count.Load())
}
