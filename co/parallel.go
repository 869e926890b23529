// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Enqueue function to enqueue parallel works.
type Enqueue func(work func())

// Parallel to run a batch of work using at most workers go routines.
// If workers <= 0, it uses as many CPU as it can.
// It returns after all enqueued works done.
func Parallel(workers int, cb func(Enqueue)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var goes Goes
	defer goes.Wait()

	ch := make(chan func(), workers*2)
	defer close(ch)
	for range workers {
		goes.Go(func() {
			for work := range ch {
				work()
			}
		})
	}
	cb(func(work func()) { ch <- work })
}
