// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co provides goroutine life-cycle helpers.
package co

import (
	"sync"
)

// Goes tracks go routines so that they can be waited for as a whole.
// The zero value is ready to use.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a tracked go routine.
func (g *Goes) Go(f func()) {
	g.wg.Go(f)
}

// Wait blocks until all tracked go routines return.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once all tracked go routines return.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
