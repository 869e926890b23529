// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forkdb

import "fmt"

// Error is the error returned by database operations.
type Error struct {
	Op    string
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("forkdb %s: %v", e.Op, e.cause)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}
