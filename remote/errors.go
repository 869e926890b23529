// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotResident is returned by lookups that are not allowed to fetch, when the data
	// is not materialized yet.
	ErrNotResident = errors.New("not resident")
	// ErrMissingCode is returned when code is looked up by a hash never loaded.
	ErrMissingCode = errors.New("missing code")
	// ErrUnknownBlock is returned when the remote chain has no such block.
	ErrUnknownBlock = errors.New("unknown block")
)

// FetchError is the error caused by a failed remote fetch.
type FetchError struct {
	Kind   string // account, storage or blockhash
	Target string
	Block  uint64
	cause  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s at block %d: %v", e.Kind, e.Target, e.Block, e.cause)
}

// Unwrap returns the transport error.
func (e *FetchError) Unwrap() error {
	return e.cause
}
