// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package statediff models the state diffs produced by trace_call style tracers,
// and builds pre-state overlays out of them.
package statediff

import (
	"bytes"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/vechain/forkdb/types"
)

// Kind is the kind of change of a value.
type Kind uint8

const (
	// Same the value was not changed.
	Same Kind = iota
	// Born the value was created.
	Born
	// Died the value was removed.
	Died
	// Changed the value was changed.
	Changed
)

func (k Kind) String() string {
	switch k {
	case Same:
		return "same"
	case Born:
		return "born"
	case Died:
		return "died"
	case Changed:
		return "changed"
	}
	return "unknown"
}

// Diff is the change of a single value.
// Value is set for Born and Died, From and To for Changed.
type Diff[T any] struct {
	Kind  Kind
	Value T
	From  T
	To    T
}

type fromTo[T any] struct {
	From T `json:"from"`
	To   T `json:"to"`
}

type diffJSON[T any] struct {
	Born    *T         `json:"+,omitempty"`
	Died    *T         `json:"-,omitempty"`
	Changed *fromTo[T] `json:"*,omitempty"`
}

var sameJSON = []byte(`"="`)

// MarshalJSON implements json.Marshaler.
func (d Diff[T]) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case Same:
		return sameJSON, nil
	case Born:
		return json.Marshal(&diffJSON[T]{Born: &d.Value})
	case Died:
		return json.Marshal(&diffJSON[T]{Died: &d.Value})
	case Changed:
		return json.Marshal(&diffJSON[T]{Changed: &fromTo[T]{d.From, d.To}})
	}
	return nil, errors.Errorf("invalid diff kind %d", d.Kind)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Diff[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), sameJSON) {
		*d = Diff[T]{Kind: Same}
		return nil
	}
	var obj diffJSON[T]
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.Born != nil:
		*d = Diff[T]{Kind: Born, Value: *obj.Born}
	case obj.Died != nil:
		*d = Diff[T]{Kind: Died, Value: *obj.Died}
	case obj.Changed != nil:
		*d = Diff[T]{Kind: Changed, From: obj.Changed.From, To: obj.Changed.To}
	default:
		return errors.Errorf("invalid diff %s", data)
	}
	return nil
}

// Pre returns the value before the change.
// Only changed and died values have one.
func (d *Diff[T]) Pre() (T, bool) {
	switch d.Kind {
	case Changed:
		return d.From, true
	case Died:
		return d.Value, true
	}
	var zero T
	return zero, false
}

// AccountDiff is the change of an account.
type AccountDiff struct {
	Balance Diff[*hexutil.Big]                    `json:"balance"`
	Nonce   Diff[hexutil.Uint64]                  `json:"nonce"`
	Code    Diff[hexutil.Bytes]                   `json:"code"`
	Storage map[types.Bytes32]Diff[types.Bytes32] `json:"storage"`
}

// StateDiff is the change of state, by account.
type StateDiff map[types.Address]*AccountDiff

// Merge merges diffs in order. For accounts present in more than one diff,
// the first one is kept, since it carries the starting state.
func Merge(diffs ...StateDiff) StateDiff {
	merged := make(StateDiff)
	for _, diff := range diffs {
		for addr, acc := range diff {
			if _, ok := merged[addr]; !ok {
				merged[addr] = acc
			}
		}
	}
	return merged
}
