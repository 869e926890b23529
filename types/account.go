// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"bytes"

	"github.com/holiman/uint256"
)

// AccountInfo is the basic info of an account.
type AccountInfo struct {
	Balance  *uint256.Int
	Nonce    uint64
	CodeHash Bytes32
	// Code is nil if not loaded. It can be resolved via CodeHash.
	Code []byte
}

// NewAccountInfo creates an account info, with code hash derived from code.
func NewAccountInfo(balance *uint256.Int, nonce uint64, code []byte) AccountInfo {
	if balance == nil {
		balance = new(uint256.Int)
	}
	info := AccountInfo{
		Balance:  balance,
		Nonce:    nonce,
		CodeHash: EmptyCodeHash,
	}
	if len(code) > 0 {
		info.CodeHash = Keccak256(code)
		info.Code = code
	}
	return info
}

// DefaultAccountInfo returns the info of an account never seen on chain.
func DefaultAccountInfo() AccountInfo {
	return NewAccountInfo(nil, 0, nil)
}

// IsEmpty returns if an account is empty.
// An empty account has zero balance, zero nonce and no code.
func (a *AccountInfo) IsEmpty() bool {
	return (a.Balance == nil || a.Balance.IsZero()) &&
		a.Nonce == 0 &&
		(a.CodeHash == EmptyCodeHash || a.CodeHash.IsZero())
}

// FillCodeHash sets a missing code hash, derived from the loaded code.
func (a *AccountInfo) FillCodeHash() {
	if !a.CodeHash.IsZero() {
		return
	}
	if len(a.Code) > 0 {
		a.CodeHash = Keccak256(a.Code)
	} else {
		a.CodeHash = EmptyCodeHash
	}
}

// Copy returns a deep copy.
func (a *AccountInfo) Copy() AccountInfo {
	cpy := *a
	if a.Balance != nil {
		cpy.Balance = new(uint256.Int).Set(a.Balance)
	} else {
		cpy.Balance = new(uint256.Int)
	}
	if a.Code != nil {
		cpy.Code = bytes.Clone(a.Code)
	}
	return cpy
}

// Equal compares balance, nonce and code hash. Loaded code is not compared.
func (a *AccountInfo) Equal(b *AccountInfo) bool {
	balA, balB := a.Balance, b.Balance
	if balA == nil {
		balA = new(uint256.Int)
	}
	if balB == nil {
		balB = new(uint256.Int)
	}
	return balA.Eq(balB) && a.Nonce == b.Nonce && a.CodeHash == b.CodeHash
}

// AccountStatus flags the changes an execution made to an account.
type AccountStatus uint8

const (
	// Touched marks an account that was accessed and should be committed.
	Touched AccountStatus = 1 << iota
	// Created marks an account created during execution. Its prior storage is discarded.
	Created
	// SelfDestructed marks an account destroyed during execution.
	SelfDestructed
)

// Has reports whether all flags in f are set.
func (s AccountStatus) Has(f AccountStatus) bool {
	return s&f == f
}

// Account is the post-execution state of an account, as the entry of a commit batch.
type Account struct {
	Info    AccountInfo
	Storage map[Bytes32]Bytes32 // changed slots only
	Status  AccountStatus
}

// NewTouchedAccount creates a commit entry marked as touched.
func NewTouchedAccount(info AccountInfo, storage map[Bytes32]Bytes32) *Account {
	return &Account{Info: info, Storage: storage, Status: Touched}
}
