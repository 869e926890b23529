// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package remote answers account, storage, code and block hash queries against a
// block pinned on a remote chain, and keeps every answer in a Cache shared by all
// consumers of the same Backend.
//
// The Cache is the pristine mirror of the remote chain. It only grows by fetching,
// and is cleared or restored wholesale by its owner. Local modifications never
// reach it.
package remote
