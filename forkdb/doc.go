// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package forkdb implements a state database forked from a remote chain.
//
// Queries consult the local overlay first and fall back to the shared remote
// source, remembering what was fetched. Mutations only ever land in the overlay.
// Snapshots capture both the overlay and the remote cache, and reverting to a
// snapshot discards every snapshot taken after it.
package forkdb
