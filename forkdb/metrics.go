// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package forkdb

import "github.com/vechain/forkdb/metrics"

var (
	metricSnapshotCount = metrics.LazyLoadGauge("forkdb_snapshot_count")
	metricRevertCount   = metrics.LazyLoadCounterVec("forkdb_revert_count", []string{"result"})
)
