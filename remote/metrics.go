// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remote

import (
	"github.com/vechain/forkdb/metrics"
)

var (
	metricCacheHitMiss = metrics.LazyLoadGaugeVec("remote_cache_hit_miss", []string{"type", "event"})
	metricFetchCount   = metrics.LazyLoadCounterVec("remote_fetch_count", []string{"kind", "result"})
	metricFetchMillis  = metrics.LazyLoadHistogramVec("remote_fetch_duration_ms", []string{"kind"}, metrics.BucketFetchMillis)
)
