// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	m := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		m[mf.GetName()] = mf
	}
	return m
}

func TestMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()

	lazyGauge := LazyLoadGauge("test_gauge")
	lazyCounterVec := LazyLoadCounterVec("test_counter_vec", []string{"event"})
	lazyGaugeVec := LazyLoadGaugeVec("test_gauge_vec", []string{"event"})
	lazyHistVec := LazyLoadHistogramVec("test_hist_vec", []string{"kind"}, BucketFetchMillis)

	require.IsType(t, &noopMeters{}, Gauge("noop"))
	require.NotNil(t, HTTPHandler())

	// after initialization, newly created metrics become of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistVec())

	// same name resolves to the same meter
	require.Same(t, lazyGauge(), Gauge("test_gauge"))

	lazyGauge().Set(5)
	lazyGauge().Add(2)
	lazyCounterVec().AddWithLabel(3, map[string]string{"event": "hit"})
	lazyCounterVec().AddWithLabel(4, map[string]string{"event": "miss"})
	lazyGaugeVec().SetWithLabel(9, map[string]string{"event": "hit"})
	lazyHistVec().ObserveWithLabels(12, map[string]string{"kind": "account"})

	m := gather(t)
	require.Equal(t, float64(7), m["forkdb_test_gauge"].Metric[0].GetGauge().GetValue())
	counters := m["forkdb_test_counter_vec"].Metric
	require.Len(t, counters, 2)
	require.Equal(t, float64(7), counters[0].GetCounter().GetValue()+counters[1].GetCounter().GetValue())
	require.Equal(t, float64(9), m["forkdb_test_gauge_vec"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(12), m["forkdb_test_hist_vec"].Metric[0].GetHistogram().GetSampleSum())
}
