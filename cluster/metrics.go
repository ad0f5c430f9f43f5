// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cluster

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "counter_cli"

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	calls       *prometheus.CounterVec
	errors      *prometheus.CounterVec
	airdropped  prometheus.Counter
	txsSent     prometheus.Counter
	confirmWait prometheus.Histogram
}

func NewMetrics(r prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls",
			Help:      "number of rpc calls issued",
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_errors",
			Help:      "number of rpc calls that returned an error",
		}, []string{"method"}),
		airdropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "airdropped_lamports",
			Help:      "lamports received through confirmed airdrops",
		}),
		txsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_sent",
			Help:      "number of transactions submitted",
		}),
		confirmWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirm_wait_seconds",
			Help:      "time spent waiting for signature confirmation",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.calls),
		r.Register(m.errors),
		r.Register(m.airdropped),
		r.Register(m.txsSent),
		r.Register(m.confirmWait),
	)
	return m, errs.Err
}

func (m *Metrics) observeCall(method string, err error) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(method).Inc()
	if err != nil {
		m.errors.WithLabelValues(method).Inc()
	}
}

func (m *Metrics) recordAirdrop(lamports uint64) {
	if m == nil {
		return
	}
	m.airdropped.Add(float64(lamports))
}

func (m *Metrics) recordTxSent() {
	if m == nil {
		return
	}
	m.txsSent.Inc()
}

func (m *Metrics) recordConfirmWait(seconds float64) {
	if m == nil {
		return
	}
	m.confirmWait.Observe(seconds)
}
