// SPDX-License-Identifier: AGPL-3.0-or-later
// QuoteHub - A pub/sub stock quote streaming server
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/QuoteHub>

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the quote server exposes.
type Metrics struct {
	QuotesSentTotal  *prometheus.CounterVec
	PingsTotal       prometheus.Counter
	ClientsConnected prometheus.Gauge
	ClientTimeouts   prometheus.Counter
}

// NewMetrics builds and registers the quote server's collectors.
func NewMetrics() *Metrics {
	metrics := &Metrics{
		QuotesSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotehub_quotes_sent_total",
			Help: "The total number of quote datagrams sent, by ticker",
		}, []string{"ticker"}),
		PingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotehub_pings_total",
			Help: "The total number of liveness pings received",
		}),
		ClientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quotehub_clients_connected",
			Help: "The current number of subscribed clients",
		}),
		ClientTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotehub_client_timeouts_total",
			Help: "The total number of clients evicted for liveness timeout",
		}),
	}
	metrics.register()
	return metrics
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.QuotesSentTotal)
	prometheus.MustRegister(m.PingsTotal)
	prometheus.MustRegister(m.ClientsConnected)
	prometheus.MustRegister(m.ClientTimeouts)
}

// RecordQuoteSent increments the per-ticker quote counter.
func (m *Metrics) RecordQuoteSent(ticker string) {
	m.QuotesSentTotal.WithLabelValues(ticker).Inc()
}

// RecordPing increments the ping counter.
func (m *Metrics) RecordPing() {
	m.PingsTotal.Inc()
}

// IncrementActiveClients bumps the connected-clients gauge.
func (m *Metrics) IncrementActiveClients() {
	m.ClientsConnected.Inc()
}

// DecrementActiveClients lowers the connected-clients gauge.
func (m *Metrics) DecrementActiveClients() {
	m.ClientsConnected.Dec()
}

// RecordClientTimeout increments the timeout-eviction counter.
func (m *Metrics) RecordClientTimeout() {
	m.ClientTimeouts.Inc()
}
