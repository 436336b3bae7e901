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

package quotes

import "github.com/puzpuzpuz/xsync/v4"

// LivenessChannelSize bounds a client's liveness-signal queue. One
// ping every few seconds never needs more than a handful of slots.
const LivenessChannelSize = 8

// MonitoringRouter maps a ClientAddress to the channel its
// PerClientStreamer watches for liveness pings.
type MonitoringRouter struct {
	routes *xsync.Map[ClientAddress, chan struct{}]
}

// NewMonitoringRouter returns an empty router.
func NewMonitoringRouter() *MonitoringRouter {
	return &MonitoringRouter{routes: xsync.NewMap[ClientAddress, chan struct{}]()}
}

// AddRoute registers tx as the liveness channel for client, replacing
// any prior registration for the same address.
func (m *MonitoringRouter) AddRoute(client ClientAddress, tx chan struct{}) {
	m.routes.Store(client, tx)
}

// SendPing signals liveness for client. Missing clients are a silent
// no-op; a full channel evicts the client's route. A closed channel is
// not detected: sending on it panics.
func (m *MonitoringRouter) SendPing(client ClientAddress) {
	tx, ok := m.routes.Load(client)
	if !ok {
		return
	}
	select {
	case tx <- struct{}{}:
	default:
		m.Delete(client)
	}
}

// Delete removes client's route, if any.
func (m *MonitoringRouter) Delete(client ClientAddress) {
	m.routes.Delete(client)
}
