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

package server

import (
	"log/slog"
	"net"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/quotes"
	"github.com/USA-RedDragon/QuoteHub/internal/wire"
)

// DefaultLivenessTimeout is how long a client may go without a ping
// before its streamer tears the subscription down.
const DefaultLivenessTimeout = 5 * time.Second

// streamerPollInterval is how often the timeout branch fires when
// neither a ping nor a quote is ready; it bounds shutdown latency.
const streamerPollInterval = 100 * time.Millisecond

// PerClientStreamer owns one subscriber's delivery loop: it consumes
// quotes and liveness pings for a single client and writes UDP
// datagrams, enforcing the liveness timeout.
type PerClientStreamer struct {
	conn       *net.UDPConn
	client     quotes.ClientAddress
	quoteRx    chan wire.StockQuote
	livenessRx chan struct{}
	flag       *quotes.CancellationFlag
	timeout    time.Duration
}

// StreamResult is what a PerClientStreamer reports when its Run loop
// returns.
type StreamResult struct {
	Client   quotes.ClientAddress
	TimedOut bool
}

// NewPerClientStreamer builds a streamer for client, reading quotes
// off quoteRx and liveness signals off livenessRx, writing datagrams
// to conn.
func NewPerClientStreamer(conn *net.UDPConn, client quotes.ClientAddress, quoteRx chan wire.StockQuote, livenessRx chan struct{}, flag *quotes.CancellationFlag, timeout time.Duration) *PerClientStreamer {
	if timeout <= 0 {
		timeout = DefaultLivenessTimeout
	}
	return &PerClientStreamer{
		conn:       conn,
		client:     client,
		quoteRx:    quoteRx,
		livenessRx: livenessRx,
		flag:       flag,
		timeout:    timeout,
	}
}

// Run drives the streamer until the client times out, its channels
// close, a fatal encoding error occurs, or the shared CancellationFlag
// is set. It always reports the client's address so the caller can
// evict its routes (even if the client never sent a single ping).
func (s *PerClientStreamer) Run() StreamResult {
	lastPingAt := time.Now()
	ticker := time.NewTicker(streamerPollInterval)
	defer ticker.Stop()

	for {
		// Liveness is checked first, non-blocking, so a burst of
		// quotes can never starve a ping that's already queued.
		select {
		case _, ok := <-s.livenessRx:
			if !ok {
				s.flag.Cancel()
				return StreamResult{Client: s.client}
			}
			lastPingAt = time.Now()
			continue
		default:
		}

		select {
		case _, ok := <-s.livenessRx:
			if !ok {
				s.flag.Cancel()
				return StreamResult{Client: s.client}
			}
			lastPingAt = time.Now()

		case q, ok := <-s.quoteRx:
			if !ok {
				s.flag.Cancel()
				return StreamResult{Client: s.client}
			}
			if err := s.sendQuote(q); err != nil {
				slog.Warn("dropping client after send failure", "client", s.client, "error", err)
				return StreamResult{Client: s.client}
			}

		case <-ticker.C:
			if s.flag.IsCancelled() {
				return StreamResult{Client: s.client}
			}
			if time.Since(lastPingAt) > s.timeout {
				slog.Info("client timed out", "client", s.client, "timeout", s.timeout)
				return StreamResult{Client: s.client, TimedOut: true}
			}
		}
	}
}

func (s *PerClientStreamer) sendQuote(q wire.StockQuote) error {
	resp := wire.Response{Kind: wire.ResponseQuote, Quote: q}
	encoded, err := wire.EncodeResponse(&resp)
	if err != nil {
		s.flag.Cancel()
		return err
	}
	_, err = s.conn.WriteToUDP(encoded, s.client.UDPAddr())
	return err
}
