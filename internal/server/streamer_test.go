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

package server_test

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/quotes"
	"github.com/USA-RedDragon/QuoteHub/internal/server"
	"github.com/USA-RedDragon/QuoteHub/internal/wire"
	"github.com/stretchr/testify/require"
)

func newLoopbackUDPConn(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPerClientStreamerTimesOutWithoutPings(t *testing.T) {
	t.Parallel()

	conn := newLoopbackUDPConn(t)
	client := quotes.NewClientAddress(netip.MustParseAddr("127.0.0.1"), 1)
	quoteRx := make(chan wire.StockQuote, 1)
	livenessRx := make(chan struct{}, 1)
	flag := quotes.NewCancellationFlag()

	streamer := server.NewPerClientStreamer(conn, client, quoteRx, livenessRx, flag, 150*time.Millisecond)

	result := streamer.Run()
	require.Equal(t, client, result.Client)
	require.True(t, result.TimedOut)
	require.False(t, flag.IsCancelled())
}

func TestPerClientStreamerLivenessPreventsTimeout(t *testing.T) {
	t.Parallel()

	conn := newLoopbackUDPConn(t)
	client := quotes.NewClientAddress(netip.MustParseAddr("127.0.0.1"), 1)
	quoteRx := make(chan wire.StockQuote, 1)
	livenessRx := make(chan struct{}, 1)
	flag := quotes.NewCancellationFlag()

	streamer := server.NewPerClientStreamer(conn, client, quoteRx, livenessRx, flag, 200*time.Millisecond)

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case livenessRx <- struct{}{}:
				default:
				}
			}
		}
	}()

	go func() {
		time.Sleep(350 * time.Millisecond)
		flag.Cancel()
	}()

	result := streamer.Run()
	close(stop)
	require.False(t, result.TimedOut)
}

func TestPerClientStreamerExitsOnQuoteChannelClose(t *testing.T) {
	t.Parallel()

	conn := newLoopbackUDPConn(t)
	client := quotes.NewClientAddress(netip.MustParseAddr("127.0.0.1"), 1)
	quoteRx := make(chan wire.StockQuote)
	livenessRx := make(chan struct{})
	flag := quotes.NewCancellationFlag()

	streamer := server.NewPerClientStreamer(conn, client, quoteRx, livenessRx, flag, time.Second)
	close(quoteRx)

	result := streamer.Run()
	require.Equal(t, client, result.Client)
	require.True(t, flag.IsCancelled())
}
