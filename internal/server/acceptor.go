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
	"net/netip"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/quotes"
	"github.com/USA-RedDragon/QuoteHub/internal/wire"
)

// tcpHandshakeTimeout bounds how long a client may take to send its
// subscription request and read the response.
const tcpHandshakeTimeout = 5 * time.Second

// ClientHandle is how a newly spawned PerClientStreamer reports back
// to the Supervisor: Done receives exactly once, when the streamer's
// Run loop returns.
type ClientHandle struct {
	Done <-chan StreamResult
}

// ConnectionAcceptor parses a single TCP subscription handshake,
// registers the new subscriber with both routers, and spawns its
// PerClientStreamer.
type ConnectionAcceptor struct {
	udpConn  *net.UDPConn
	tickers  *quotes.TickersRouter
	monitor  *quotes.MonitoringRouter
	flag     *quotes.CancellationFlag
	handles  chan<- ClientHandle
	timeout  time.Duration
}

// NewConnectionAcceptor builds an acceptor that writes quote
// datagrams out over udpConn and reports spawned streamers on
// handles.
func NewConnectionAcceptor(udpConn *net.UDPConn, tickers *quotes.TickersRouter, monitor *quotes.MonitoringRouter, flag *quotes.CancellationFlag, handles chan<- ClientHandle) *ConnectionAcceptor {
	return &ConnectionAcceptor{
		udpConn: udpConn,
		tickers: tickers,
		monitor: monitor,
		flag:    flag,
		handles: handles,
		timeout: DefaultLivenessTimeout,
	}
}

// Handle services one accepted TCP connection to completion, always
// closing it before returning.
func (a *ConnectionAcceptor) Handle(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(tcpHandshakeTimeout))

	buf := make([]byte, wire.MaxMessageSize)
	n, err := conn.Read(buf)
	if err != nil {
		slog.Debug("tcp read failed during handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	req, err := wire.DecodeRequest(buf[:n])
	if err != nil {
		a.reply(conn, wire.Response{Kind: wire.ResponseError, Message: "Invalid request"})
		return
	}

	if req.Kind != wire.RequestStreamTickers {
		a.reply(conn, wire.Response{Kind: wire.ResponseError, Message: "Unexpected request"})
		return
	}

	client, ok := parseClientAddress(req.Address, req.Port)
	if !ok {
		a.reply(conn, wire.Response{Kind: wire.ResponseError, Message: "Invalid request"})
		return
	}

	quoteTx := make(chan wire.StockQuote, quotes.QuoteChannelSize)
	livenessTx := make(chan struct{}, quotes.LivenessChannelSize)

	a.tickers.AddRoutes(req.Tickers, quoteTx, client)
	a.monitor.AddRoute(client, livenessTx)

	streamer := NewPerClientStreamer(a.udpConn, client, quoteTx, livenessTx, a.flag, a.timeout)
	done := make(chan StreamResult, 1)
	go func() {
		done <- streamer.Run()
	}()

	select {
	case a.handles <- ClientHandle{Done: done}:
	case <-time.After(tcpHandshakeTimeout):
		slog.Error("supervisor did not accept new client handle in time", "client", client)
	}

	slog.Info("client subscribed", "client", client, "tickers", req.Tickers)
	a.reply(conn, wire.Response{Kind: wire.ResponseOk})
}

func (a *ConnectionAcceptor) reply(conn net.Conn, resp wire.Response) {
	encoded, err := wire.EncodeResponse(&resp)
	if err != nil {
		slog.Error("failed to encode tcp reply", "error", err)
		return
	}
	if _, err := conn.Write(encoded); err != nil {
		slog.Debug("failed to write tcp reply", "remote", conn.RemoteAddr(), "error", err)
	}
}

func parseClientAddress(address string, port uint16) (quotes.ClientAddress, bool) {
	ip, err := netip.ParseAddr(address)
	if err != nil {
		return quotes.ClientAddress{}, false
	}
	return quotes.NewClientAddress(ip, port), true
}
