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
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/quotes"
	"github.com/USA-RedDragon/QuoteHub/internal/wire"
)

// udpReadTimeout bounds a single ReadFromUDP call so the listener can
// observe cancellation promptly even with no traffic.
const udpReadTimeout = 500 * time.Millisecond

// PingRecorder observes liveness pings, without this package needing
// to depend on a concrete metrics backend.
type PingRecorder interface {
	RecordPing()
}

// KeepAliveListener owns the shared UDP socket: it answers Ping
// requests with Pong and forwards liveness into the MonitoringRouter.
type KeepAliveListener struct {
	conn     *net.UDPConn
	monitor  *quotes.MonitoringRouter
	flag     *quotes.CancellationFlag
	recorder PingRecorder
}

// NewKeepAliveListener builds a listener bound to conn. recorder may
// be nil.
func NewKeepAliveListener(conn *net.UDPConn, monitor *quotes.MonitoringRouter, flag *quotes.CancellationFlag, recorder PingRecorder) *KeepAliveListener {
	return &KeepAliveListener{conn: conn, monitor: monitor, flag: flag, recorder: recorder}
}

// Run receives datagrams until the CancellationFlag is set.
func (l *KeepAliveListener) Run() {
	buf := make([]byte, wire.MaxMessageSize)
	for !l.flag.IsCancelled() {
		if err := l.conn.SetReadDeadline(time.Now().Add(udpReadTimeout)); err != nil {
			slog.Error("failed to set UDP read deadline", "error", err)
			return
		}

		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("udp read error", "error", err)
			continue
		}

		l.handleDatagram(buf[:n], addr)
	}
}

func (l *KeepAliveListener) handleDatagram(data []byte, addr *net.UDPAddr) {
	req, err := wire.DecodeRequest(data)
	if err != nil {
		slog.Debug("dropping undecodable udp datagram", "from", addr, "error", err)
		return
	}

	switch req.Kind {
	case wire.RequestPing:
		if l.recorder != nil {
			l.recorder.RecordPing()
		}
		l.reply(addr, wire.Response{Kind: wire.ResponsePong})
		if client, ok := quotes.ClientAddressFromUDPAddr(addr); ok {
			l.monitor.SendPing(client)
		}
	default:
		l.reply(addr, wire.Response{Kind: wire.ResponseError, Message: "Invalid request. Expected PING"})
	}
}

func (l *KeepAliveListener) reply(addr *net.UDPAddr, resp wire.Response) {
	encoded, err := wire.EncodeResponse(&resp)
	if err != nil {
		slog.Error("failed to encode udp reply", "error", err)
		return
	}
	if _, err := l.conn.WriteToUDP(encoded, addr); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return
		}
		slog.Warn("failed to write udp reply", "to", addr, "error", err)
	}
}
