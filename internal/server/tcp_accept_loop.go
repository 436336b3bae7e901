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
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/quotes"
)

// acceptPollInterval is how long the accept loop sleeps after a
// would-block before retrying; it bounds shutdown latency.
const acceptPollInterval = 100 * time.Millisecond

// TcpAcceptLoop owns the TCP listener and spawns a ConnectionAcceptor
// per incoming connection.
type TcpAcceptLoop struct {
	listener *net.TCPListener
	acceptor *ConnectionAcceptor
	flag     *quotes.CancellationFlag
}

// NewTcpAcceptLoop builds a loop bound to listener.
func NewTcpAcceptLoop(listener *net.TCPListener, acceptor *ConnectionAcceptor, flag *quotes.CancellationFlag) *TcpAcceptLoop {
	return &TcpAcceptLoop{listener: listener, acceptor: acceptor, flag: flag}
}

// Run accepts connections until the CancellationFlag is set.
func (l *TcpAcceptLoop) Run() {
	for !l.flag.IsCancelled() {
		if err := l.listener.SetDeadline(time.Now().Add(acceptPollInterval)); err != nil {
			slog.Error("failed to set tcp accept deadline", "error", err)
			return
		}

		conn, err := l.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("tcp accept error", "error", err)
			continue
		}

		go l.acceptor.Handle(conn)
	}
}
