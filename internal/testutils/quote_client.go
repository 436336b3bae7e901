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

// Package testutils provides simulated quote-protocol clients for
// integration testing the server end to end, the way a real client
// binary would speak to it.
package testutils

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/wire"
)

// QuoteClient is a simulated subscriber: it performs the TCP
// subscription handshake, then listens on its own UDP socket for
// pushed quotes and pongs.
type QuoteClient struct {
	udpConn *net.UDPConn
	udpPort uint16

	mu      sync.Mutex
	quotes  []wire.StockQuote
	pongs   int
	errors  []wire.Response

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewQuoteClient binds an ephemeral UDP socket to listen on.
func NewQuoteClient() (*QuoteClient, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}
	c := &QuoteClient{
		udpConn: conn,
		udpPort: uint16(conn.LocalAddr().(*net.UDPAddr).Port),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.rx()
	return c, nil
}

// UDPPort is the ephemeral port the client listens on, to be supplied
// in a StreamTickers request.
func (c *QuoteClient) UDPPort() uint16 {
	return c.udpPort
}

// Subscribe dials serverAddr over TCP and performs the subscription
// handshake for tickers, returning the server's Response.
func (c *QuoteClient) Subscribe(serverAddr string, tickers []string) (wire.Response, error) {
	conn, err := net.DialTimeout("tcp", serverAddr, 2*time.Second)
	if err != nil {
		return wire.Response{}, fmt.Errorf("dial tcp: %w", err)
	}
	defer conn.Close()

	req := wire.Request{
		Kind:    wire.RequestStreamTickers,
		Tickers: tickers,
		Address: "127.0.0.1",
		Port:    c.udpPort,
	}
	encoded, err := wire.EncodeRequest(&req)
	if err != nil {
		return wire.Response{}, fmt.Errorf("encode request: %w", err)
	}
	if _, err := conn.Write(encoded); err != nil {
		return wire.Response{}, fmt.Errorf("write request: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, wire.MaxMessageSize)
	n, err := conn.Read(buf)
	if err != nil {
		return wire.Response{}, fmt.Errorf("read response: %w", err)
	}
	return wire.DecodeResponse(buf[:n])
}

// SendRaw writes raw bytes to serverAddr over TCP and returns the
// response, for testing malformed-handshake behavior.
func SendRaw(serverAddr string, payload []byte) (wire.Response, error) {
	conn, err := net.DialTimeout("tcp", serverAddr, 2*time.Second)
	if err != nil {
		return wire.Response{}, fmt.Errorf("dial tcp: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		return wire.Response{}, fmt.Errorf("write payload: %w", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, wire.MaxMessageSize)
	n, err := conn.Read(buf)
	if err != nil {
		return wire.Response{}, fmt.Errorf("read response: %w", err)
	}
	return wire.DecodeResponse(buf[:n])
}

// Ping sends a UDP Ping to serverAddr.
func (c *QuoteClient) Ping(serverAddr string) error {
	raddr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		return fmt.Errorf("resolve udp addr: %w", err)
	}
	req := wire.Request{Kind: wire.RequestPing}
	encoded, err := wire.EncodeRequest(&req)
	if err != nil {
		return fmt.Errorf("encode ping: %w", err)
	}
	_, err = c.udpConn.WriteToUDP(encoded, raddr)
	return err
}

func (c *QuoteClient) rx() {
	defer c.wg.Done()
	buf := make([]byte, wire.MaxMessageSize)
	for {
		_ = c.udpConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, _, err := c.udpConn.ReadFromUDP(buf)
		select {
		case <-c.done:
			return
		default:
		}
		if err != nil {
			continue
		}
		resp, err := wire.DecodeResponse(buf[:n])
		if err != nil {
			continue
		}
		c.mu.Lock()
		switch resp.Kind {
		case wire.ResponseQuote:
			c.quotes = append(c.quotes, resp.Quote)
		case wire.ResponsePong:
			c.pongs++
		case wire.ResponseError:
			c.errors = append(c.errors, resp)
		}
		c.mu.Unlock()
	}
}

// Quotes returns every quote received so far.
func (c *QuoteClient) Quotes() []wire.StockQuote {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]wire.StockQuote, len(c.quotes))
	copy(out, c.quotes)
	return out
}

// Pongs returns the number of pongs received so far.
func (c *QuoteClient) Pongs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pongs
}

// Close stops the receive loop and releases the UDP socket.
func (c *QuoteClient) Close() {
	c.stopOnce.Do(func() {
		close(c.done)
		_ = c.udpConn.Close()
	})
	c.wg.Wait()
}
