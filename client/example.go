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

// Command example is a minimal QuoteHub subscriber: it performs the
// TCP handshake for a fixed ticker list, then prints every quote and
// pong it receives on its UDP socket, sending a keep-alive ping every
// couple of seconds.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/wire"
)

func main() {
	serverAddr := "127.0.0.1:7400"
	if len(os.Args) > 1 {
		serverAddr = os.Args[1]
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen udp: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	udpPort := uint16(conn.LocalAddr().(*net.UDPAddr).Port)

	if err := subscribe(serverAddr, udpPort, []string{"AAPL", "MSFT"}); err != nil {
		fmt.Fprintf(os.Stderr, "subscribe: %v\n", err)
		os.Exit(1)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve udp addr: %v\n", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go pingLoop(conn, udpAddr, sigCh)

	buf := make([]byte, wire.MaxMessageSize)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := conn.ReadFromUDP(buf)
		select {
		case <-sigCh:
			return
		default:
		}
		if err != nil {
			continue
		}
		resp, err := wire.DecodeResponse(buf[:n])
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode response: %v\n", err)
			continue
		}
		switch resp.Kind {
		case wire.ResponseQuote:
			q := resp.Quote
			fmt.Printf("%s: $%.2f (volume %d)\n", q.Ticker, float64(q.PriceCenti)/100, q.Volume)
		case wire.ResponsePong:
			fmt.Println("pong")
		case wire.ResponseError:
			fmt.Printf("server error: %s\n", resp.Message)
		}
	}
}

func subscribe(serverAddr string, udpPort uint16, tickers []string) error {
	conn, err := net.DialTimeout("tcp", serverAddr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial tcp: %w", err)
	}
	defer conn.Close()

	req := wire.Request{
		Kind:    wire.RequestStreamTickers,
		Tickers: tickers,
		Address: "127.0.0.1",
		Port:    udpPort,
	}
	encoded, err := wire.EncodeRequest(&req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if _, err := conn.Write(encoded); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, wire.MaxMessageSize)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	resp, err := wire.DecodeResponse(buf[:n])
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Kind != wire.ResponseOk {
		return fmt.Errorf("subscription rejected: %s", resp.Message)
	}
	return nil
}

func pingLoop(conn *net.UDPConn, serverAddr *net.UDPAddr, done <-chan os.Signal) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	req := wire.Request{Kind: wire.RequestPing}
	encoded, err := wire.EncodeRequest(&req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode ping: %v\n", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if _, err := conn.WriteToUDP(encoded, serverAddr); err != nil {
				fmt.Fprintf(os.Stderr, "send ping: %v\n", err)
			}
		}
	}
}
