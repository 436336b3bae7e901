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

// Package wire implements the binary request/response protocol shared by
// the quote server and its clients.
//
//go:generate msgp
package wire

// MaxMessageSize is the maximum encoded size of any Request or Response,
// matching the protocol's fixed MTU envelope.
const MaxMessageSize = 1024

// RequestKind tags the variant of a Request.
type RequestKind byte

const (
	// RequestPing asks the server to reply with a Pong and refresh
	// the sender's liveness record.
	RequestPing RequestKind = iota + 1
	// RequestStreamTickers asks the server to subscribe the given
	// UDP (address, port) to the given tickers.
	RequestStreamTickers
)

// ResponseKind tags the variant of a Response.
type ResponseKind byte

const (
	// ResponseOk acknowledges a successful subscription.
	ResponseOk ResponseKind = iota + 1
	// ResponseError carries a human-readable failure message.
	ResponseError
	// ResponsePong answers a Ping.
	ResponsePong
	// ResponseQuote carries a single StockQuote push.
	ResponseQuote
)

// StockQuote is an immutable snapshot of a ticker's price and volume.
type StockQuote struct {
	Ticker     string `msg:"ticker"`
	PriceCenti int64  `msg:"price_centi"`
	Volume     uint32 `msg:"volume"`
	Timestamp  int64  `msg:"timestamp"`
}

// Request is a tagged union of the messages a client may send.
type Request struct {
	Kind RequestKind `msg:"kind"`

	// Populated only when Kind == RequestStreamTickers.
	Tickers []string `msg:"tickers,omitempty"`
	Address string   `msg:"address,omitempty"`
	Port    uint16   `msg:"port,omitempty"`
}

// Response is a tagged union of the messages a server may send.
type Response struct {
	Kind ResponseKind `msg:"kind"`

	// Populated only when Kind == ResponseError.
	Message string `msg:"message,omitempty"`
	// Populated only when Kind == ResponseQuote.
	Quote StockQuote `msg:"quote,omitempty"`
}
