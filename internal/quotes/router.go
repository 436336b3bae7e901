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

import (
	"log/slog"
	"sync"

	"github.com/USA-RedDragon/QuoteHub/internal/wire"
	"github.com/puzpuzpuz/xsync/v4"
)

// QuoteChannelSize bounds the per-subscriber quote queue. The spec's
// source models an unbounded channel; a generously sized buffer
// approximates that while still giving a slow consumer a concrete
// failure mode instead of unbounded memory growth.
const QuoteChannelSize = 4096

// TickersRouter is the subscription table mapping a ticker to the set
// of subscribers that should receive it, plus the reverse index used
// to tear a client's subscriptions down in one pass.
//
// A single RWMutex governs both tables together so that a reader never
// observes a torn view between the forward (routes) and reverse
// (clientIndex) indices.
type TickersRouter struct {
	mu          sync.RWMutex
	routes      map[string]*xsync.Map[ClientAddress, chan wire.StockQuote]
	clientIndex map[ClientAddress][]string
}

// NewTickersRouter returns an empty router.
func NewTickersRouter() *TickersRouter {
	return &TickersRouter{
		routes:      make(map[string]*xsync.Map[ClientAddress, chan wire.StockQuote]),
		clientIndex: make(map[ClientAddress][]string),
	}
}

// AddRoutes subscribes client to every ticker in tickers, delivering
// future quotes for those tickers on tx. Subscribing to an already
// subscribed ticker is idempotent in routes but still recorded in the
// reverse index (duplicates there are harmless: deletion just removes
// the client from routes[t] twice).
func (r *TickersRouter) AddRoutes(tickers []string, tx chan wire.StockQuote, client ClientAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tickers {
		bucket, ok := r.routes[t]
		if !ok {
			bucket = xsync.NewMap[ClientAddress, chan wire.StockQuote]()
			r.routes[t] = bucket
		}
		bucket.Store(client, tx)
		r.clientIndex[client] = append(r.clientIndex[client], t)
	}
}

// SendQuote fans q out to every subscriber of q.Ticker. Subscribers
// whose channel is full are treated as dead and evicted from the
// router before SendQuote returns. A closed channel is not detected:
// sending on it panics.
func (r *TickersRouter) SendQuote(q wire.StockQuote) {
	r.mu.RLock()
	bucket, ok := r.routes[q.Ticker]
	r.mu.RUnlock()
	if !ok {
		return
	}

	var dead []ClientAddress
	bucket.Range(func(client ClientAddress, tx chan wire.StockQuote) bool {
		select {
		case tx <- q:
		default:
			slog.Warn("dropping subscriber: quote queue full", "client", client, "ticker", q.Ticker)
			dead = append(dead, client)
		}
		return true
	})

	if len(dead) > 0 {
		r.DeleteClients(dead)
	}
}

// DeleteClients removes every client in clients from every ticker
// bucket it is subscribed to, and drops its reverse-index entry.
func (r *TickersRouter) DeleteClients(clients []ClientAddress) {
	if len(clients) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range clients {
		for _, t := range r.clientIndex[client] {
			if bucket, ok := r.routes[t]; ok {
				bucket.Delete(client)
			}
		}
		delete(r.clientIndex, client)
	}
}

// SubscribedTickers returns the tickers client is currently subscribed
// to. Exposed for tests and diagnostics.
func (r *TickersRouter) SubscribedTickers(client ClientAddress) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.clientIndex[client]))
	copy(out, r.clientIndex[client])
	return out
}
