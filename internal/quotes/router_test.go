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

package quotes_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/quotes"
	"github.com/USA-RedDragon/QuoteHub/internal/wire"
	"github.com/stretchr/testify/require"
)

func addr(t *testing.T, port uint16) quotes.ClientAddress {
	t.Helper()
	return quotes.NewClientAddress(netip.MustParseAddr("127.0.0.1"), port)
}

func TestTickersRouterFanOutOverlappingTickers(t *testing.T) {
	t.Parallel()

	r := quotes.NewTickersRouter()
	a, b := addr(t, 1), addr(t, 2)
	aCh := make(chan wire.StockQuote, quotes.QuoteChannelSize)
	bCh := make(chan wire.StockQuote, quotes.QuoteChannelSize)

	r.AddRoutes([]string{"AAPL", "GOOG"}, aCh, a)
	r.AddRoutes([]string{"GOOG"}, bCh, b)

	r.SendQuote(wire.StockQuote{Ticker: "GOOG", PriceCenti: 100})
	r.SendQuote(wire.StockQuote{Ticker: "AAPL", PriceCenti: 200})

	require.Len(t, aCh, 2)
	require.Len(t, bCh, 1)

	got := <-bCh
	require.Equal(t, "GOOG", got.Ticker)
}

func TestTickersRouterDeleteClientsRemovesBothIndices(t *testing.T) {
	t.Parallel()

	r := quotes.NewTickersRouter()
	a := addr(t, 1)
	ch := make(chan wire.StockQuote, quotes.QuoteChannelSize)
	r.AddRoutes([]string{"AAPL"}, ch, a)
	require.Equal(t, []string{"AAPL"}, r.SubscribedTickers(a))

	r.DeleteClients([]quotes.ClientAddress{a})
	require.Empty(t, r.SubscribedTickers(a))

	r.SendQuote(wire.StockQuote{Ticker: "AAPL"})
	select {
	case q := <-ch:
		t.Fatalf("expected no delivery to evicted client, got %+v", q)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTickersRouterEvictsFullChannel(t *testing.T) {
	t.Parallel()

	r := quotes.NewTickersRouter()
	a := addr(t, 1)
	ch := make(chan wire.StockQuote) // unbuffered: first send blocks immediately
	r.AddRoutes([]string{"AAPL"}, ch, a)

	r.SendQuote(wire.StockQuote{Ticker: "AAPL"})

	require.Empty(t, r.SubscribedTickers(a))
}
