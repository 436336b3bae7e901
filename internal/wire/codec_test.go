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

package wire_test

import (
	"testing"

	"github.com/USA-RedDragon/QuoteHub/internal/wire"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []wire.Request{
		{Kind: wire.RequestPing},
		{Kind: wire.RequestStreamTickers, Tickers: []string{"AAPL", "GOOG"}, Address: "127.0.0.1", Port: 5153},
		{Kind: wire.RequestStreamTickers, Tickers: []string{}, Address: "::1", Port: 1},
	}

	for _, want := range cases {
		encoded, err := wire.EncodeRequest(&want)
		require.NoError(t, err)
		require.LessOrEqual(t, len(encoded), wire.MaxMessageSize)

		got, err := wire.DecodeRequest(encoded)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []wire.Response{
		{Kind: wire.ResponseOk},
		{Kind: wire.ResponsePong},
		{Kind: wire.ResponseError, Message: "invalid request"},
		{Kind: wire.ResponseQuote, Quote: wire.StockQuote{Ticker: "AAPL", PriceCenti: 12345, Volume: 100, Timestamp: 1700000000}},
	}

	for _, want := range cases {
		encoded, err := wire.EncodeResponse(&want)
		require.NoError(t, err)

		got, err := wire.DecodeResponse(encoded)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeRequestInvalid(t *testing.T) {
	t.Parallel()

	_, err := wire.DecodeRequest([]byte{0xFF})
	require.ErrorIs(t, err, wire.ErrInvalidFormat)
}

func TestDecodeResponseInvalid(t *testing.T) {
	t.Parallel()

	_, err := wire.DecodeResponse(nil)
	require.ErrorIs(t, err, wire.ErrInvalidFormat)
}

func TestEncodeRequestRejectsOversize(t *testing.T) {
	t.Parallel()

	tickers := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		tickers = append(tickers, "TICKER_PADDING_TO_GROW_MESSAGE_SIZE")
	}
	req := wire.Request{Kind: wire.RequestStreamTickers, Tickers: tickers, Address: "127.0.0.1", Port: 1}
	_, err := wire.EncodeRequest(&req)
	require.ErrorIs(t, err, wire.ErrInvalidFormat)
}
