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
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/wire"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/USA-RedDragon/QuoteHub/internal/quotes")

// GeneratorConfig configures a QuoteGenerator.
type GeneratorConfig struct {
	Tickers  []string
	Interval time.Duration
}

// QuoteRecorder observes quotes as they're published, without the
// quotes package needing to depend on a concrete metrics backend.
type QuoteRecorder interface {
	RecordQuoteSent(ticker string)
}

// QuoteGenerator periodically synthesizes a StockQuote for every
// configured ticker and publishes it via a TickersRouter. It is the
// system's only quote source; a real deployment would swap this for a
// feed from an exchange without changing any downstream component.
type QuoteGenerator struct {
	cfg      GeneratorConfig
	router   *TickersRouter
	flag     *CancellationFlag
	recorder QuoteRecorder
}

// NewQuoteGenerator builds a generator publishing to router. recorder
// may be nil.
func NewQuoteGenerator(cfg GeneratorConfig, router *TickersRouter, flag *CancellationFlag, recorder QuoteRecorder) *QuoteGenerator {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	return &QuoteGenerator{cfg: cfg, router: router, flag: flag, recorder: recorder}
}

// Run loops until ctx is cancelled or the shared CancellationFlag is
// set, producing one quote per ticker per pass. Cancellation is
// checked between tickers, so a large ticker list doesn't delay
// shutdown, and again before each sleep.
func (g *QuoteGenerator) Run(ctx context.Context) error {
	for {
		for _, ticker := range g.cfg.Tickers {
			if g.flag.IsCancelled() || ctx.Err() != nil {
				return ctx.Err()
			}
			_, span := tracer.Start(ctx, "QuoteGenerator.tick")
			q := g.synthesize(ticker)
			g.router.SendQuote(q)
			if g.recorder != nil {
				g.recorder.RecordQuoteSent(q.Ticker)
			}
			span.End()
		}

		if g.flag.IsCancelled() {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.cfg.Interval):
		}
	}
}

func (g *QuoteGenerator) synthesize(ticker string) wire.StockQuote {
	priceCenti := int64(100 + rand.Float64()*(100000-100))
	volume := uint32(10 + rand.IntN(990))
	q := wire.StockQuote{
		Ticker:     ticker,
		PriceCenti: priceCenti,
		Volume:     volume,
		Timestamp:  time.Now().Unix(),
	}
	slog.Debug("generated quote", "ticker", q.Ticker, "price_centi", q.PriceCenti, "volume", q.Volume)
	return q
}
