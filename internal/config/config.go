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

// Package config loads and validates QuoteHub's runtime configuration.
package config

import "time"

// Config stores the application configuration.
type Config struct {
	LogLevel LogLevel

	// ListenAddress and Port are shared by the TCP subscription
	// listener and the UDP quote/ping endpoint, per the protocol's
	// "bound to the same (address, port) as TCP" requirement.
	ListenAddress   string
	Port            int
	Tickers         []string
	QuoteInterval   time.Duration
	LivenessTimeout time.Duration

	Metrics Metrics
}

// Metrics configures the Prometheus metrics server and, when an OTLP
// endpoint is set, trace export.
type Metrics struct {
	Enabled      bool
	Bind         string
	Port         int
	OTLPEndpoint string
}

// defaultTickers is the built-in ticker list that Defaults fills in.
// Reading a ticker list from an external feed is out of scope.
var defaultTickers = []string{"AAPL", "MSFT", "GOOG", "AMZN", "TSLA"} //nolint:gochecknoglobals

// Defaults returns a Config populated with QuoteHub's built-in
// defaults. The configulator loader built in main.go is not given
// this value, so a loaded Config does not inherit these defaults.
func Defaults() Config {
	return Config{
		LogLevel:        LogLevelInfo,
		ListenAddress:   "0.0.0.0",
		Port:            7400,
		Tickers:         append([]string{}, defaultTickers...),
		QuoteInterval:   3 * time.Second,
		LivenessTimeout: 5 * time.Second,
		Metrics: Metrics{
			Enabled: true,
			Bind:    "0.0.0.0",
			Port:    9100,
		},
	}
}
