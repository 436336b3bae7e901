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

package config

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidListenAddress indicates that the listen address is empty.
	ErrInvalidListenAddress = errors.New("invalid listen address provided")
	// ErrInvalidPort indicates that the provided TCP/UDP port is not valid.
	ErrInvalidPort = errors.New("invalid port provided")
	// ErrNoTickers indicates that no tickers were configured to stream.
	ErrNoTickers = errors.New("at least one ticker must be configured")
	// ErrInvalidQuoteInterval indicates that the quote generator interval is not positive.
	ErrInvalidQuoteInterval = errors.New("quote interval must be positive")
	// ErrInvalidLivenessTimeout indicates that the liveness timeout is not positive.
	ErrInvalidLivenessTimeout = errors.New("liveness timeout must be positive")
	// ErrInvalidMetricsBindAddress indicates that the provided metrics server bind address is not valid.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the provided metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
)

// Validate validates the Metrics configuration.
func (m Metrics) Validate() error {
	if !m.Enabled {
		return nil
	}

	if m.Bind == "" {
		return ErrInvalidMetricsBindAddress
	}
	if m.Port <= 0 || m.Port > 65535 {
		return ErrInvalidMetricsPort
	}

	return nil
}

// Validate validates the top-level Config.
func (c Config) Validate() error {
	if c.LogLevel != LogLevelDebug &&
		c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn &&
		c.LogLevel != LogLevelError {
		return ErrInvalidLogLevel
	}

	if c.ListenAddress == "" {
		return ErrInvalidListenAddress
	}

	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidPort
	}

	if len(c.Tickers) == 0 {
		return ErrNoTickers
	}

	if c.QuoteInterval <= 0 {
		return ErrInvalidQuoteInterval
	}
	if c.LivenessTimeout <= 0 {
		return ErrInvalidLivenessTimeout
	}

	if err := c.Metrics.Validate(); err != nil {
		return err
	}

	return nil
}
