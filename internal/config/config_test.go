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

package config_test

import (
	"errors"
	"testing"

	"github.com/USA-RedDragon/QuoteHub/internal/config"
)

func TestDefaultsIsValid(t *testing.T) {
	t.Parallel()
	if err := config.Defaults().Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestValidateInvalidLogLevel(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.LogLevel = "trace"
	if !errors.Is(cfg.Validate(), config.ErrInvalidLogLevel) {
		t.Errorf("expected ErrInvalidLogLevel, got %v", cfg.Validate())
	}
}

func TestValidateEmptyListenAddress(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.ListenAddress = ""
	if !errors.Is(cfg.Validate(), config.ErrInvalidListenAddress) {
		t.Errorf("expected ErrInvalidListenAddress, got %v", cfg.Validate())
	}
}

func TestValidateInvalidPort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 70000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Defaults()
			cfg.Port = tt.port
			if !errors.Is(cfg.Validate(), config.ErrInvalidPort) {
				t.Errorf("expected ErrInvalidPort for port %d, got %v", tt.port, cfg.Validate())
			}
		})
	}
}

func TestValidateNoTickers(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Tickers = nil
	if !errors.Is(cfg.Validate(), config.ErrNoTickers) {
		t.Errorf("expected ErrNoTickers, got %v", cfg.Validate())
	}
}

func TestValidateNonPositiveDurations(t *testing.T) {
	t.Parallel()

	t.Run("quote interval", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.QuoteInterval = 0
		if !errors.Is(cfg.Validate(), config.ErrInvalidQuoteInterval) {
			t.Errorf("expected ErrInvalidQuoteInterval, got %v", cfg.Validate())
		}
	})

	t.Run("liveness timeout", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.LivenessTimeout = 0
		if !errors.Is(cfg.Validate(), config.ErrInvalidLivenessTimeout) {
			t.Errorf("expected ErrInvalidLivenessTimeout, got %v", cfg.Validate())
		}
	})
}

func TestMetricsValidateDisabledSkipsChecks(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: false}
	if err := m.Validate(); err != nil {
		t.Errorf("expected nil error for disabled metrics, got %v", err)
	}
}

func TestMetricsValidateEmptyBind(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: true, Bind: "", Port: 9100}
	if !errors.Is(m.Validate(), config.ErrInvalidMetricsBindAddress) {
		t.Errorf("expected ErrInvalidMetricsBindAddress, got %v", m.Validate())
	}
}

func TestMetricsValidateInvalidPort(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: true, Bind: "0.0.0.0", Port: 0}
	if !errors.Is(m.Validate(), config.ErrInvalidMetricsPort) {
		t.Errorf("expected ErrInvalidMetricsPort, got %v", m.Validate())
	}
}
