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

import "sync/atomic"

// CancellationFlag is a process-wide, level-triggered shutdown signal.
// It only ever transitions false -> true; once cancelled it stays
// cancelled for the lifetime of the value.
type CancellationFlag struct {
	cancelled atomic.Bool
}

// NewCancellationFlag returns an unset flag.
func NewCancellationFlag() *CancellationFlag {
	return &CancellationFlag{}
}

// Cancel sets the flag. Safe to call more than once and from multiple
// goroutines; later calls are no-ops.
func (f *CancellationFlag) Cancel() {
	f.cancelled.Store(true)
}

// IsCancelled reports whether Cancel has ever been called.
func (f *CancellationFlag) IsCancelled() bool {
	return f.cancelled.Load()
}
