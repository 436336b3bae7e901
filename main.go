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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/USA-RedDragon/QuoteHub/cmd"
	"github.com/USA-RedDragon/QuoteHub/internal/config"
	"github.com/USA-RedDragon/configulator"
)

// version and commit are set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	c := configulator.New[config.Config]()

	rootCmd := cmd.NewCommand(version, commit)
	rootCmd.SetContext(c.ToContext(context.Background()))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
