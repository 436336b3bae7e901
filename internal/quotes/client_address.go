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
	"fmt"
	"net"
	"net/netip"
)

// ClientAddress is the hashable identity of a subscriber: the UDP
// address and port it asked to receive datagrams on. It is comparable
// and therefore usable directly as a map key.
type ClientAddress struct {
	IP   netip.Addr
	Port uint16
}

// NewClientAddress builds a ClientAddress from an IP and port.
func NewClientAddress(ip netip.Addr, port uint16) ClientAddress {
	return ClientAddress{IP: ip.Unmap(), Port: port}
}

// ClientAddressFromUDPAddr converts a *net.UDPAddr, as returned by
// ReadFromUDP, into a ClientAddress.
func ClientAddressFromUDPAddr(addr *net.UDPAddr) (ClientAddress, bool) {
	if addr == nil {
		return ClientAddress{}, false
	}
	ip, ok := netip.AddrFromSlice(addr.IP)
	if !ok {
		return ClientAddress{}, false
	}
	return NewClientAddress(ip, uint16(addr.Port)), true
}

// UDPAddr returns the net.UDPAddr suitable for WriteToUDP.
func (c ClientAddress) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: c.IP.AsSlice(), Port: int(c.Port)}
}

// String renders the address as "ip:port".
func (c ClientAddress) String() string {
	return fmt.Sprintf("%s:%d", c.IP, c.Port)
}
