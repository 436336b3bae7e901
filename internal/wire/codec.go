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

package wire

import (
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// ErrInvalidFormat is returned when a message cannot be decoded, or
// would encode past MaxMessageSize.
var ErrInvalidFormat = errors.New("wire: invalid message format")

// MarshalMsg appends the msgp encoding of the quote to b.
func (q *StockQuote) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendString(b, q.Ticker)
	b = msgp.AppendInt64(b, q.PriceCenti)
	b = msgp.AppendUint32(b, q.Volume)
	b = msgp.AppendInt64(b, q.Timestamp)
	return b, nil
}

// UnmarshalMsg reads a StockQuote off the front of b, returning the
// remaining bytes.
func (q *StockQuote) UnmarshalMsg(b []byte) ([]byte, error) {
	ticker, b, err := msgp.ReadStringBytes(b)
	if err != nil {
		return b, err
	}
	price, b, err := msgp.ReadInt64Bytes(b)
	if err != nil {
		return b, err
	}
	volume, b, err := msgp.ReadUint32Bytes(b)
	if err != nil {
		return b, err
	}
	ts, b, err := msgp.ReadInt64Bytes(b)
	if err != nil {
		return b, err
	}
	q.Ticker = ticker
	q.PriceCenti = price
	q.Volume = volume
	q.Timestamp = ts
	return b, nil
}

// MarshalMsg appends the msgp encoding of the request to b.
func (r *Request) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendByte(b, byte(r.Kind))
	switch r.Kind {
	case RequestPing:
	case RequestStreamTickers:
		b = msgp.AppendArrayHeader(b, uint32(len(r.Tickers)))
		for _, t := range r.Tickers {
			b = msgp.AppendString(b, t)
		}
		b = msgp.AppendString(b, r.Address)
		b = msgp.AppendUint16(b, r.Port)
	default:
		return b, fmt.Errorf("%w: unknown request kind %d", ErrInvalidFormat, r.Kind)
	}
	return b, nil
}

// UnmarshalMsg reads a Request off the front of b.
func (r *Request) UnmarshalMsg(b []byte) ([]byte, error) {
	kindByte, b, err := msgp.ReadByteBytes(b)
	if err != nil {
		return b, err
	}
	r.Kind = RequestKind(kindByte)
	switch r.Kind {
	case RequestPing:
		r.Tickers = nil
		r.Address = ""
		r.Port = 0
	case RequestStreamTickers:
		n, rest, err := msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return rest, err
		}
		b = rest
		tickers := make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			var t string
			t, b, err = msgp.ReadStringBytes(b)
			if err != nil {
				return b, err
			}
			tickers = append(tickers, t)
		}
		addr, b2, err := msgp.ReadStringBytes(b)
		if err != nil {
			return b2, err
		}
		b = b2
		port, b3, err := msgp.ReadUint16Bytes(b)
		if err != nil {
			return b3, err
		}
		b = b3
		r.Tickers = tickers
		r.Address = addr
		r.Port = port
	default:
		return b, fmt.Errorf("%w: unknown request kind %d", ErrInvalidFormat, r.Kind)
	}
	return b, nil
}

// MarshalMsg appends the msgp encoding of the response to b.
func (resp *Response) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendByte(b, byte(resp.Kind))
	switch resp.Kind {
	case ResponseOk, ResponsePong:
	case ResponseError:
		b = msgp.AppendString(b, resp.Message)
	case ResponseQuote:
		var err error
		b, err = resp.Quote.MarshalMsg(b)
		if err != nil {
			return b, err
		}
	default:
		return b, fmt.Errorf("%w: unknown response kind %d", ErrInvalidFormat, resp.Kind)
	}
	return b, nil
}

// UnmarshalMsg reads a Response off the front of b.
func (resp *Response) UnmarshalMsg(b []byte) ([]byte, error) {
	kindByte, b, err := msgp.ReadByteBytes(b)
	if err != nil {
		return b, err
	}
	resp.Kind = ResponseKind(kindByte)
	switch resp.Kind {
	case ResponseOk, ResponsePong:
		resp.Message = ""
		resp.Quote = StockQuote{}
	case ResponseError:
		resp.Message, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return b, err
		}
	case ResponseQuote:
		b, err = resp.Quote.UnmarshalMsg(b)
		if err != nil {
			return b, err
		}
	default:
		return b, fmt.Errorf("%w: unknown response kind %d", ErrInvalidFormat, resp.Kind)
	}
	return b, nil
}

// EncodeRequest encodes r, rejecting results larger than MaxMessageSize.
func EncodeRequest(r *Request) ([]byte, error) {
	b, err := r.MarshalMsg(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if len(b) > MaxMessageSize {
		return nil, fmt.Errorf("%w: request too large (%d bytes)", ErrInvalidFormat, len(b))
	}
	return b, nil
}

// DecodeRequest decodes a Request from b.
func DecodeRequest(b []byte) (Request, error) {
	if len(b) > MaxMessageSize {
		return Request{}, fmt.Errorf("%w: request too large (%d bytes)", ErrInvalidFormat, len(b))
	}
	var r Request
	_, err := r.UnmarshalMsg(b)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return r, nil
}

// EncodeResponse encodes resp, rejecting results larger than MaxMessageSize.
func EncodeResponse(resp *Response) ([]byte, error) {
	b, err := resp.MarshalMsg(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if len(b) > MaxMessageSize {
		return nil, fmt.Errorf("%w: response too large (%d bytes)", ErrInvalidFormat, len(b))
	}
	return b, nil
}

// DecodeResponse decodes a Response from b.
func DecodeResponse(b []byte) (Response, error) {
	if len(b) > MaxMessageSize {
		return Response{}, fmt.Errorf("%w: response too large (%d bytes)", ErrInvalidFormat, len(b))
	}
	var resp Response
	_, err := resp.UnmarshalMsg(b)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return resp, nil
}
