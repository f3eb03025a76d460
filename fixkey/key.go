/*
fixsession — FIX protocol decoder and session controller
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/

// Package fixkey builds fixed-width dispatch keys from a single tag's
// value without allocating, for use as a map key or switch discriminant
// when routing messages by MsgType. The original C++ expressed this as a
// class template parameterized on the tag number and delimiters; Go has
// no non-type template parameters, so it is a plain function taking those
// as arguments instead.
package fixkey

import "strconv"

// MaxWidth is the largest key width supported, matching sizeof(size_t)
// on a 64-bit platform.
const MaxWidth = 8

// ExtractKey scans message for the tag=value token identified by tag,
// delimited by delimA or delimB, and packs up to width bytes of the
// value's ASCII content into a uint64 key. Values shorter than width are
// zero-padded on the right; values longer than width are truncated.
// Malformed or missing tags produce a zero key.
func ExtractKey(message []byte, tag int, delimA, delimB byte, width int) uint64 {
	if width <= 0 || width > MaxWidth {
		width = MaxWidth
	}

	value := extractTagValue(message, tag, delimA, delimB)

	var buf [MaxWidth]byte

	count := len(value)
	if count > width {
		count = width
	}

	copy(buf[:count], value[:count])

	var key uint64
	for i := width - 1; i >= 0; i-- {
		key = key<<8 | uint64(buf[i])
	}

	return key
}

func isDelimiter(c, a, b byte) bool {
	return c == a || c == b
}

func extractTagValue(message []byte, tag int, delimA, delimB byte) []byte {
	tagBuf := strconv.Itoa(tag)
	tagLen := len(tagBuf)

	for i := 0; i < len(message); {
		tokenStart := i

		for i < len(message) && !isDelimiter(message[i], delimA, delimB) {
			i++
		}

		tokenEnd := i
		if i < len(message) {
			i++
		}

		tokenLen := tokenEnd - tokenStart
		if tokenLen <= tagLen {
			continue
		}

		if string(message[tokenStart:tokenStart+tagLen]) != tagBuf {
			continue
		}

		if message[tokenStart+tagLen] != '=' {
			continue
		}

		valueStart := tokenStart + tagLen + 1

		return message[valueStart:tokenEnd]
	}

	return nil
}

// MsgTypeKey builds the default dispatch key for a message's MsgType
// (tag 35), using '|' and SOH (0x01) as delimiters, matching the wire
// format fixsession accepts everywhere else.
func MsgTypeKey(message []byte) uint64 {
	return ExtractKey(message, 35, '|', 0x01, MaxWidth)
}
