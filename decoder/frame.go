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
package decoder

import "strconv"

const soh = 0x01

// normalizeMessage replaces '|' separators with SOH only when the message
// carries no SOH at all; a message that already uses SOH is left as-is so
// a literal pipe inside a field value is never mangled.
func normalizeMessage(raw string) string {
	hasSOH := false
	hasPipe := false

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case soh:
			hasSOH = true
		case '|':
			hasPipe = true
		}
	}

	if !hasSOH && hasPipe {
		out := make([]byte, len(raw))
		for i := 0; i < len(raw); i++ {
			if raw[i] == '|' {
				out[i] = soh
			} else {
				out[i] = raw[i]
			}
		}

		return string(out)
	}

	return raw
}

// parsedField is a lenient tag/value token located within a normalized
// message, recorded as byte offsets so callers can slice the original
// string without copying.
type parsedField struct {
	tag        uint32
	valueBegin int
	valueEnd   int
}

// splitTags is the decoder-path field tokenizer: it is lenient, silently
// skipping any token that is not a positive all-digit tag followed by
// '='. Malformed tokens never abort decoding; session-path parsing (see
// the session package) is strict about the same condition.
func splitTags(message string) []parsedField {
	var result []parsedField

	start := 0
	for start < len(message) {
		end := indexByte(message, start, soh)
		tokenEnd := end
		if end < 0 {
			tokenEnd = len(message)
		}

		eqPos := indexByte(message, start, '=')

		if eqPos >= 0 && eqPos < tokenEnd {
			if tag, ok := parsePositiveInt(message[start:eqPos]); ok {
				result = append(result, parsedField{tag: uint32(tag), valueBegin: eqPos + 1, valueEnd: tokenEnd})
			}
		}

		if end < 0 {
			break
		}

		start = end + 1
	}

	return result
}

func indexByte(s string, from int, b byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}

	return -1
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// extractTagValue returns the first value associated with wantedTag in
// message, or "" if the tag is absent or malformed. Used by the version
// selector to pull BeginString (8) and ApplVerID (1128) before a full
// tokenize pass.
func extractTagValue(message string, wantedTag int) string {
	start := 0
	for start < len(message) {
		end := indexByte(message, start, soh)
		tokenEnd := end
		if end < 0 {
			tokenEnd = len(message)
		}

		eqPos := indexByte(message, start, '=')

		if eqPos >= 0 && eqPos < tokenEnd {
			if tag, ok := parsePositiveInt(message[start:eqPos]); ok && tag == wantedTag {
				return message[eqPos+1 : tokenEnd]
			}
		}

		if end < 0 {
			break
		}

		start = end + 1
	}

	return ""
}
