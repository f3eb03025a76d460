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

// DecoderTag is a small code identifying which built-in value decoder a
// generated per-version tag table would route a tag to, without needing
// a dictionary field-type lookup at decode time.
type DecoderTag uint8

const (
	DecoderTagUnknown DecoderTag = iota
	DecoderTagBool
	DecoderTagInt64
	DecoderTagFloat
	DecoderTagDouble
	DecoderTagString
	DecoderTagGroupCount
	DecoderTagRawData
)

// TagResolver maps a numeric FIX tag to its DecoderTag for one FIX
// version. Real per-version resolvers are generated from a dictionary at
// build time; fixsession ships a minimal hand-written table covering the
// common session-level header/trailer tags, sufficient to demonstrate
// the mechanism without vendoring full generated code for every version.
type TagResolver func(tag uint32) DecoderTag

// sessionHeaderTags is shared by every version's resolver: the handful of
// header/trailer tags whose wire type never varies by FIX version.
var sessionHeaderTags = map[uint32]DecoderTag{
	8:    DecoderTagString, // BeginString
	9:    DecoderTagInt64,  // BodyLength
	10:   DecoderTagString, // CheckSum (digits, but compared as text)
	34:   DecoderTagInt64,  // MsgSeqNum
	35:   DecoderTagString, // MsgType
	43:   DecoderTagBool,   // PossDupFlag
	49:   DecoderTagString, // SenderCompID
	52:   DecoderTagString, // SendingTime
	56:   DecoderTagString, // TargetCompID
	97:   DecoderTagBool,   // PossResend
	112:  DecoderTagString, // TestReqID
	122:  DecoderTagString, // OrigSendingTime
	123:  DecoderTagBool,   // EndOfSequenceGapFill (not standard but illustrative)
	1128: DecoderTagString, // ApplVerID
}

func sessionHeaderResolver(tag uint32) DecoderTag {
	if dt, ok := sessionHeaderTags[tag]; ok {
		return dt
	}

	return DecoderTagUnknown
}

// defaultVersionResolvers seeds the registry consulted by selectVersion.
// Every supported BeginString shares the same session-header table; a
// caller with a real generated table for a version can override it with
// Decoder.RegisterVersionResolver.
func defaultVersionResolvers() map[string]TagResolver {
	versions := []string{
		"FIX.4.0", "FIX.4.1", "FIX.4.2", "FIX.4.3", "FIX.4.4",
		"FIX.5.0", "FIX.5.0SP1", "FIX.5.0SP2", "FIXT.1.1",
	}

	out := make(map[string]TagResolver, len(versions))
	for _, v := range versions {
		out[v] = sessionHeaderResolver
	}

	return out
}

// applicationVersionIDToBeginString maps an ApplVerID (tag 1128) value to
// the BeginString it designates, per the FIXT.1.1 transport encoding.
func applicationVersionIDToBeginString(value string) string {
	switch value {
	case "2":
		return "FIX.4.0"
	case "3":
		return "FIX.4.1"
	case "4":
		return "FIX.4.2"
	case "5":
		return "FIX.4.3"
	case "6":
		return "FIX.4.4"
	case "7", "8", "9":
		return "FIX.5.0"
	default:
		return value
	}
}
