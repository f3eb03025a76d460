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

import (
	"strconv"
	"strings"
)

// ValueKind discriminates which alternative of TypedValue is populated.
// Go has no tagged-union/variant type, so TypedValue plays that role
// explicitly, mirroring std::variant<monostate, bool, int64, float,
// double, string_view> in the original decoder.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindBool
	KindInt64
	KindFloat32
	KindFloat64
	KindString
)

// TypedValue is the decoded, typed form of one field's raw string value.
type TypedValue struct {
	Kind    ValueKind
	Bool    bool
	Int64   int64
	Float32 float32
	Float64 float64
	Str     string
}

// ValueDecoderFunc converts a field's raw string value into a TypedValue.
type ValueDecoderFunc func(value string) TypedValue

func decodeBoolean(value string) TypedValue {
	switch value {
	case "Y", "y", "1", "TRUE", "true":
		return TypedValue{Kind: KindBool, Bool: true}
	case "N", "n", "0", "FALSE", "false":
		return TypedValue{Kind: KindBool, Bool: false}
	default:
		return TypedValue{}
	}
}

func decodeInt(value string) TypedValue {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return TypedValue{}
	}

	return TypedValue{Kind: KindInt64, Int64: n}
}

func decodeFloat(value string) TypedValue {
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return TypedValue{}
	}

	return TypedValue{Kind: KindFloat32, Float32: float32(f)}
}

func decodeDouble(value string) TypedValue {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return TypedValue{}
	}

	return TypedValue{Kind: KindFloat64, Float64: f}
}

func decodeString(value string) TypedValue {
	return TypedValue{Kind: KindString, Str: value}
}

// builtinValueDecoders returns the type-name -> decoder registry a fresh
// Decoder seeds itself with, grouped exactly as the upstream decoder
// groups its FIX type names onto a handful of primitive decoders.
func builtinValueDecoders() map[string]ValueDecoderFunc {
	decoders := map[string]ValueDecoderFunc{
		"BOOLEAN": decodeBoolean,
		"INT":     decodeInt,
		"FLOAT":   decodeFloat,
		"DOUBLE":  decodeDouble,
		"STRING":  decodeString,
	}

	for _, alias := range []string{"NUMINGROUP", "SEQNUM", "LENGTH"} {
		decoders[alias] = decoders["INT"]
	}

	for _, alias := range []string{"AMT", "PRICE", "PRICEOFFSET", "PERCENTAGE", "QTY"} {
		decoders[alias] = decoders["DOUBLE"]
	}

	for _, alias := range []string{
		"CHAR", "MULTIPLECHARVALUE", "MULTIPLESTRINGVALUE", "EXCHANGE", "CURRENCY",
		"UTCTIMESTAMP", "UTCTIMEONLY", "UTCDATEONLY", "LOCALMKTDATE", "MONTHYEAR",
		"DAYOFMONTH", "DATA", "COUNTRY", "LANGUAGE",
	} {
		decoders[alias] = decoders["STRING"]
	}

	return decoders
}

// builtinDecoderTagDecoders mirrors builtinValueDecoders for the small
// DecoderTag code space used by per-version resolvers.
func builtinDecoderTagDecoders(byName map[string]ValueDecoderFunc) map[DecoderTag]ValueDecoderFunc {
	return map[DecoderTag]ValueDecoderFunc{
		DecoderTagBool:       byName["BOOLEAN"],
		DecoderTagInt64:      byName["INT"],
		DecoderTagFloat:      byName["FLOAT"],
		DecoderTagDouble:     byName["DOUBLE"],
		DecoderTagString:     byName["STRING"],
		DecoderTagGroupCount: byName["INT"],
		DecoderTagRawData:    byName["STRING"],
	}
}

func normalizeTypeName(name string) string {
	return strings.ToUpper(name)
}
