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
	"strings"
	"sync"

	"github.com/stephenlclarke/fixsession/dictionary"
)

// DecodedField is a single field decoded from a raw message, with its
// dictionary name/type resolved when a matching dictionary was found.
type DecodedField struct {
	Tag   uint32
	Name  string
	Type  string
	Value string
	Typed TypedValue
}

// DecodedMessage is the ordered, named-field result of Decoder.Decode.
type DecodedMessage struct {
	BeginString       string
	MsgType           string
	NormalizedMessage string
	Fields            []DecodedField
	StructurallyValid bool
	ValidationErrors  []string
}

// DecodedObjectNode is one entry in a DecodedObject's tag-indexed field
// map. Children is reserved for hierarchical decoding extensions (e.g. a
// future nested-group representation) and is empty for a flat decode.
type DecodedObjectNode struct {
	Value    TypedValue
	Children map[uint32]DecodedObjectNode
}

// DecodedObject is the tag-indexed result of Decoder.DecodeObject,
// optimized for lookups such as obj.Lookup(35).
type DecodedObject struct {
	BeginString       string
	MsgType           string
	NormalizedMessage string
	Fields            map[uint32]DecodedObjectNode
	StructurallyValid bool
	ValidationErrors  []string
}

// DecodedObjectLookup is a chained lookup handle: looking up a tag that
// exists as a child of the current node returns that child; otherwise
// the lookup falls back to the root-level field map. This lets callers
// write obj.Lookup(A).Lookup(B) and get a sensible answer whether B is
// nested under A or sits at the top level.
type DecodedObjectLookup struct {
	root *map[uint32]DecodedObjectNode
	node *DecodedObjectNode
}

// Lookup returns the root-level entry for tag.
func (o *DecodedObject) Lookup(tag uint32) DecodedObjectLookup {
	node, ok := o.Fields[tag]
	if !ok {
		return DecodedObjectLookup{root: &o.Fields}
	}

	return DecodedObjectLookup{root: &o.Fields, node: &node}
}

// Lookup chains from the current lookup: a child of the current node
// wins if present, otherwise the root-level field for tag is returned.
func (l DecodedObjectLookup) Lookup(tag uint32) DecodedObjectLookup {
	if l.node != nil {
		if child, ok := l.node.Children[tag]; ok {
			return DecodedObjectLookup{root: l.root, node: &child}
		}
	}

	if l.root == nil {
		return DecodedObjectLookup{}
	}

	node, ok := (*l.root)[tag]
	if !ok {
		return DecodedObjectLookup{root: l.root}
	}

	return DecodedObjectLookup{root: l.root, node: &node}
}

// Exists reports whether this lookup resolved to an existing node.
func (l DecodedObjectLookup) Exists() bool { return l.node != nil }

// Value returns the node's typed value, or a zero TypedValue if missing.
func (l DecodedObjectLookup) Value() TypedValue {
	if l.node == nil {
		return TypedValue{}
	}

	return l.node.Value
}

// Decoder decodes raw FIX messages using QuickFIX-style XML dictionaries,
// against either a flat field list (Decode) or a tag-indexed object
// (DecodeObject).
type Decoder struct {
	dictionaries *dictionary.Set

	mu                 sync.RWMutex
	valueDecoders      map[string]ValueDecoderFunc
	decoderTagDecoders map[DecoderTag]ValueDecoderFunc
	versionResolvers   map[string]TagResolver
}

// NewDecoder returns a Decoder seeded with the built-in type decoders
// (BOOLEAN, INT and its aliases, FLOAT/DOUBLE and their aliases, STRING
// and its aliases) and the default per-version session-header resolvers.
func NewDecoder() *Decoder {
	byName := builtinValueDecoders()

	return &Decoder{
		dictionaries:       dictionary.NewSet(),
		valueDecoders:      byName,
		decoderTagDecoders: builtinDecoderTagDecoders(byName),
		versionResolvers:   defaultVersionResolvers(),
	}
}

// LoadDictionariesFromDirectory loads every dictionary XML file in path.
func (d *Decoder) LoadDictionariesFromDirectory(path string) error {
	return d.dictionaries.LoadDirectory(path)
}

// Dictionaries exposes the underlying dictionary set, e.g. so a caller
// can Add() an embedded dictionary without going through a directory.
func (d *Decoder) Dictionaries() *dictionary.Set {
	return d.dictionaries
}

// RegisterTypeDecoder registers or overrides the value decoder for a
// dictionary type name (case-insensitive). Safe to call before Decode/
// DecodeObject are used concurrently; registering while decodes are in
// flight elsewhere is undefined, matching a plain map guarded for the
// common register-then-use pattern.
func (d *Decoder) RegisterTypeDecoder(typeName string, fn ValueDecoderFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.valueDecoders[normalizeTypeName(typeName)] = fn
}

// RegisterVersionResolver overrides the TagResolver consulted for a given
// BeginString, e.g. to plug in a fully generated per-version table.
func (d *Decoder) RegisterVersionResolver(beginString string, resolver TagResolver) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.versionResolvers[beginString] = resolver
}

func (d *Decoder) decodeByTag(tag DecoderTag, value string) TypedValue {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if fn, ok := d.decoderTagDecoders[tag]; ok {
		return fn(value)
	}

	if fn, ok := d.decoderTagDecoders[DecoderTagString]; ok {
		return fn(value)
	}

	return TypedValue{}
}

func (d *Decoder) decodeByType(typeName string, value string) TypedValue {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if fn, ok := d.valueDecoders[normalizeTypeName(typeName)]; ok {
		return fn(value)
	}

	if fn, ok := d.valueDecoders["STRING"]; ok {
		return fn(value)
	}

	return TypedValue{}
}

// versionDecoderSelection is the result of choosing a FIX version to
// decode against: the effective BeginString used for dictionary lookup,
// and (if one is registered) the per-tag resolver for that version.
type versionDecoderSelection struct {
	beginString string
	resolver    TagResolver
}

func (d *Decoder) selectVersion(message string) versionDecoderSelection {
	beginString := extractTagValue(message, 8)
	applVerID := extractTagValue(message, 1128)

	effective := beginString
	if applVerID != "" {
		effective = applicationVersionIDToBeginString(applVerID)
	}

	d.mu.RLock()
	resolver := d.versionResolvers[effective]
	d.mu.RUnlock()

	return versionDecoderSelection{beginString: effective, resolver: resolver}
}

func (d *Decoder) selectDictionary(fields []parsedField, message string) *dictionary.Dictionary {
	var beginString, applVerID string

	for _, f := range fields {
		value := message[f.valueBegin:f.valueEnd]

		switch f.tag {
		case 8:
			beginString = value
		case 1128:
			if applVerID == "" {
				applVerID = value
			}
		}
	}

	if applVerID != "" {
		if dict := d.dictionaries.FindByBeginString(applicationVersionIDToBeginString(applVerID)); dict != nil {
			return dict
		}
	}

	if beginString != "" {
		return d.dictionaries.FindByBeginString(beginString)
	}

	return nil
}

// Decode parses raw into an ordered, named field list. raw may use SOH
// (0x01) or '|' as the field separator.
func (d *Decoder) Decode(raw string) DecodedMessage {
	normalized := normalizeMessage(raw)

	fields := splitTags(normalized)
	version := d.selectVersion(normalized)
	dict := d.selectDictionary(fields, normalized)

	decoded := DecodedMessage{
		NormalizedMessage: normalized,
		StructurallyValid: true,
		Fields:            make([]DecodedField, 0, len(fields)),
	}

	validationFields := make([]validationField, 0, len(fields))

	for _, pf := range fields {
		value := normalized[pf.valueBegin:pf.valueEnd]
		validationFields = append(validationFields, validationField{tag: pf.tag, valueBegin: pf.valueBegin, valueEnd: pf.valueEnd})

		field := DecodedField{Tag: pf.tag, Value: value}

		if pf.tag == 8 {
			decoded.BeginString = value
		}

		if pf.tag == 35 {
			decoded.MsgType = value
		}

		if dict != nil {
			if def, ok := dict.FieldByNumber(pf.tag); ok {
				field.Name = def.Name
				field.Type = def.Type
			}
		}

		decoderTag := DecoderTagUnknown
		if version.resolver != nil {
			decoderTag = version.resolver(pf.tag)
		}

		if decoderTag != DecoderTagUnknown {
			field.Typed = d.decodeByTag(decoderTag, value)
		} else {
			field.Typed = d.decodeByType(field.Type, value)
		}

		decoded.Fields = append(decoded.Fields, field)
	}

	if dict != nil {
		decoded.ValidationErrors = validateStructure(dict, decoded.MsgType, normalized, validationFields)
		decoded.StructurallyValid = len(decoded.ValidationErrors) == 0
	}

	return decoded
}

// DecodeObject parses raw into a tag-indexed DecodedObject. On a
// duplicate tag, the first occurrence wins, matching the upstream
// decoder's try_emplace semantics.
func (d *Decoder) DecodeObject(raw string) DecodedObject {
	normalized := normalizeMessage(raw)

	fields := splitTags(normalized)
	version := d.selectVersion(normalized)
	dict := d.selectDictionary(fields, normalized)

	decoded := DecodedObject{
		NormalizedMessage: normalized,
		StructurallyValid: true,
		Fields:            make(map[uint32]DecodedObjectNode, len(fields)),
	}

	if version.beginString != "" {
		decoded.BeginString = version.beginString
	}

	validationFields := make([]validationField, 0, len(fields))

	for _, pf := range fields {
		value := normalized[pf.valueBegin:pf.valueEnd]
		validationFields = append(validationFields, validationField{tag: pf.tag, valueBegin: pf.valueBegin, valueEnd: pf.valueEnd})

		if pf.tag == 8 && decoded.BeginString == "" {
			decoded.BeginString = value
		}

		if pf.tag == 35 && decoded.MsgType == "" {
			decoded.MsgType = value
		}

		var fieldType string
		if dict != nil {
			if def, ok := dict.FieldByNumber(pf.tag); ok {
				fieldType = def.Type
			}
		}

		decoderTag := DecoderTagUnknown
		if version.resolver != nil {
			decoderTag = version.resolver(pf.tag)
		}

		var typed TypedValue
		if decoderTag != DecoderTagUnknown {
			typed = d.decodeByTag(decoderTag, value)
		} else {
			typed = d.decodeByType(fieldType, value)
		}

		if _, exists := decoded.Fields[pf.tag]; !exists {
			decoded.Fields[pf.tag] = DecodedObjectNode{Value: typed}
		}
	}

	if dict != nil {
		decoded.ValidationErrors = validateStructure(dict, decoded.MsgType, normalized, validationFields)
		decoded.StructurallyValid = len(decoded.ValidationErrors) == 0
	}

	return decoded
}

// DictionaryForMessage returns the dictionary Decode/DecodeObject would
// select for raw: the ApplVerID-mapped dictionary if tag 1128 is present
// and known, otherwise the one registered for raw's BeginString. Returns
// nil if none matches.
func (d *Decoder) DictionaryForMessage(raw string) *dictionary.Dictionary {
	normalized := normalizeMessage(raw)
	fields := splitTags(normalized)

	return d.selectDictionary(fields, normalized)
}

// LoadEmbeddedDictionary parses embeddedXML (as returned by
// fix.ChooseEmbeddedXML) and adds it to the decoder's dictionary set,
// for callers that don't have a dictionary directory on disk.
func (d *Decoder) LoadEmbeddedDictionary(embeddedXML string) error {
	dict, err := dictionary.LoadReader(strings.NewReader(embeddedXML), "<embedded>")
	if err != nil {
		return err
	}

	d.dictionaries.Add(dict)

	return nil
}
