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

// Package dictionary loads QuickFIX-style XML dictionaries into a flat,
// name-indexed model. Components are kept as a flat map of member lists
// and are resolved by name wherever they are referenced, rather than
// being expanded inline at load time — a component can reference itself
// or another component that references it back, and inline expansion
// would never terminate.
package dictionary

import "fmt"

// FieldEnum is one named value for a field, e.g. enum "1" description "BUY".
type FieldEnum struct {
	Value       string
	Description string
}

// FieldDef is the dictionary definition of a single FIX field.
type FieldDef struct {
	Number uint32
	Name   string
	Type   string
	Enums  []FieldEnum
}

// MemberKind distinguishes the three shapes a message or component member
// can take in dictionary XML.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberComponent
	MemberGroup
)

func (k MemberKind) String() string {
	switch k {
	case MemberComponent:
		return "component"
	case MemberGroup:
		return "group"
	default:
		return "field"
	}
}

// Member is one entry in a message or component's ordered member list.
type Member struct {
	Kind     MemberKind
	Name     string
	Required bool
	Children []Member // populated only when Kind == MemberGroup
}

// MessageDef is the dictionary definition of a single FIX message type.
type MessageDef struct {
	Name    string
	MsgType string
	MsgCat  string
	Members []Member
}

// Dictionary is one loaded QuickFIX-compatible XML dictionary, identified
// by its BeginString (e.g. "FIX.4.4" or "FIXT.1.1").
type Dictionary struct {
	beginString string
	fixType     string
	major       int
	minor       int
	servicePack int

	fieldsByNumber map[uint32]FieldDef
	fieldsByName   map[string]FieldDef
	messages       map[string]MessageDef
	components     map[string][]Member
	header         []Member
	trailer        []Member
}

// BeginString returns the dictionary's begin string, e.g. "FIX.4.4".
func (d *Dictionary) BeginString() string { return d.beginString }

// Type returns the dictionary's transport type, e.g. "FIX" or "FIXT".
func (d *Dictionary) Type() string { return d.fixType }

// ServicePack returns the dictionary's service pack number.
func (d *Dictionary) ServicePack() int { return d.servicePack }

// FieldByNumber finds a field definition by its numeric tag.
func (d *Dictionary) FieldByNumber(number uint32) (FieldDef, bool) {
	f, ok := d.fieldsByNumber[number]
	return f, ok
}

// FieldByName finds a field definition by its dictionary name.
func (d *Dictionary) FieldByName(name string) (FieldDef, bool) {
	f, ok := d.fieldsByName[name]
	return f, ok
}

// MessageByType finds a message definition by its MsgType (tag 35) value.
func (d *Dictionary) MessageByType(msgType string) (MessageDef, bool) {
	m, ok := d.messages[msgType]
	return m, ok
}

// ComponentByName finds a component's member list by its dictionary name.
// Components are never expanded into their referencing message or into
// each other; callers resolve component members on demand.
func (d *Dictionary) ComponentByName(name string) ([]Member, bool) {
	c, ok := d.components[name]
	return c, ok
}

// FieldCount, MessageCount and ComponentCount report the size of the
// loaded dictionary, used by summary/info displays.
func (d *Dictionary) FieldCount() int     { return len(d.fieldsByNumber) }
func (d *Dictionary) MessageCount() int   { return len(d.messages) }
func (d *Dictionary) ComponentCount() int { return len(d.components) }

// Fields returns a copy of every field definition, unordered.
func (d *Dictionary) Fields() []FieldDef {
	out := make([]FieldDef, 0, len(d.fieldsByNumber))
	for _, f := range d.fieldsByNumber {
		out = append(out, f)
	}
	return out
}

// Messages returns a copy of all message definitions, unordered.
func (d *Dictionary) Messages() []MessageDef {
	out := make([]MessageDef, 0, len(d.messages))
	for _, m := range d.messages {
		out = append(out, m)
	}
	return out
}

// Header and Trailer return the dictionary's standard header/trailer
// member lists, resolved the same way a component's members are.
func (d *Dictionary) Header() []Member  { return d.header }
func (d *Dictionary) Trailer() []Member { return d.trailer }

// ComponentNames returns the names of all loaded components, unordered.
func (d *Dictionary) ComponentNames() []string {
	out := make([]string, 0, len(d.components))
	for name := range d.components {
		out = append(out, name)
	}
	return out
}

// isRequiredAttr converts a QuickFIX "required" XML attribute value to a
// bool: true only when the value starts with 'Y' or 'y'.
func isRequiredAttr(value string) bool {
	return len(value) > 0 && (value[0] == 'Y' || value[0] == 'y')
}

// buildBeginString assembles a BeginString from a dictionary's type/major/minor
// attributes, e.g. ("FIXT", 1, 1) -> "FIXT.1.1".
func buildBeginString(fixType string, major, minor int) string {
	if fixType == "FIXT" {
		return fmt.Sprintf("FIXT.%d.%d", major, minor)
	}
	return fmt.Sprintf("FIX.%d.%d", major, minor)
}
