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
package dictionary

import (
	"encoding/xml"
	"fmt"
	"os"

	"golang.org/x/net/html/charset"
)

type rawFix struct {
	XMLName xml.Name `xml:"fix"`

	Type        string `xml:"type,attr"`
	Major       int    `xml:"major,attr"`
	Minor       int    `xml:"minor,attr"`
	ServicePack int    `xml:"servicepack,attr"`

	Fields struct {
		Field []rawField `xml:"field"`
	} `xml:"fields"`

	Messages struct {
		Message []rawMessage `xml:"message"`
	} `xml:"messages"`

	Components struct {
		Component []rawComponent `xml:"component"`
	} `xml:"components"`

	Header struct {
		Members []rawMember `xml:",any"`
	} `xml:"header"`

	Trailer struct {
		Members []rawMember `xml:",any"`
	} `xml:"trailer"`
}

type rawValue struct {
	Enum        string `xml:"enum,attr"`
	Description string `xml:"description,attr"`
}

type rawField struct {
	Name   string     `xml:"name,attr"`
	Number uint32     `xml:"number,attr"`
	Type   string     `xml:"type,attr"`
	Values []rawValue `xml:"value"`
}

type rawMember struct {
	XMLName  xml.Name
	Name     string      `xml:"name,attr"`
	Required string      `xml:"required,attr"`
	Children []rawMember `xml:",any"`
}

type rawMessage struct {
	Name    string      `xml:"name,attr"`
	MsgType string      `xml:"msgtype,attr"`
	MsgCat  string      `xml:"msgcat,attr"`
	Members []rawMember `xml:",any"`
}

type rawComponent struct {
	Name    string      `xml:"name,attr"`
	Members []rawMember `xml:",any"`
}

func memberKindFromTag(name string) MemberKind {
	switch name {
	case "component":
		return MemberComponent
	case "group":
		return MemberGroup
	default:
		return MemberField
	}
}

func convertMembers(raw []rawMember) []Member {
	out := make([]Member, 0, len(raw))

	for _, m := range raw {
		switch m.XMLName.Local {
		case "field", "component", "group":
		default:
			continue
		}

		member := Member{
			Kind:     memberKindFromTag(m.XMLName.Local),
			Name:     m.Name,
			Required: isRequiredAttr(m.Required),
		}

		if member.Kind == MemberGroup {
			member.Children = convertMembers(m.Children)
		}

		out = append(out, member)
	}

	return out
}

// LoadFile parses one QuickFIX-compatible XML dictionary file into a
// Dictionary. It uses a charset-aware XML decoder so dictionaries that
// declare a non-UTF-8 encoding still parse correctly.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load XML: %s: %w", path, err)
	}
	defer f.Close()

	return decode(f, path)
}

// LoadReader parses dictionary XML from an already-open reader. label is
// used only in error messages (typically the originating file path).
func LoadReader(r interface{ Read([]byte) (int, error) }, label string) (*Dictionary, error) {
	return decode(r, label)
}

func decode(r interface{ Read([]byte) (int, error) }, label string) (*Dictionary, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var raw rawFix

	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("missing <fix> root element in %s: %w", label, err)
	}

	d := &Dictionary{
		fixType:        raw.Type,
		major:          raw.Major,
		minor:          raw.Minor,
		servicePack:    raw.ServicePack,
		fieldsByNumber: make(map[uint32]FieldDef),
		fieldsByName:   make(map[string]FieldDef),
		messages:       make(map[string]MessageDef),
		components:     make(map[string][]Member),
	}
	d.beginString = buildBeginString(raw.Type, raw.Major, raw.Minor)

	for _, rf := range raw.Fields.Field {
		if rf.Number == 0 {
			continue
		}

		def := FieldDef{Number: rf.Number, Name: rf.Name, Type: rf.Type}
		for _, v := range rf.Values {
			def.Enums = append(def.Enums, FieldEnum{Value: v.Enum, Description: v.Description})
		}

		d.fieldsByNumber[def.Number] = def
		d.fieldsByName[def.Name] = def
	}

	for _, rm := range raw.Messages.Message {
		if rm.MsgType == "" {
			continue
		}

		d.messages[rm.MsgType] = MessageDef{
			Name:    rm.Name,
			MsgType: rm.MsgType,
			MsgCat:  rm.MsgCat,
			Members: convertMembers(rm.Members),
		}
	}

	for _, rc := range raw.Components.Component {
		if rc.Name == "" {
			continue
		}

		d.components[rc.Name] = convertMembers(rc.Members)
	}

	d.header = convertMembers(raw.Header.Members)
	d.trailer = convertMembers(raw.Trailer.Members)

	return d, nil
}
