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

// Browsing and display of a loaded dictionary.Dictionary for the
// fixdecoder inspection tool: tag, message, component, header and
// trailer listings. This walks the same member graph validateStructure
// walks in structure.go, since a component can reference another
// component that in turn references the first.
package decoder

import (
	"fmt"
	"sort"

	"github.com/stephenlclarke/fixsession/dictionary"
)

// FindField returns the field definition for tagID, or false if it is not
// present in dict.
func FindField(dict *dictionary.Dictionary, tagID int) (dictionary.FieldDef, bool) {
	return dict.FieldByNumber(uint32(tagID))
}

// ListAllTags prints every field in dict, sorted by tag number.
func ListAllTags(dict *dictionary.Dictionary) {
	fields := sortedFields(dict)

	for _, f := range fields {
		fmt.Printf("%-4d: %s (%s)\n", f.Number, f.Name, f.Type)
	}
}

// PrintTagsInColumns prints every field in dict, one "tag: name" entry per
// column cell.
func PrintTagsInColumns(dict *dictionary.Dictionary) {
	fields := sortedFields(dict)

	items := make([]string, 0, len(fields))
	for _, f := range fields {
		items = append(items, fmt.Sprintf("%-4d: %s", f.Number, f.Name))
	}

	PrintStringColumns(items)
}

// PrintTagDetails prints one field's name/type and, if verbose, its enums.
func PrintTagDetails(field dictionary.FieldDef, verbose, column bool) {
	fmt.Printf("%-4d: %s (%s)\n", field.Number, field.Name, field.Type)

	if !verbose {
		return
	}

	if column {
		printEnumColumns(field.Enums, 0)
	} else {
		for _, e := range field.Enums {
			printEnum(e.Value, e.Description, 0)
		}
	}
}

func sortedFields(dict *dictionary.Dictionary) []dictionary.FieldDef {
	fields := dict.Fields()

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Number < fields[j].Number
	})

	return fields
}

// ListAllComponents prints the name of every component in dict, sorted.
func ListAllComponents(dict *dictionary.Dictionary) {
	for _, name := range sortedComponentNames(dict) {
		fmt.Println(name)
	}
}

func sortedComponentNames(dict *dictionary.Dictionary) []string {
	names := dict.ComponentNames()
	sort.Strings(names)

	return names
}

// DisplayComponent prints a component or the standard header/trailer by
// name, followed by its resolved member list.
func DisplayComponent(dict *dictionary.Dictionary, name string, members []dictionary.Member, verbose, column bool, indent int) {
	fmt.Printf("<%s>\n", name)
	printMembers(dict, members, verbose, column, indent)
}

// ListAllMessages prints every message in dict, sorted by name.
func ListAllMessages(dict *dictionary.Dictionary) {
	msgs := dict.Messages()

	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Name < msgs[j].Name
	})

	for _, m := range msgs {
		printMessageStart(m)
	}
}

func printMessageStart(m dictionary.MessageDef) {
	fmt.Printf("%2s: %s (%s)\n", m.MsgType, m.Name, m.MsgCat)
}

// DisplayMessageStructureWithOptions prints a message's MsgType/name/
// category line followed by its resolved members, optionally bracketed
// by the dictionary's standard header and trailer.
func DisplayMessageStructureWithOptions(
	dict *dictionary.Dictionary,
	msg dictionary.MessageDef,
	verbose, includeHeader, includeTrailer, column bool,
	indent int,
) {
	printMessageStart(msg)

	if includeHeader {
		fmt.Println("  Header:")
		printMembers(dict, dict.Header(), verbose, column, indent)
	}

	printMembers(dict, msg.Members, verbose, column, indent)

	if includeTrailer {
		fmt.Println("  Trailer:")
		printMembers(dict, dict.Trailer(), verbose, column, indent)
	}
}

// printMembers walks a resolved member list the way validateStructure
// does, printing a field line per MemberField, a bracketed name plus its
// resolved component members per MemberComponent, and a bracketed name
// plus its child members per MemberGroup.
func printMembers(dict *dictionary.Dictionary, members []dictionary.Member, verbose, column bool, indent int) {
	for _, m := range members {
		switch m.Kind {
		case dictionary.MemberField:
			printMemberField(dict, m, verbose, column, indent)

		case dictionary.MemberComponent:
			printIndent(indent)
			fmt.Printf("<%s>%s\n", m.Name, formatRequired(m.Required))

			if children, ok := dict.ComponentByName(m.Name); ok {
				printMembers(dict, children, verbose, column, indent+2)
			}

		case dictionary.MemberGroup:
			printIndent(indent)
			fmt.Printf("[%s]%s\n", m.Name, formatRequired(m.Required))
			printMembers(dict, m.Children, verbose, column, indent+2)
		}
	}
}

func printMemberField(dict *dictionary.Dictionary, m dictionary.Member, verbose, column bool, indent int) {
	def, ok := dict.FieldByName(m.Name)
	if !ok {
		printIndent(indent)
		fmt.Printf("%s%s\n", m.Name, formatRequired(m.Required))

		return
	}

	printIndent(indent)
	fmt.Printf("%-4d: %s (%s)%s\n", def.Number, def.Name, def.Type, formatRequired(m.Required))

	if !verbose {
		return
	}

	if column {
		printEnumColumns(def.Enums, indent)
	} else {
		for _, e := range def.Enums {
			printEnum(e.Value, e.Description, indent)
		}
	}
}

// PrintSchemaSummary prints a dictionary's version and element counts.
func PrintSchemaSummary(dict *dictionary.Dictionary) {
	fmt.Printf("  FIX Version:  %s\n", dict.BeginString())
	fmt.Printf("  Service Pack: %d\n", dict.ServicePack())
	fmt.Printf("  Messages:     %d\n", dict.MessageCount())
	fmt.Printf("  Components:   %d\n", dict.ComponentCount())
	fmt.Printf("  Fields:       %d\n", dict.FieldCount())
}
