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

// Structural validation against a dictionary.Dictionary's message/
// component/group member lists, resolved by name rather than inlined at
// load time. This is distinct from the display-oriented walk in
// browse.go: that one renders members for a human reader, while this one
// walks the dictionary's component graph the way a dictionary-driven
// decoder must, since a component can reference another component that
// in turn references the first.
package decoder

import (
	"fmt"
	"strconv"

	"github.com/stephenlclarke/fixsession/dictionary"
)

// validationField is the subset of a parsedField the structural validator
// needs: its tag and the byte span of its raw value within the message.
type validationField struct {
	tag        uint32
	valueBegin int
	valueEnd   int
}

// firstMemberTag returns the tag that would appear first on the wire for
// a single member, recursing through components (but never through
// groups, whose first tag is the group's own count field).
func firstMemberTag(dict *dictionary.Dictionary, member dictionary.Member) (uint32, bool) {
	if member.Kind == dictionary.MemberField || member.Kind == dictionary.MemberGroup {
		if def, ok := dict.FieldByName(member.Name); ok {
			return def.Number, true
		}

		return 0, false
	}

	members, ok := dict.ComponentByName(member.Name)
	if !ok {
		return 0, false
	}

	return firstMembersTag(dict, members)
}

func firstMembersTag(dict *dictionary.Dictionary, members []dictionary.Member) (uint32, bool) {
	for _, m := range members {
		if tag, ok := firstMemberTag(dict, m); ok {
			return tag, ok
		}
	}

	return 0, false
}

// parseMemberForValidation attempts to consume one member, in order,
// starting at fields[*index]. It reports whether anything was consumed
// and appends human-readable errors for required members that are
// missing or malformed.
func parseMemberForValidation(
	dict *dictionary.Dictionary,
	member dictionary.Member,
	message string,
	fields []validationField,
	index *int,
	errors *[]string,
	enforcePresence bool,
) bool {
	switch member.Kind {
	case dictionary.MemberField:
		def, ok := dict.FieldByName(member.Name)
		if !ok {
			return false
		}

		if *index < len(fields) && fields[*index].tag == def.Number {
			*index++
			return true
		}

		if member.Required && enforcePresence {
			*errors = append(*errors, fmt.Sprintf("Missing required field '%s'", member.Name))
		}

		return false

	case dictionary.MemberComponent:
		members, ok := dict.ComponentByName(member.Name)
		if !ok {
			if member.Required && enforcePresence {
				*errors = append(*errors, fmt.Sprintf("Missing required component '%s'", member.Name))
			}

			return false
		}

		expectedTag, hasExpected := firstMembersTag(dict, members)
		if hasExpected && (*index >= len(fields) || fields[*index].tag != expectedTag) {
			if member.Required && enforcePresence {
				*errors = append(*errors, fmt.Sprintf("Missing required component '%s'", member.Name))
			}

			return false
		}

		startIndex := *index
		parseMembersForValidation(dict, members, message, fields, index, errors, true)
		consumed := *index > startIndex

		if member.Required && enforcePresence && !consumed {
			*errors = append(*errors, fmt.Sprintf("Missing required component '%s'", member.Name))
		}

		return consumed

	default: // MemberGroup
		countDef, ok := dict.FieldByName(member.Name)
		if !ok {
			return false
		}

		if *index >= len(fields) || fields[*index].tag != countDef.Number {
			if member.Required && enforcePresence {
				*errors = append(*errors, fmt.Sprintf("Missing required group-count field '%s'", member.Name))
			}

			return false
		}

		countField := fields[*index]
		countValue := message[countField.valueBegin:countField.valueEnd]

		declaredCount, err := strconv.Atoi(countValue)
		if err != nil || declaredCount < 0 {
			*errors = append(*errors, fmt.Sprintf("Invalid group-count value for '%s'", member.Name))
			*index++

			return true
		}

		*index++

		actualCount := 0
		for i := 0; i < declaredCount; i++ {
			entryStart := *index
			parseMembersForValidation(dict, member.Children, message, fields, index, errors, true)

			if *index == entryStart {
				break
			}

			actualCount++
		}

		if actualCount != declaredCount {
			*errors = append(*errors, fmt.Sprintf(
				"Group '%s' count mismatch: declared %d, actual %d", member.Name, declaredCount, actualCount))
		}

		return true
	}
}

func parseMembersForValidation(
	dict *dictionary.Dictionary,
	members []dictionary.Member,
	message string,
	fields []validationField,
	index *int,
	errors *[]string,
	enforcePresence bool,
) bool {
	consumedAny := false

	for _, member := range members {
		before := *index
		parseMemberForValidation(dict, member, message, fields, index, errors, enforcePresence)

		if *index > before {
			consumedAny = true
		}
	}

	return consumedAny
}

// validateStructure walks the message definition for msgType against the
// actual field sequence, positioning on the message's first recognizable
// tag (falling back to a scan for any top-level member's tag), then
// consuming members in declared order. It returns one error string per
// missing required member / malformed / miscounted group.
func validateStructure(
	dict *dictionary.Dictionary,
	msgType string,
	message string,
	fields []validationField,
) []string {
	var errors []string

	if msgType == "" {
		return errors
	}

	messageDef, ok := dict.MessageByType(msgType)
	if !ok {
		return errors
	}

	index := 0
	positioned := false

	if startTag, ok := firstMembersTag(dict, messageDef.Members); ok {
		for index < len(fields) {
			if fields[index].tag == startTag {
				positioned = true
				break
			}

			index++
		}
	}

	if !positioned {
		index = 0

		for index < len(fields) {
			matches := false

			for _, member := range messageDef.Members {
				if memberTag, ok := firstMemberTag(dict, member); ok && fields[index].tag == memberTag {
					matches = true
					break
				}
			}

			if matches {
				break
			}

			index++
		}
	}

	parseMembersForValidation(dict, messageDef.Members, message, fields, &index, &errors, true)

	return errors
}
