/*
fixdecoder — FIX protocol decoder tools
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
package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/stephenlclarke/fixsession/decoder"
	"github.com/stephenlclarke/fixsession/dictionary"
	"github.com/stephenlclarke/fixsession/fix"
)

// handleXML is triggered when the user supplied -xml=FILE.
// It prints a short description of the external dictionary that has just
// been loaded, then returns true so runHandlers knows a handler fired.
func handleXML(opts CLIOptions, dict *dictionary.Dictionary) bool {
	// Not our turn if -xml wasn’t given.
	if opts.XMLPath == "" {
		return false
	}

	// Re-use the same “info” formatter the other handlers use so the look
	// & feel stays identical.
	fmt.Printf("Dictionary loaded from: %s%s%s\n\n", decoder.ColourError, opts.XMLPath, decoder.ColourReset)

	decoder.PrintSchemaSummary(dict)

	return true
}

// handleInfo prints a summary of the dictionary. Returns true if handled.
func handleInfo(opts CLIOptions, dict *dictionary.Dictionary) bool {
	if !opts.Info {
		return false
	}

	fmt.Printf("Available FIX Dictionaries: %s\n", fix.SupportedFixVersions())
	fmt.Printf("Current Schema:\n")
	decoder.PrintSchemaSummary(dict)

	return true
}

// handleMessage processes the -message flag. Returns true if handled.
func handleMessage(opts CLIOptions, dict *dictionary.Dictionary) bool {
	if !opts.Message.isSet {
		return false
	}

	switch opts.Message.value {
	case "true": // bare -message
		if opts.ColumnOutput {
			msgs := dict.Messages()
			items := make([]string, 0, len(msgs))

			for _, m := range msgs {
				items = append(items, fmt.Sprintf("%2s: %s (%s)", m.MsgType, m.Name, m.MsgCat))
			}

			sort.Strings(items)

			decoder.PrintStringColumns(items)
		} else {
			decoder.ListAllMessages(dict)
		}

	case "": // explicit -message=
		PrintUsage()
	default:
		// specific message
		for _, m := range dict.Messages() {
			if m.Name == opts.Message.value || m.MsgType == opts.Message.value {
				decoder.DisplayMessageStructureWithOptions(dict, m, opts.Verbose, opts.IncludeHeader, opts.IncludeTrailer, opts.ColumnOutput, 4)
				return true
			}
		}

		fmt.Printf("Message not found: %s\n", opts.Message.value)

		return true
	}

	return true
}

// handleTag processes the -tag flag. Returns true if handled.
func handleTag(opts CLIOptions, dict *dictionary.Dictionary) bool {
	if !opts.Tag.isSet {
		return false
	}

	switch opts.Tag.value {
	case "true": // bare -tag
		handleBareTag(opts, dict)
	case "": // explicit -tag=
		PrintUsage()
	default:
		handleSpecificTag(opts, dict)
	}

	return true
}

func handleBareTag(opts CLIOptions, dict *dictionary.Dictionary) {
	if opts.ColumnOutput {
		decoder.PrintTagsInColumns(dict)
	} else {
		decoder.ListAllTags(dict)
	}
}

func handleSpecificTag(opts CLIOptions, dict *dictionary.Dictionary) {
	id, err := strconv.Atoi(opts.Tag.value)
	if err != nil {
		fmt.Printf("Invalid tag: %s\n", opts.Tag.value)
		return
	}

	field, found := decoder.FindField(dict, id)
	if !found {
		fmt.Printf("Tag not found: %d\n", id)
		return
	}

	decoder.PrintTagDetails(field, opts.Verbose, opts.ColumnOutput)
}

// handleComponent processes the -component flag. Returns true if handled.
func handleComponent(opts CLIOptions, dict *dictionary.Dictionary) bool {
	if !opts.Component.isSet {
		return false
	}

	switch opts.Component.value {
	case "true": // bare -component
		handleBareComponent(opts, dict)
	case "": // explicit -component=
		PrintUsage()
	default:
		handleSpecificComponent(opts, dict)
	}
	return true
}

func handleBareComponent(opts CLIOptions, dict *dictionary.Dictionary) {
	if opts.ColumnOutput {
		names := dict.ComponentNames()
		sort.Strings(names)
		decoder.PrintStringColumns(names)
	} else {
		decoder.ListAllComponents(dict)
	}
}

func handleSpecificComponent(opts CLIOptions, dict *dictionary.Dictionary) {
	name := opts.Component.value

	members, ok := componentMembers(dict, name)
	if !ok {
		fmt.Printf("Component not found: %s\n", name)
		return
	}

	decoder.DisplayComponent(dict, name, members, opts.Verbose, opts.ColumnOutput, 0)
}

// componentMembers resolves a component by name, treating "Header" and
// "Trailer" as the dictionary's standard header/trailer blocks rather
// than named <component> entries.
func componentMembers(dict *dictionary.Dictionary, name string) ([]dictionary.Member, bool) {
	switch name {
	case "Header":
		return dict.Header(), true
	case "Trailer":
		return dict.Trailer(), true
	default:
		return dict.ComponentByName(name)
	}
}

// runHandlers invokes each of the "-info", "-message", "-tag", and "-component" handlers.
// It returns true if any handler succeeded.
func runHandlers(opts CLIOptions, dict *dictionary.Dictionary) bool {
	handleXML(opts, dict)

	handled := false

	if handleInfo(opts, dict) {
		handled = true
	}

	if handleMessage(opts, dict) {
		handled = true
	}

	if handleTag(opts, dict) {
		handled = true
	}

	if handleComponent(opts, dict) {
		handled = true
	}

	return handled
}
