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
package fix

import _ "embed"

//go:embed dictionaries/FIX40.xml
var embeddedFIX40 string

//go:embed dictionaries/FIX41.xml
var embeddedFIX41 string

//go:embed dictionaries/FIX42.xml
var embeddedFIX42 string

//go:embed dictionaries/FIX43.xml
var embeddedFIX43 string

//go:embed dictionaries/FIX44.xml
var embeddedFIX44 string

//go:embed dictionaries/FIX50.xml
var embeddedFIX50 string

//go:embed dictionaries/FIX50SP1.xml
var embeddedFIX50SP1 string

//go:embed dictionaries/FIX50SP2.xml
var embeddedFIX50SP2 string

//go:embed dictionaries/FIXT11.xml
var embeddedFIXT11 string

// ChooseEmbeddedXML returns the minimal, illustrative dictionary XML
// embedded for version (one of "40", "41", "42", "43", "44", "50",
// "50SP1", "50SP2", "T11"). An unrecognized version falls back to
// FIX.4.4, the most common wire version in production deployments.
//
// These embedded dictionaries are intentionally minimal — enough to
// exercise the session header and the core admin message set. A real
// deployment loads full QuickFIX-style dictionaries from disk via
// dictionary.Set.LoadDirectory rather than relying on what's embedded
// here.
func ChooseEmbeddedXML(version string) string {
	switch version {
	case "40":
		return embeddedFIX40
	case "41":
		return embeddedFIX41
	case "42":
		return embeddedFIX42
	case "43":
		return embeddedFIX43
	case "44":
		return embeddedFIX44
	case "50":
		return embeddedFIX50
	case "50SP1":
		return embeddedFIX50SP1
	case "50SP2":
		return embeddedFIX50SP2
	case "T11":
		return embeddedFIXT11
	default:
		return embeddedFIX44
	}
}

// SupportedFixVersions returns the comma-separated list of version
// tokens accepted by ChooseEmbeddedXML, in the order dictionaries were
// historically released.
func SupportedFixVersions() string {
	return "40,41,42,43,44,50,50SP1,50SP2,T11"
}
