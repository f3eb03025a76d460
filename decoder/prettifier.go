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
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/stephenlclarke/fixsession/dictionary"
	"github.com/stephenlclarke/fixsession/fix"
	"golang.org/x/term"
)

var (
	streamLogFunc    = streamLog
	getTermSize      = term.GetSize // allow override in tests
	enableValidation = false        // controlled by -validate flag
)

var (
	ColourReset = "\033[0m"
	ColourLine  = "\033[38;5;244m"
	ColourTag   = "\033[38;5;81m"
	ColourName  = "\033[38;5;151m"
	ColourValue = "\033[38;5;228m"
	ColourEnum  = "\033[38;5;214m"
	ColourFile  = "\033[95m"
	ColourError = "\033[31m"
	ColourMsg   = "\033[97m"
	ColourTitle = "\033[31m"
)

func DisableColours() {
	ColourReset = ""
	ColourLine = ""
	ColourTag = ""
	ColourName = ""
	ColourValue = ""
	ColourEnum = ""
	ColourFile = ""
	ColourError = ""
	ColourMsg = ""
	ColourTitle = ""
}

// Prettify decodes msg against d's loaded dictionaries and renders one
// coloured line per field, with an enum description appended where the
// dictionary declares one for the field's value.
func (d *Decoder) Prettify(msg string) string {
	decoded := d.Decode(msg)
	dict := d.DictionaryForMessage(msg)

	var sb strings.Builder

	for _, f := range decoded.Fields {
		name := f.Name
		if name == "" {
			name = "?"
		}

		sb.WriteString(fmt.Sprintf("    %s%4d%s (%s%s%s): %s%s%s",
			ColourTag, f.Tag, ColourReset,
			ColourName, name, ColourReset,
			ColourValue, f.Value, ColourReset,
		))

		if desc := enumDescription(dict, f.Tag, f.Value); desc != "" {
			sb.WriteString(fmt.Sprintf(" (%s%s%s)", ColourEnum, desc, ColourReset))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func enumDescription(dict *dictionary.Dictionary, tag uint32, value string) string {
	if dict == nil {
		return ""
	}

	def, ok := dict.FieldByNumber(tag)
	if !ok {
		return ""
	}

	for _, e := range def.Enums {
		if e.Value == value {
			return e.Description
		}
	}

	return ""
}

func (d *Decoder) PrettifyFiles(paths []string, out io.Writer, errOut io.Writer, obfuscator *fix.Obfuscator) int {
	hadError := false

	// If no paths at all, default to stdin (unchanged behaviour)
	if len(paths) == 0 {
		if err := streamLogFunc(d, os.Stdin, out, errOut, obfuscator); err != nil {
			fmt.Fprintln(errOut, ColourError+"Error reading input:"+err.Error()+ColourReset)
			return 1
		}

		return 0
	}

	// Otherwise, iterate over every supplied path.
	// Treat the single dash "-" as a synonym for stdin.
	for _, path := range paths {
		var (
			r   io.Reader
			c   io.Closer // nil when reading stdin
			err error
		)

		if path == "-" {
			fmt.Fprint(out, "Processing: (stdin)\n\n")
			r = os.Stdin // read from pipe/tty
		} else {
			fmt.Fprint(out, "Processing: ", ColourFile, path, ColourReset, "\n\n")

			var f *os.File
			f, err = os.Open(path)
			if err != nil {
				fmt.Fprintln(errOut, ColourError+"Cannot open file:"+err.Error()+ColourReset)
				hadError = true
				continue
			}

			r, c = f, f // will close after streaming
		}

		if err = streamLogFunc(d, r, out, errOut, obfuscator); err != nil {
			fmt.Fprintln(errOut, ColourError+"Error reading file:"+err.Error()+ColourReset)
			hadError = true
		}

		if c != nil {
			c.Close()
		}
	}

	if hadError {
		return 1
	}

	return 0
}

func streamLog(d *Decoder, in io.Reader, out io.Writer, errOut io.Writer, obfuscator *fix.Obfuscator) error {
	scanner := bufio.NewScanner(in)
	termWidth := getTerminalWidth()
	separator := ColourTitle + strings.Repeat("=", termWidth) + ColourReset + "\n"

	for scanner.Scan() {
		line := obfuscator.Enabled(scanner.Text(), errOut)
		handleLogLine(d, line, out, separator)
	}

	return scanner.Err()
}

func handleLogLine(d *Decoder, line string, out io.Writer, separator string) {
	matches := findFixMessageIndices(line)

	if len(matches) == 0 {
		fmt.Fprint(out, ColourLine, line, ColourReset, "\n")
		return
	}

	fixMessages, colouredLine := extractFixMessagesAndFormat(line, matches)
	fmt.Fprint(out, colouredLine)
	fmt.Fprint(out, separator)

	for _, msg := range fixMessages {
		processFixMessage(d, msg, out, separator)
	}
}

func processFixMessage(d *Decoder, msg string, out io.Writer, separator string) {
	fmt.Fprint(out, d.Prettify(msg))

	if enableValidation {
		if errors := d.Decode(msg).ValidationErrors; len(errors) > 0 {
			fmt.Fprint(out, separator)

			for _, err := range errors {
				fmt.Fprintf(out, "%s== %s%s\n", ColourError, err, ColourReset)
			}
		}
	}

	fmt.Fprint(out, separator)
}

func getTerminalWidth() int {
	if w, _, err := getTermSize(int(os.Stdout.Fd())); err == nil {
		return w
	}
	return 80
}

func findFixMessageIndices(line string) [][]int {
	re := regexp.MustCompile(`8=FIX.*?10=\d{3}\x01`)
	return re.FindAllStringIndex(line, -1)
}

func extractFixMessagesAndFormat(line string, matches [][]int) ([]string, string) {
	var (
		output      strings.Builder
		lastIndex   int
		fixMessages []string
	)

	for _, match := range matches {
		start, end := match[0], match[1]
		before := line[lastIndex:start]
		fixPart := line[start:end]

		output.WriteString(ColourLine + before + ColourMsg + fixPart)
		fixMessages = append(fixMessages, fixPart)
		lastIndex = end
	}

	// Append remaining part of the line after last FIX message
	output.WriteString(ColourLine + line[lastIndex:] + ColourReset + "\n")

	return fixMessages, output.String()
}

func SetValidation(enabled bool) {
	enableValidation = enabled
}
