// display.go
package decoder

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/stephenlclarke/fixsession/dictionary"
)

var getTerminalSize = term.GetSize

// PrintStringColumns prints a slice of strings in columns based on terminal width.
func PrintStringColumns(items []string) {
	width, _, err := getTerminalSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 80
	}

	maxLen := 0
	for _, s := range items {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}

	cols := width / (maxLen + 2)
	if cols == 0 {
		cols = 1
	}

	rows := (len(items) + cols - 1) / cols

	for r := range make([]int, rows) {
		for c := range make([]int, cols) {
			i := c*rows + r

			if i < len(items) {
				fmt.Printf("%-*s", maxLen+2, items[i])
			}
		}

		fmt.Println()
	}
}

func printIndent(level int) {
	fmt.Print(strings.Repeat(" ", level))
}

func printEnum(enum string, description string, indent int) {
	printIndent(indent + 4)
	fmt.Printf("%s : %s\n", enum, description)
}

func formatRequired(required bool) string {
	if required {
		return " - (Y)"
	}

	return ""
}

func printEnumColumns(values []dictionary.FieldEnum, indent int) {
	if len(values) == 0 {
		return
	}

	width, _, err := getTerminalSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 80
	}

	usableWidth := width - indent
	if usableWidth <= 0 {
		usableWidth = width
	}

	maxLen := 0
	for _, v := range values {
		l := len(v.Value) + 2 + len(v.Description)

		if l > maxLen {
			maxLen = l
		}
	}

	cols := usableWidth / (maxLen + 2)
	if cols == 0 {
		cols = 1
	}

	rows := (len(values) + cols - 1) / cols

	sort.Slice(values, func(i, j int) bool {
		return values[i].Value < values[j].Value
	})

	for r := 0; r < rows; r++ {
		printIndent(indent)

		for c := 0; c < cols; c++ {
			i := c*rows + r

			if i < len(values) {
				s := fmt.Sprintf("%s: %s", values[i].Value, values[i].Description)
				fmt.Printf("%-*s", maxLen+2, s)
			}
		}

		fmt.Println()
	}
}
