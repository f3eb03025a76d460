package decoder

import (
	"strings"
	"testing"

	"github.com/stephenlclarke/fixsession/dictionary"
)

func TestPrintStringColumnsFallsBackToDefaultWidth(t *testing.T) {
	old := getTerminalSize
	defer func() { getTerminalSize = old }()

	getTerminalSize = func(fd int) (int, int, error) {
		return 0, 0, errTestTerminalSize
	}

	out := captureStdout(t, func() {
		PrintStringColumns([]string{"alpha", "beta", "gamma"})
	})

	if !strings.Contains(out, "alpha") || !strings.Contains(out, "gamma") {
		t.Fatalf("expected all items printed, got %q", out)
	}
}

func TestFormatRequired(t *testing.T) {
	if formatRequired(true) != " - (Y)" {
		t.Fatalf("expected required marker for true")
	}

	if formatRequired(false) != "" {
		t.Fatalf("expected empty marker for false")
	}
}

func TestPrintEnumColumnsEmpty(t *testing.T) {
	out := captureStdout(t, func() {
		printEnumColumns(nil, 0)
	})

	if out != "" {
		t.Fatalf("expected no output for empty enum list, got %q", out)
	}
}

func TestPrintEnumColumnsSortsAndPrints(t *testing.T) {
	values := []dictionary.FieldEnum{
		{Value: "1", Description: "BUY"},
		{Value: "0", Description: "SELL"},
	}

	out := captureStdout(t, func() {
		printEnumColumns(values, 0)
	})

	if !strings.Contains(out, "0: SELL") || !strings.Contains(out, "1: BUY") {
		t.Fatalf("expected both enum entries, got %q", out)
	}
}
