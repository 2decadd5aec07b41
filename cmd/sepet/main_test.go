package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"kastelo.dev/cart"
	"kastelo.dev/cart/excel"
)

func TestParseItem(t *testing.T) {
	cases := []struct {
		in     string
		ok     bool
		serial string
		qty    int
	}{
		{"A1", true, "A1", 1},
		{"A1:3", true, "A1", 3},
		{"X:Y:2", true, "X:Y", 2},
		{"A1:0", false, "", 0},
		{"A1:-1", false, "", 0},
		{"A1:many", false, "", 0},
	}

	for _, c := range cases {
		serial, qty, err := parseItem(c.in)
		if c.ok && err != nil {
			t.Error("unexpected failure:", c.in, err)
		} else if !c.ok && err == nil {
			t.Error("unexpected success:", c.in)
		} else if serial != c.serial || qty != c.qty {
			t.Errorf("parseItem(%q) = %q, %d", c.in, serial, qty)
		}
	}
}

func TestShell(t *testing.T) {
	cat := cart.NewCatalog([]cart.Product{
		{Serial: "A1", Category: "Living", Type: "Chair", UnitPrice: 100000},
		{Serial: "B2", Category: "Dining", Type: "Table", UnitPrice: 999999},
	})
	sess := cart.NewSession(cat, t.TempDir())
	exp := &excel.Exporter{TempDir: t.TempDir()}
	outFile := filepath.Join(t.TempDir(), "out.xlsx")

	input := strings.Join([]string{
		"show A1",
		"show Z9",
		"add A1 2",
		"add B2",
		"add Z9",
		"add A1 0",
		"cart",
		"export " + outFile,
		"bogus",
		"quit",
		"add A1 5",
	}, "\n")

	var buf bytes.Buffer
	if err := shell(strings.NewReader(input), newPrinter(&buf, language.English), sess, exp); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Type:       Chair",
		"Unit price: 10.0000 $",
		`serial "Z9" not found`,
		"added 2 x A1",
		"added 1 x B2",
		"error: serial Z9 not found",
		"error: quantity must be at least 1",
		"Grand total: 120.00 $",
		"wrote " + outFile,
		`unknown command "bogus"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}

	if sess.Len() != 2 {
		t.Errorf("unexpected cart length %d", sess.Len())
	}
	if _, err := os.Stat(outFile); err != nil {
		t.Error(err)
	}
}
