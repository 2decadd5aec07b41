package cart

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testCatalog() *Catalog {
	return NewCatalog([]Product{
		{Serial: "A1", Category: "Living", Type: "Chair", UnitPrice: 100000},
		{Serial: "B2", Category: "Dining", Type: "Table", UnitPrice: 999999},
		{Serial: "C3", Category: "Living", Type: "Lamp", UnitPrice: 12345},
	})
}

func TestNewLineItem(t *testing.T) {
	cases := []struct {
		price Decimal
		qty   int
		total Decimal
	}{
		{100000, 2, 200000},
		{999999, 1, 999999},
		{12345, 3, 37035},
		{0, 5, 0},
	}

	for _, c := range cases {
		item, err := NewLineItem(Product{Serial: "X", Type: "T", UnitPrice: c.price}, c.qty, "")
		if err != nil {
			t.Fatal(err)
		}
		if item.LineTotal != c.total {
			t.Errorf("%v x %d = %v, expected %v", c.price, c.qty, item.LineTotal, c.total)
		}
	}

	if _, err := NewLineItem(Product{Serial: "X"}, 0, ""); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("unexpected error %v for zero quantity", err)
	}
}

func TestSessionAdd(t *testing.T) {
	s := NewSession(testCatalog(), t.TempDir())

	if _, err := s.Add("A1", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add("B2", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add("A1", 1); err != nil {
		t.Fatal(err)
	}

	items := s.Items()
	var serials []string
	for _, item := range items {
		serials = append(serials, item.Serial)
	}
	if !reflect.DeepEqual(serials, []string{"A1", "B2", "A1"}) {
		t.Errorf("unexpected order %v", serials)
	}
	if items[0].ProductType != "Chair" || items[0].LineTotal != 200000 {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if total := s.Total(); total != 1299999 {
		t.Errorf("unexpected total %v", total)
	}
}

func TestSessionAddMiss(t *testing.T) {
	s := NewSession(testCatalog(), t.TempDir())

	_, err := s.Add("Z9", 1)
	var miss *LookupMissError
	if !errors.As(err, &miss) {
		t.Fatalf("unexpected error %v", err)
	}
	if miss.Serial != "Z9" {
		t.Errorf("unexpected serial %q", miss.Serial)
	}
	if s.Len() != 0 {
		t.Error("cart changed on lookup miss")
	}

	if _, err := s.Add("A1", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("unexpected error %v", err)
	}
	if s.Len() != 0 {
		t.Error("cart changed on invalid quantity")
	}
}

func TestSessionItemsSnapshot(t *testing.T) {
	s := NewSession(testCatalog(), "")
	if _, err := s.Add("C3", 1); err != nil {
		t.Fatal(err)
	}

	items := s.Items()
	items[0].Quantity = 99
	if _, err := s.Add("A1", 1); err != nil {
		t.Fatal(err)
	}

	if len(items) != 1 {
		t.Error("snapshot grew")
	}
	if s.Items()[0].Quantity != 1 {
		t.Error("snapshot write leaked into cart")
	}
}

func TestSessionAppend(t *testing.T) {
	s := NewSession(nil, "")
	if err := s.Append(LineItem{Serial: "A1", Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("unexpected error %v", err)
	}
	if err := s.Append(LineItem{Serial: "A1", Quantity: 1, LineTotal: 5}); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || s.Total() != 5 {
		t.Errorf("unexpected cart %+v", s.Items())
	}
}

func TestSessionImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	img := filepath.Join(dir, "images", "A1.png")
	if err := os.WriteFile(img, []byte("not really a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSession(testCatalog(), dir)
	a1, err := s.Add("A1", 1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := s.Add("B2", 1)
	if err != nil {
		t.Fatal(err)
	}
	if a1.ImagePath != img {
		t.Errorf("unexpected image path %q", a1.ImagePath)
	}
	if b2.ImagePath != "" {
		t.Errorf("unexpected image path %q", b2.ImagePath)
	}

	// absence is permanent for an item
	if err := os.WriteFile(filepath.Join(dir, "images", "B2.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if s.Items()[1].ImagePath != "" {
		t.Error("image path changed after creation")
	}
}
