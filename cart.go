// Package cart holds the product catalog and the per-session shopping cart
// that the excel package renders into a spreadsheet.
package cart // import "kastelo.dev/cart"

import (
	"errors"
	"fmt"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type Product struct {
	Serial    string
	Category  string
	Type      string
	UnitPrice Decimal
}

// LineItem is one cart entry. The product type, price and image are captured
// when the item is created and never looked up again.
type LineItem struct {
	Serial      string
	ProductType string
	Quantity    int
	UnitPrice   Decimal
	LineTotal   Decimal
	ImagePath   string
}

func NewLineItem(p Product, quantity int, imagePath string) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	return LineItem{
		Serial:      p.Serial,
		ProductType: p.Type,
		Quantity:    quantity,
		UnitPrice:   p.UnitPrice,
		LineTotal:   p.UnitPrice.Mul(quantity),
		ImagePath:   imagePath,
	}, nil
}

// LookupMissError is returned when a serial is not present in the catalog.
type LookupMissError struct {
	Serial string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("serial %q not found in catalog", e.Serial)
}

// Session owns the cart of one interactive session. The cart is append
// only and lives as long as the session does. A Session is not safe for
// concurrent use.
type Session struct {
	catalog  *Catalog
	imageDir string
	items    []LineItem
}

func NewSession(catalog *Catalog, imageDir string) *Session {
	return &Session{
		catalog:  catalog,
		imageDir: imageDir,
	}
}

func (s *Session) Catalog() *Catalog {
	return s.catalog
}

// Add looks up serial, resolves its image and appends a new line item.
func (s *Session) Add(serial string, quantity int) (LineItem, error) {
	p, err := s.catalog.Lookup(serial)
	if err != nil {
		return LineItem{}, err
	}
	item, err := NewLineItem(p, quantity, ResolveImage(s.imageDir, p.Serial))
	if err != nil {
		return LineItem{}, err
	}
	s.items = append(s.items, item)
	return item, nil
}

// ImagePath returns the resolved image for serial, or "" when there is none.
func (s *Session) ImagePath(serial string) string {
	return ResolveImage(s.imageDir, serial)
}

func (s *Session) Append(item LineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	s.items = append(s.items, item)
	return nil
}

// Items returns a copy of the cart in insertion order.
func (s *Session) Items() []LineItem {
	res := make([]LineItem, len(s.items))
	copy(res, s.items)
	return res
}

func (s *Session) Len() int {
	return len(s.items)
}

// Total is the unrounded sum of all line totals.
func (s *Session) Total() Decimal {
	return Total(s.items)
}

func Total(items []LineItem) Decimal {
	var sum Decimal
	for _, item := range items {
		sum += item.LineTotal
	}
	return sum
}
