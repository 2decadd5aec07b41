package main

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"kastelo.dev/cart"
)

type printer struct {
	p *message.Printer
	w io.Writer
}

func newPrinter(w io.Writer, tag language.Tag) *printer {
	return &printer{p: message.NewPrinter(tag), w: w}
}

func (p *printer) printf(format string, args ...interface{}) {
	p.p.Fprintf(p.w, format, args...)
}

func amount(d cart.Decimal, places int) number.Formatter {
	return number.Decimal(d.Round(places).Float64(), number.Scale(places))
}

func (p *printer) product(sess *cart.Session, serial string) error {
	prod, err := sess.Catalog().Lookup(serial)
	if err != nil {
		return err
	}
	p.printf("Category:   %s\n", prod.Category)
	p.printf("Type:       %s\n", prod.Type)
	p.printf("Unit price: %v $\n", amount(prod.UnitPrice, 4))
	if path := sess.ImagePath(prod.Serial); path != "" {
		p.printf("Image:      %s\n", path)
	} else {
		p.printf("Image:      (not found)\n")
	}
	return nil
}

func (p *printer) cart(items []cart.LineItem) {
	for _, item := range items {
		img := "-"
		if item.ImagePath != "" {
			img = "*"
		}
		p.printf("  %s %-12s %-20s x%-4d %12v $ %12v $\n", img, item.Serial, item.ProductType, item.Quantity,
			amount(item.UnitPrice, 4), amount(item.LineTotal, 4))
	}
	p.printf("Grand total: %v $\n", amount(cart.Total(items), 2))
}
