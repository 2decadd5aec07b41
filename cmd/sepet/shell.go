package main

import (
	"bufio"
	"errors"
	"io"
	"strconv"

	"kastelo.dev/cart"
	"kastelo.dev/cart/excel"
)

const shellHelp = `Commands:
  products              list serial numbers
  show <serial>         show a product
  add <serial> [qty]    add to the cart
  cart                  show the cart
  export [file]         export the cart
  quit
`

// shell runs a line oriented session on r until EOF or quit. Command errors
// are printed and do not end the session.
func shell(r io.Reader, out *printer, sess *cart.Session, exp *excel.Exporter) error {
	sc := bufio.NewScanner(r)
	for {
		out.printf("> ")
		if !sc.Scan() {
			out.printf("\n")
			return sc.Err()
		}

		words := splitWords(sc.Text())
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "quit", "exit":
			return nil

		case "help":
			out.printf("%s", shellHelp)

		case "products":
			for _, serial := range sess.Catalog().Serials() {
				out.printf("%s\n", serial)
			}

		case "show":
			if len(words) != 2 {
				out.printf("usage: show <serial>\n")
				continue
			}
			if err := out.product(sess, words[1]); err != nil {
				out.printf("error: %v\n", err)
			}

		case "add":
			if len(words) < 2 || len(words) > 3 {
				out.printf("usage: add <serial> [qty]\n")
				continue
			}
			qty := 1
			if len(words) == 3 {
				n, err := strconv.Atoi(words[2])
				if err != nil {
					out.printf("error: invalid quantity %q\n", words[2])
					continue
				}
				qty = n
			}
			item, err := sess.Add(words[1], qty)
			var miss *cart.LookupMissError
			switch {
			case errors.As(err, &miss):
				out.printf("error: serial %s not found\n", miss.Serial)
			case err != nil:
				out.printf("error: %v\n", err)
			default:
				out.printf("added %d x %s\n", item.Quantity, item.Serial)
			}

		case "cart":
			out.cart(sess.Items())

		case "export":
			name := ""
			if len(words) > 1 {
				name = words[1]
			}
			res, err := exp.Export(sess.Items(), name)
			if err != nil {
				out.printf("error: %v\n", err)
				continue
			}
			for _, ierr := range res.ImageErrors {
				out.printf("warning: %v\n", ierr)
			}
			out.printf("wrote %s\n", res.Path)

		default:
			out.printf("unknown command %q, try help\n", words[0])
		}
	}
}
