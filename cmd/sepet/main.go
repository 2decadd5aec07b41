package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kingpin"
	_ "github.com/lib/pq"
	"golang.org/x/text/language"
	"kastelo.dev/cart"
	"kastelo.dev/cart/excel"
	"kastelo.dev/cart/web"
)

func main() {
	app := kingpin.New("sepet", "Product lookup and cart export")
	catalogFile := app.Flag("catalog", "Product list workbook").Envar("SEPET_CATALOG").Default("products.xlsx").String()
	catalogDSN := app.Flag("catalog-dsn", "PostgreSQL DSN to read the product list from instead of a workbook").Envar("SEPET_CATALOG_DSN").String()
	catalogTable := app.Flag("catalog-table", "Product table name").Envar("SEPET_CATALOG_TABLE").Default("products").String()
	base := app.Flag("base", "Base directory holding images/<serial>.png").Envar("SEPET_BASE").Default(".").String()
	lang := app.Flag("lang", "Language for labels and numbers").Envar("SEPET_LANG").Default("en").String()
	verbose := app.Flag("verbose", "Debug logging").Short('v').Bool()

	cmdProducts := app.Command("products", "List serial numbers")
	cmdShow := app.Command("show", "Show a product")
	showSerial := cmdShow.Arg("serial", "Serial number").Required().String()
	cmdExport := app.Command("export", "Export items to a spreadsheet")
	exportOut := cmdExport.Flag("output", "Output file").Short('o').Default(excel.DefaultFileName).String()
	exportItems := cmdExport.Arg("items", "Items as serial or serial:quantity").Required().Strings()
	cmdShell := app.Command("shell", "Interactive session")
	cmdServe := app.Command("serve", "Serve the catalog and cart over HTTP")
	serveListen := cmdServe.Flag("listen", "Listen address").Envar("SEPET_LISTEN").Default(":8080").String()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	tag, err := language.Parse(*lang)
	if err != nil {
		slog.Error("Invalid language", "lang", *lang, "error", err)
		os.Exit(2)
	}

	cat, err := loadCatalog(*catalogFile, *catalogDSN, *catalogTable)
	if err != nil {
		slog.Error("Error loading catalog", "error", err)
		os.Exit(1)
	}
	slog.Debug("Loaded catalog", "products", cat.Len())

	exp := &excel.Exporter{Language: tag, Logger: slog.Default()}
	sess := cart.NewSession(cat, *base)
	out := newPrinter(os.Stdout, tag)

	switch cmd {
	case cmdProducts.FullCommand():
		for _, serial := range cat.Serials() {
			fmt.Println(serial)
		}

	case cmdShow.FullCommand():
		if err := out.product(sess, *showSerial); err != nil {
			slog.Error("Lookup failed", "error", err)
			os.Exit(1)
		}

	case cmdExport.FullCommand():
		for _, arg := range *exportItems {
			serial, qty, err := parseItem(arg)
			if err != nil {
				slog.Error("Invalid item", "item", arg, "error", err)
				os.Exit(2)
			}
			if _, err := sess.Add(serial, qty); err != nil {
				slog.Error("Error adding item", "item", arg, "error", err)
				os.Exit(1)
			}
		}
		res, err := exp.Export(sess.Items(), *exportOut)
		if err != nil {
			slog.Error("Error writing Excel file", "error", err)
			os.Exit(1)
		}
		out.cart(sess.Items())
		fmt.Println(res.Path)

	case cmdShell.FullCommand():
		if err := shell(os.Stdin, out, sess, exp); err != nil {
			slog.Error("Shell", "error", err)
			os.Exit(1)
		}

	case cmdServe.FullCommand():
		srv := &http.Server{
			Addr:              *serveListen,
			Handler:           web.NewServer(cat, *base, exp, slog.Default()).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		slog.Info("Listening", "addr", *serveListen)
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("Serving HTTP", "error", err)
			os.Exit(1)
		}
	}
}

func loadCatalog(file, dsn, table string) (*cart.Catalog, error) {
	if dsn == "" {
		return cart.LoadXLSXFile(file)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return cart.LoadSQL(ctx, db, table)
}

// parseItem splits "serial:quantity"; a bare serial means quantity 1.
func parseItem(s string) (string, int, error) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return s, 1, nil
	}
	qty, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("quantity: %w", err)
	}
	if qty < 1 {
		return "", 0, cart.ErrInvalidQuantity
	}
	return s[:idx], qty, nil
}
