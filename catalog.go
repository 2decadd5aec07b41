package cart

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
	"github.com/xuri/excelize/v2"
)

// Column headers of the product list.
const (
	ColSerial    = "Serial No."
	ColCategory  = "Main Category"
	ColType      = "Type"
	ColUnitPrice = "Unit Price"
)

// Catalog is a read only product table keyed by serial number.
type Catalog struct {
	products []Product
	index    map[string]int
}

func NewCatalog(products []Product) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	for _, p := range products {
		c.add(p)
	}
	return c
}

func (c *Catalog) add(p Product) {
	if _, ok := c.index[p.Serial]; ok {
		// first row wins
		return
	}
	c.index[p.Serial] = len(c.products)
	c.products = append(c.products, p)
}

func (c *Catalog) Lookup(serial string) (Product, error) {
	if c != nil {
		if idx, ok := c.index[serial]; ok {
			return c.products[idx], nil
		}
	}
	return Product{}, &LookupMissError{Serial: serial}
}

// Serials returns all serial numbers in catalog order.
func (c *Catalog) Serials() []string {
	if c == nil {
		return nil
	}
	res := make([]string, len(c.products))
	for i, p := range c.products {
		res[i] = p.Serial
	}
	return res
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

func LoadXLSXFile(path string) (*Catalog, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return LoadXLSX(fd)
}

// LoadXLSX reads the product list from the first sheet of a workbook. The
// first row holds the column headers.
func LoadXLSX(r io.Reader) (*Catalog, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer xlsx.Close()

	sheets := xlsx.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("catalog has no sheets")
	}
	rows, err := xlsx.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog sheet %q is empty", sheets[0])
	}

	cols := make(map[string]int)
	for i, hdr := range rows[0] {
		cols[strings.TrimSpace(hdr)] = i
	}
	for _, name := range []string{ColSerial, ColCategory, ColType, ColUnitPrice} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("catalog is missing column %q", name)
		}
	}

	get := func(row []string, name string) string {
		if idx := cols[name]; idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	cat := NewCatalog(nil)
	for i, row := range rows[1:] {
		serial := get(row, ColSerial)
		if serial == "" {
			continue
		}
		price, err := ParseDecimal(get(row, ColUnitPrice))
		if err != nil {
			return nil, fmt.Errorf("row %d: unit price: %w", i+2, err)
		}
		cat.add(Product{
			Serial:    serial,
			Category:  get(row, ColCategory),
			Type:      get(row, ColType),
			UnitPrice: price,
		})
	}
	return cat, nil
}

// LoadSQL reads the product list from a table with the columns serial_no,
// main_category, type and unit_price.
func LoadSQL(ctx context.Context, db *sql.DB, table string) (*Catalog, error) {
	query := fmt.Sprintf("SELECT serial_no, main_category, type, unit_price FROM %s ORDER BY serial_no", pq.QuoteIdentifier(table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	cat := NewCatalog(nil)
	for rows.Next() {
		var serial, price string
		var category, typ sql.NullString
		if err := rows.Scan(&serial, &category, &typ, &price); err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		amount, err := ParseDecimal(price)
		if err != nil {
			return nil, fmt.Errorf("serial %q: unit price: %w", serial, err)
		}
		cat.add(Product{
			Serial:    strings.TrimSpace(serial),
			Category:  category.String,
			Type:      typ.String,
			UnitPrice: amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return cat, nil
}

// ResolveImage returns dir/images/<serial>.png if that file exists, and ""
// otherwise.
func ResolveImage(dir, serial string) string {
	if serial == "" || strings.ContainsAny(serial, `/\`) {
		return ""
	}
	path := filepath.Join(dir, "images", serial+".png")
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}
