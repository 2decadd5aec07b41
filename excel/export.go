// Package excel renders a cart into a spreadsheet.
package excel

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"kastelo.dev/cart"
)

const (
	DefaultFileName = "sepet.xlsx"

	columnWidth    = 18
	imageRowHeight = 100
)

// ImageProcessingError is reported for a row whose image could not be read
// or resized. The row is exported without an image.
type ImageProcessingError struct {
	Row  int
	Path string
	Err  error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("row %d: image %s: %v", e.Row, e.Path, e.Err)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Err
}

// WriteError is returned when the output file cannot be written. No file is
// left at Path in that case.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Exporter writes carts to xlsx files. The zero value writes English
// labels and uses the system temp directory for thumbnails.
type Exporter struct {
	Language language.Tag
	TempDir  string
	Logger   *slog.Logger
}

type Result struct {
	Path        string
	ImageErrors []*ImageProcessingError
}

// Export writes items to the named file, DefaultFileName if empty. It
// returns once the file is completely written; on failure no file is left
// behind. Image problems do not fail the export but are listed in the
// result.
func (e *Exporter) Export(items []cart.LineItem, name string) (*Result, error) {
	if name == "" {
		name = DefaultFileName
	}

	xlsx, imgErrs := e.workbook(items)
	defer xlsx.Close()

	if err := writeFile(xlsx, name); err != nil {
		return nil, err
	}
	e.logger().Debug("Exported cart", "path", name, "items", len(items), "imageErrors", len(imgErrs))
	return &Result{Path: name, ImageErrors: imgErrs}, nil
}

func (e *Exporter) workbook(items []cart.LineItem) (*excelize.File, []*ImageProcessingError) {
	lbl := labelsFor(e.Language)
	xlsx := excelize.NewFile()

	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "kastelo.dev/cart",
		Company:     "Kastelo AB",
		DocSecurity: 2,
	})

	sheet := lbl.sheet
	_ = xlsx.SetSheetName(xlsx.GetSheetName(xlsx.GetActiveSheetIndex()), sheet)
	_ = xlsx.SetColWidth(sheet, "A", "F", columnWidth)

	for i, hdr := range lbl.headers {
		_ = xlsx.SetCellValue(sheet, cell('A'+rune(i), 1), hdr)
	}
	style, _ := xlsx.NewStyle(mergeStyles(fontBold(), centered()))
	_ = xlsx.SetCellStyle(sheet, cell('A', 1), cell('F', 1), style)

	var imgErrs []*ImageProcessingError
	body, _ := xlsx.NewStyle(centered())
	row := 2
	for _, item := range items {
		_ = xlsx.SetCellValue(sheet, cell('B', row), item.Serial)
		_ = xlsx.SetCellValue(sheet, cell('C', row), item.ProductType)
		_ = xlsx.SetCellInt(sheet, cell('D', row), item.Quantity)
		_ = xlsx.SetCellValue(sheet, cell('E', row), item.UnitPrice.Float64())
		_ = xlsx.SetCellValue(sheet, cell('F', row), item.LineTotal.Float64())
		_ = xlsx.SetCellStyle(sheet, cell('B', row), cell('F', row), body)

		if err := e.embedImage(xlsx, sheet, row, item.ImagePath); err != nil {
			ierr := &ImageProcessingError{Row: row, Path: item.ImagePath, Err: err}
			e.logger().Warn("Skipping image", "row", row, "serial", item.Serial, "path", item.ImagePath, "error", err)
			imgErrs = append(imgErrs, ierr)
		}
		row++
	}

	_ = xlsx.MergeCell(sheet, cell('A', row), cell('D', row))
	_ = xlsx.SetCellValue(sheet, cell('A', row), lbl.total)
	_ = xlsx.SetCellValue(sheet, cell('F', row), cart.Total(items).Float64())
	style, _ = xlsx.NewStyle(fontBold())
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('D', row), style)
	_ = xlsx.SetCellStyle(sheet, cell('F', row), cell('F', row), style)

	return xlsx, imgErrs
}

// embedImage puts a thumbnail of path into column A of row. A path that is
// empty or no longer exists leaves the cell blank.
func (e *Exporter) embedImage(xlsx *excelize.File, sheet string, row int, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	thumb, err := loadThumbnail(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(e.TempDir, fmt.Sprintf("thumb-%d-*.png", row))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, thumb); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// The anchor is fixed when the picture is added. excelize measures rows
	// at fewer pixels per point than Excel draws them, so anchor against the
	// tallest row and settle the height afterwards; the picture then ends
	// inside its own row.
	if err := xlsx.SetRowHeight(sheet, row, excelize.MaxRowHeight); err != nil {
		return err
	}

	// The display box is fixed, so non-square thumbnails are stretched.
	b := thumb.Bounds()
	err = xlsx.AddPicture(sheet, cell('A', row), tmp.Name(), &excelize.GraphicOptions{
		ScaleX:      displayScale(b.Dx()),
		ScaleY:      displayScale(b.Dy()),
		Positioning: "oneCell",
	})
	if err != nil {
		_ = xlsx.SetRowHeight(sheet, row, -1)
		return err
	}
	_ = xlsx.SetRowHeight(sheet, row, imageRowHeight)
	return nil
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// writeFile saves the workbook next to path under a temporary name and
// renames it into place.
func writeFile(xlsx *excelize.File, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := xlsx.WriteTo(tmp); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	renamed = true
	return nil
}
