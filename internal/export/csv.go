// Package export writes report rows to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go-pos-inventory/internal/model"
)

// LowStockHeader lists the columns in field order: barcode, name, stock_qty, sale_price.
var LowStockHeader = []string{"CÓDIGO", "NOMBRE", "STOCK", "PRECIO VENTA"}

// WriteLowStock writes the header and one record per row.
func WriteLowStock(w io.Writer, rows []model.LowStockRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LowStockHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Barcode,
			r.Name,
			strconv.Itoa(r.StockQty),
			strconv.FormatFloat(r.SalePrice, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileExporter writes each export to a new timestamped file under Dir.
type FileExporter struct {
	Dir string
	now func() time.Time
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{Dir: dir, now: time.Now}
}

// Export writes rows and returns the file name relative to Dir.
func (e *FileExporter) Export(rows []model.LowStockRow) (string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}
	name := fmt.Sprintf("bajo-stock-%d.csv", e.now().UnixMilli())

	f, err := os.Create(filepath.Join(e.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := WriteLowStock(f, rows); err != nil {
		f.Close()
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return name, nil
}
