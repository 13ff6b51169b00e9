package supplier

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsawler/tabula/xlsx"
	"go.uber.org/zap"
)

// columnAliases maps each normalized field to the header spellings accepted
// for it. Header comparison is case-insensitive.
var columnAliases = map[string][]string{
	"description":   {"description", "item_description", "product_name", "name"},
	"part_number":   {"part_number", "part_no", "item_code", "sku"},
	"quantity":      {"quantity", "qty", "amount"},
	"unit_price":    {"unit_price", "price", "cost"},
	"supplier_name": {"supplier", "vendor", "manufacturer"},
	"category":      {"category", "type", "class"},
}

// Load reads a supplier BOM file, dispatching on extension. Files that
// cannot be read or parsed degrade to the demo table rather than failing
// the run.
func Load(path string, logger *zap.Logger) *Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	result, err := load(path)
	if err != nil {
		logger.Warn("supplier BOM load failed, using demo table",
			zap.String("path", path),
			zap.Error(err),
		)
		return DemoResult()
	}

	logger.Info("supplier BOM loaded",
		zap.String("path", path),
		zap.Int("items", result.TotalItems),
	)
	return result
}

func load(path string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx", ".xls":
		return loadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", path)
	}
}

func loadCSV(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file: %s", path)
	}
	return buildResult(records[0], records[1:]), nil
}

func loadXLSX(path string) (*Result, error) {
	reader, err := xlsx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer reader.Close()

	for _, table := range reader.Tables() {
		if len(table.Headers) == 0 {
			continue
		}
		return buildResult(table.Headers, table.Rows), nil
	}
	return nil, fmt.Errorf("no usable sheet in workbook: %s", path)
}

// buildResult maps header aliases to field indices and converts rows.
// Rows without a description are discarded.
func buildResult(headers []string, rows [][]string) *Result {
	indices := mapColumns(headers)

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := Item{
			Description:  cellAt(row, indices["description"]),
			PartNumber:   cellAt(row, indices["part_number"]),
			Quantity:     safeFloat(cellAt(row, indices["quantity"])),
			UnitPrice:    safeFloat(cellAt(row, indices["unit_price"])),
			SupplierName: cellAt(row, indices["supplier_name"]),
			Category:     cellAt(row, indices["category"]),
		}
		if strings.TrimSpace(item.Description) == "" {
			continue
		}
		items = append(items, item)
	}

	return &Result{Items: items, TotalItems: len(items), Columns: headers}
}

// mapColumns resolves each field to its header index, or -1 when no alias
// is present. The first matching header wins.
func mapColumns(headers []string) map[string]int {
	indices := make(map[string]int, len(columnAliases))
	for field := range columnAliases {
		indices[field] = -1
	}
	for field, aliases := range columnAliases {
		for i, header := range headers {
			h := strings.ToLower(strings.TrimSpace(header))
			for _, alias := range aliases {
				if h == alias {
					indices[field] = i
					break
				}
			}
			if indices[field] >= 0 {
				break
			}
		}
	}
	return indices
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// safeFloat converts a cell to a float, tolerating thousands separators.
// Unparseable cells become zero.
func safeFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
