// Package supplier parses supplier bill-of-materials files (CSV or XLSX)
// into a normalized item table used for matching.
package supplier

// Item is one supplier BOM row.
type Item struct {
	Description  string  `json:"description"`
	PartNumber   string  `json:"part_number"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	SupplierName string  `json:"supplier_name"`
	Category     string  `json:"category"`
}

// Result is the outcome of loading one supplier BOM file.
type Result struct {
	Items      []Item   `json:"items"`
	TotalItems int      `json:"total_items"`
	Columns    []string `json:"columns"`
	DemoMode   bool     `json:"demo_mode"`
}

// demoItems is the fixed fallback table substituted when a BOM file cannot
// be read, so the matching stage always has supplier rows to work with.
func demoItems() []Item {
	return []Item{
		{
			Description:  "M6x20mm Stainless Steel Hex Bolt",
			PartNumber:   "BOLT-M6-20-SS",
			Quantity:     100,
			UnitPrice:    0.25,
			SupplierName: "FastenerCorp",
			Category:     "fasteners",
		},
		{
			Description:  "Industrial Adhesive Tape 25mm",
			PartNumber:   "TAPE-ADH-25",
			Quantity:     50,
			UnitPrice:    3.50,
			SupplierName: "AdhesivePlus",
			Category:     "adhesives",
		},
	}
}

// DemoResult returns the fallback table as a load result.
func DemoResult() *Result {
	items := demoItems()
	return &Result{Items: items, TotalItems: len(items), DemoMode: true}
}
