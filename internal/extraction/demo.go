package extraction

// demoItems returns the fixed illustrative item set substituted when a run
// yields nothing, so downstream consumers always receive a non-empty
// result. Callers surface demo mode via Result.DemoMode.
func demoItems() []Item {
	records := []map[string]any{
		{
			"name":     "M6x20mm Hex Bolt",
			"category": "fasteners",
			"specifications": map[string]any{
				"size": "M6x20mm", "type": "hex bolt", "material": "stainless steel",
			},
			"context":               "Use M6x20 hex bolts for chassis mounting",
			"confidence_score":      0.95,
			"qc_process_step":       "Assembly Step 2",
			"consumable_jigs_tools": true,
			"part_number":           "BOLT-M6-20-SS",
			"quantity":              4.0,
			"unit_of_measure":       "pieces",
			"ai_engine_processing":  "Demo mode",
		},
		{
			"name":     "Industrial Adhesive Tape 25mm",
			"category": "adhesives",
			"specifications": map[string]any{
				"width": "25mm", "type": "double-sided", "length": "50mm",
			},
			"context":               "Use adhesive tape to secure cable harnesses",
			"confidence_score":      0.88,
			"qc_process_step":       "Wiring Step 3",
			"consumable_jigs_tools": true,
			"part_number":           "TAPE-ADH-25",
			"quantity":              2.0,
			"unit_of_measure":       "rolls",
			"ai_engine_processing":  "Demo mode",
		},
		{
			"name":     "Silicone Sealing Compound",
			"category": "seals",
			"specifications": map[string]any{
				"type": "silicone", "application": "joint sealing",
			},
			"context":               "Apply sealing compound to joint areas",
			"confidence_score":      0.85,
			"qc_process_step":       "Sealing Step 4",
			"consumable_jigs_tools": true,
			"part_number":           "SEAL-SIL-01",
			"quantity":              1.0,
			"unit_of_measure":       "tube",
			"ai_engine_processing":  "Demo mode",
		},
	}

	items := make([]Item, 0, len(records))
	for _, record := range records {
		context, _ := record["context"].(string)
		items = append(items, NormalizeRecord(record, context))
	}
	return items
}
