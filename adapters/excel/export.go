package excel

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"gocombo/domain/card"
	"gocombo/domain/feature"
	"gocombo/internal/errors"
)

const sheetName = "Features"

// ExportFeatureMatrix writes the card universe as a spreadsheet: one row per
// card, one column per vocabulary tag with the clause match count. Useful
// for eyeballing extraction quality outside the pipeline.
func ExportFeatureMatrix(path string, records []card.Record, features map[string]feature.Set) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := []interface{}{"Name", "Mana Cost", "Type", "Tag Count"}
	for _, tag := range feature.AllTags {
		header = append(header, string(tag))
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	sorted := make([]card.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for i, rec := range sorted {
		fs := features[rec.Name]
		row := []interface{}{rec.Name, rec.ManaCost, rec.TypeLine, fs.Count()}
		for _, tag := range feature.AllTags {
			row = append(row, fs.Tags[tag])
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}
