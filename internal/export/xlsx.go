package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/pskc-research/sunassign/internal/model"
)

// WriteIntervalXLSX writes the assignment intervals as a workbook with one
// sheet per policy. This replaces the original Stata export as the secondary
// format handed to the survey team.
func WriteIntervalXLSX(intervals []model.Interval, path string) error {
	f := xlsx.NewFile()

	sheets := make(map[model.Policy]*xlsx.Sheet, len(model.Policies))
	for _, p := range model.Policies {
		sheet, err := f.AddSheet(string(p))
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", p)
		}
		header := sheet.AddRow()
		for _, h := range intervalHeader[:len(intervalHeader)-1] { // method is the sheet itself
			header.AddCell().SetString(h)
		}
		sheets[p] = sheet
	}

	for _, iv := range intervals {
		sheet, ok := sheets[iv.Policy]
		if !ok {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetString(iv.RegionCode)
		row.AddCell().SetString(iv.ResidArea)
		row.AddCell().SetInt(iv.StationID)
		row.AddCell().SetString(iv.Start.Format(dateLayout))
		row.AddCell().SetString(iv.End.Format(dateLayout))
		row.AddCell().SetFloat(iv.MeanDistM)
		row.AddCell().SetInt(iv.Days)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
