package centers

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pskc-research/sunassign/internal/fetcher"
	"github.com/pskc-research/sunassign/internal/model"
)

// Centers-file column names, shared between writer and loader.
const (
	colCode      = "SIGUNGU_CD"
	colResidArea = "resid_area"
	colCentroidX = "centroid_x_utmK"
	colCentroidY = "centroid_y_utmK"
	colRepX      = "rep_x_utmK"
	colRepY      = "rep_y_utmK"
)

var centersHeader = []string{
	"BASE_YEAR", colCode, "SIGUNGU_NM",
	colCentroidX, colCentroidY, colRepX, colRepY,
	"centroid_lon_wgs84", "centroid_lat_wgs84", "rep_lon_wgs84", "rep_lat_wgs84",
	colResidArea,
}

// WriteCSV writes the centers table, UTF-8 with BOM so spreadsheet tools
// render the Korean keys correctly.
func WriteCSV(cs []Center, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "centers: create %s", path)
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return eris.Wrap(err, "centers: write BOM")
	}

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(centersHeader); err != nil {
		return eris.Wrap(err, "centers: write header")
	}
	for _, c := range cs {
		row := []string{
			c.BaseYear, c.Code, c.Name,
			ftoa(c.CentroidX), ftoa(c.CentroidY), ftoa(c.RepX), ftoa(c.RepY),
			ftoa(c.CentroidLon), ftoa(c.CentroidLat), ftoa(c.RepLon), ftoa(c.RepLat),
			c.ResidArea,
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "centers: write row")
		}
	}
	return w.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LoadRegions reads a centers CSV into the read-only region table used by the
// assignment pipeline. Rows with unparseable coordinates are dropped.
func LoadRegions(path string) ([]model.Region, error) {
	tbl, err := fetcher.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := tbl.Require("centers file", colCode, colResidArea,
		colCentroidX, colCentroidY, colRepX, colRepY); err != nil {
		return nil, err
	}

	regions := make([]model.Region, 0, len(tbl.Rows))
	var dropped int

	for _, row := range tbl.Rows {
		cx, err1 := strconv.ParseFloat(tbl.Field(row, colCentroidX), 64)
		cy, err2 := strconv.ParseFloat(tbl.Field(row, colCentroidY), 64)
		rx, err3 := strconv.ParseFloat(tbl.Field(row, colRepX), 64)
		ry, err4 := strconv.ParseFloat(tbl.Field(row, colRepY), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			dropped++
			continue
		}

		code := zfill(tbl.Field(row, colCode), 5)
		area := stripSpace(tbl.Field(row, colResidArea))
		if code == "" || area == "" {
			dropped++
			continue
		}

		regions = append(regions, model.Region{
			Code:      code,
			ResidArea: area,
			CentroidX: cx,
			CentroidY: cy,
			RepX:      rx,
			RepY:      ry,
		})
	}

	if dropped > 0 {
		zap.L().Debug("centers: dropped malformed center rows", zap.Int("dropped", dropped))
	}
	if len(regions) == 0 {
		return nil, eris.Errorf("centers: no usable regions in %s", path)
	}

	return regions, nil
}
