// Package centers builds the region reference-point table from the SGIS
// si/gun/gu boundary shapefile and loads it back for the assignment pipeline.
//
// Each region gets two planar reference points in UTM-K meters: the geometric
// centroid, which can fall outside a concave shape, and a guaranteed-interior
// representative point.
package centers

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/pskc-research/sunassign/internal/proj"
)

// Center is one region with both reference points, in UTM-K meters and in
// WGS84 degrees for map sanity checks.
type Center struct {
	BaseYear  string
	Code      string // SIGUNGU_CD, zero-padded to 5
	Name      string // SIGUNGU_NM
	ResidArea string

	CentroidX, CentroidY float64
	RepX, RepY           float64

	CentroidLon, CentroidLat float64
	RepLon, RepLat           float64
}

// BuildFromShapefile reads the boundary shapefile (UTM-K coordinates, DBF in
// CP949) and computes both reference points per region. The resid_area keys of
// the result are verified unique; duplicates are fatal since the key joins
// regions to the survey dataset.
func BuildFromShapefile(shpPath string) ([]Center, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "centers: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	yearIdx := fieldIndex(reader, "BASE_YEAR")
	codeIdx := fieldIndex(reader, "SIGUNGU_CD")
	nameIdx := fieldIndex(reader, "SIGUNGU_NM")
	if codeIdx < 0 || nameIdx < 0 {
		return nil, eris.New("centers: required shapefile fields (SIGUNGU_CD, SIGUNGU_NM) not found")
	}

	var out []Center
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly.NumParts == 0 || len(poly.Points) == 0 {
			skipped++
			continue
		}

		code := zfill(attr(reader, codeIdx), 5)
		name := stripSpace(attr(reader, nameIdx))
		if code == "" || name == "" {
			skipped++
			continue
		}

		cx, cy, err := centroid(poly)
		if err != nil {
			skipped++
			continue
		}
		rx, ry := representativePoint(poly, cx, cy)

		c := Center{
			Code:      code,
			Name:      name,
			CentroidX: cx,
			CentroidY: cy,
			RepX:      rx,
			RepY:      ry,
		}
		if yearIdx >= 0 {
			c.BaseYear = attr(reader, yearIdx)
		}
		c.CentroidLon, c.CentroidLat = proj.FromUTMK(cx, cy)
		c.RepLon, c.RepLat = proj.FromUTMK(rx, ry)

		out = append(out, c)
	}

	if skipped > 0 {
		zap.L().Warn("centers: skipped shapefile records", zap.Int("skipped", skipped))
	}

	if err := buildResidKeys(out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// attr reads a DBF attribute, trimming NUL padding and normalizing to UTF-8.
func attr(reader *shp.Reader, idx int) string {
	return decodeAttr(reader.Attribute(idx))
}

// decodeAttr converts a raw attribute value to UTF-8. Values that already are
// valid UTF-8 pass through untouched; anything else is decoded as EUC-KR,
// which also covers the CP949 DBFs SGIS ships.
func decodeAttr(raw string) string {
	raw = strings.TrimRight(raw, "\x00")
	if raw == "" {
		return ""
	}
	if utf8.ValidString(raw) {
		return strings.TrimSpace(raw)
	}
	decoded, err := io.ReadAll(transform.NewReader(
		bytes.NewReader([]byte(raw)), korean.EUCKR.NewDecoder()))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(string(decoded))
}

// fieldIndex returns the index of a named DBF field, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// centroid computes the area-weighted centroid of a multi-part polygon.
func centroid(p *shp.Polygon) (x, y float64, err error) {
	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return 0, 0, eris.New("centers: no valid polygon parts")
	}

	c, err := xy.Centroid(mp)
	if err != nil {
		return 0, 0, eris.Wrap(err, "centers: centroid")
	}
	return c[0], c[1], nil
}
