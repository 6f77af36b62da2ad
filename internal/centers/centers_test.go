package centers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

func TestBuildResidKeys_PlainSigungu(t *testing.T) {
	cs := []Center{{Code: "11740", Name: "강동구"}}
	require.NoError(t, buildResidKeys(cs))
	assert.Equal(t, "서울특별시/강동구", cs[0].ResidArea)
}

func TestBuildResidKeys_CityGuSplit(t *testing.T) {
	cs := []Center{{Code: "37011", Name: "포항시남구"}}
	require.NoError(t, buildResidKeys(cs))
	assert.Equal(t, "경상북도/포항시/남구", cs[0].ResidArea)
}

func TestBuildResidKeys_RenameCrosswalk(t *testing.T) {
	cs := []Center{
		{Code: "34070", Name: "당진군"},
		{Code: "31370", Name: "여주군"},
	}
	require.NoError(t, buildResidKeys(cs))
	assert.Equal(t, "충청남도/당진시", cs[0].ResidArea)
	assert.Equal(t, "경기도/여주시", cs[1].ResidArea)
}

func TestBuildResidKeys_PreservesInputOrder(t *testing.T) {
	// Codes deliberately out of order; key building must not reorder.
	cs := []Center{
		{Code: "37011", Name: "포항시남구"},
		{Code: "11740", Name: "강동구"},
		{Code: "34070", Name: "당진군"},
	}
	require.NoError(t, buildResidKeys(cs))
	assert.Equal(t, "37011", cs[0].Code)
	assert.Equal(t, "경상북도/포항시/남구", cs[0].ResidArea)
	assert.Equal(t, "11740", cs[1].Code)
	assert.Equal(t, "서울특별시/강동구", cs[1].ResidArea)
	assert.Equal(t, "34070", cs[2].Code)
	assert.Equal(t, "충청남도/당진시", cs[2].ResidArea)
}

func TestBuildResidKeys_DuplicateKeyFatal(t *testing.T) {
	// 중구 exists in many cities; with the same sido it must collide.
	cs := []Center{
		{Code: "11140", Name: "중구"},
		{Code: "11141", Name: "중구"},
	}
	err := buildResidKeys(cs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not unique")
}

func TestBuildResidKeys_UnmappedPrefixFatal(t *testing.T) {
	cs := []Center{{Code: "99999", Name: "어딘가"}}
	err := buildResidKeys(cs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmapped sido prefix")
}

func TestDecodeAttr_UTF8Passthrough(t *testing.T) {
	assert.Equal(t, "강동구", decodeAttr("강동구\x00\x00"))
	assert.Equal(t, "gangdong", decodeAttr("gangdong"))
	assert.Equal(t, "", decodeAttr("\x00\x00"))
}

func TestDecodeAttr_EUCKRFallback(t *testing.T) {
	encoded, _, err := transform.String(korean.EUCKR.NewEncoder(), "포항시남구")
	require.NoError(t, err)

	assert.Equal(t, "포항시남구", decodeAttr(encoded+"\x00"))
}

func TestZfill(t *testing.T) {
	assert.Equal(t, "01234", zfill("1234", 5))
	assert.Equal(t, "11110", zfill("11110", 5))
	assert.Equal(t, "", zfill("  ", 5))
}

// uShape is a concave polygon whose centroid falls inside the notch, i.e.
// outside the shape.
func uShape() *shp.Polygon {
	pts := []shp.Point{
		{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 30, Y: 30}, {X: 20, Y: 30},
		{X: 20, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 30}, {X: 0, Y: 30},
		{X: 0, Y: 0},
	}
	return &shp.Polygon{
		Box:       shp.Box{MinX: 0, MinY: 0, MaxX: 30, MaxY: 30},
		NumParts:  1,
		NumPoints: int32(len(pts)),
		Parts:     []int32{0},
		Points:    pts,
	}
}

func pointInside(p *shp.Polygon, x, y float64) bool {
	xs := crossings(p, y)
	inside := false
	for _, cx := range xs {
		if cx < x {
			inside = !inside
		}
	}
	return inside
}

func TestRepresentativePoint_InsideConcaveShape(t *testing.T) {
	p := uShape()

	cx, cy, err := centroid(p)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, cx, 0.01)
	assert.False(t, pointInside(p, cx, cy), "centroid of the U should fall in the notch")

	rx, ry := representativePoint(p, cx, cy)
	assert.True(t, pointInside(p, rx, ry), "representative point (%v, %v) must be inside", rx, ry)
}

func TestRepresentativePoint_ConvexShape(t *testing.T) {
	pts := []shp.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0},
	}
	p := &shp.Polygon{
		Box:       shp.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
		NumParts:  1,
		NumPoints: int32(len(pts)),
		Parts:     []int32{0},
		Points:    pts,
	}
	rx, ry := representativePoint(p, 5, 5)
	assert.InDelta(t, 5.0, rx, 0.01)
	assert.InDelta(t, 5.0, ry, 0.01)
}

// tangentNotch is a rectangle with a triangular notch cut from the top edge
// whose apex touches the envelope midline exactly, so the first scanline
// grazes a vertex without entering the notch.
func tangentNotch() *shp.Polygon {
	pts := []shp.Point{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 5, Y: 10},
		{X: 4, Y: 5}, {X: 3, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0},
	}
	return &shp.Polygon{
		Box:       shp.Box{MinX: 0, MinY: 0, MaxX: 20, MaxY: 10},
		NumParts:  1,
		NumPoints: int32(len(pts)),
		Parts:     []int32{0},
		Points:    pts,
	}
}

func TestCrossings_TangentVertexKeepsEvenParity(t *testing.T) {
	// Both notch edges report a crossing at the apex x; the pair must drop
	// together so the count stays even.
	xs := crossings(tangentNotch(), 5)
	require.Len(t, xs, 2)
	assert.InDelta(t, 0.0, xs[0], 1e-9)
	assert.InDelta(t, 20.0, xs[1], 1e-9)
}

func TestRepresentativePoint_TangentNotch(t *testing.T) {
	p := tangentNotch()
	rx, ry := representativePoint(p, 10, 5)
	assert.True(t, pointInside(p, rx, ry), "representative point (%v, %v) must be inside", rx, ry)
}

func TestWriteCSVAndLoadRegions_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "centers.csv")

	cs := []Center{
		{
			BaseYear: "2010", Code: "11740", Name: "강동구", ResidArea: "서울특별시/강동구",
			CentroidX: 969837.5, CentroidY: 1947782.25, RepX: 969900, RepY: 1947800,
		},
		{
			BaseYear: "2010", Code: "37011", Name: "포항시남구", ResidArea: "경상북도/포항시/남구",
			CentroidX: 1170000, CentroidY: 1770000, RepX: 1170100, RepY: 1770100,
		},
	}
	require.NoError(t, WriteCSV(cs, path))

	// File starts with a UTF-8 BOM.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])

	regions, err := LoadRegions(path)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "11740", regions[0].Code)
	assert.Equal(t, "서울특별시/강동구", regions[0].ResidArea)
	assert.Equal(t, 969837.5, regions[0].CentroidX)
	assert.Equal(t, 1770100.0, regions[1].RepY)
	assert.Equal(t, "경상북도/포항시/남구", regions[1].ResidArea)
}

func TestLoadRegions_MissingColumnsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("SIGUNGU_CD,resid_area\n11740,서울특별시/강동구\n"), 0o644))

	_, err := LoadRegions(path)
	require.Error(t, err)
	// All missing columns are reported at once.
	assert.Contains(t, err.Error(), "centroid_x_utmK")
	assert.Contains(t, err.Error(), "rep_y_utmK")
}
