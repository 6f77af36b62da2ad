package centers

import (
	"math"
	"sort"

	"github.com/jonas-p/go-shp"
)

// representativePoint returns a point guaranteed to lie inside the polygon.
// It scans a horizontal line through the middle of the envelope, collects
// edge crossings across all rings (holes included, via even-odd pairing), and
// takes the midpoint of the widest inside interval. go-geom carries no
// representative-point routine, so this mirrors the usual interior-point
// construction. Falls back to the centroid if no scanline yields crossings.
func representativePoint(p *shp.Polygon, cx, cy float64) (x, y float64) {
	minY, maxY := p.Box.MinY, p.Box.MaxY
	scanY := (minY + maxY) / 2

	// A scanline through a vertex can yield an odd crossing count; nudge and
	// retry a few times before giving up.
	for attempt := 0; attempt < 5; attempt++ {
		xs := crossings(p, scanY)
		if len(xs) >= 2 && len(xs)%2 == 0 {
			sort.Float64s(xs)
			bestWidth := -1.0
			var bestMid float64
			for i := 0; i+1 < len(xs); i += 2 {
				if w := xs[i+1] - xs[i]; w > bestWidth {
					bestWidth = w
					bestMid = (xs[i] + xs[i+1]) / 2
				}
			}
			if bestWidth > 0 {
				return bestMid, scanY
			}
		}
		scanY += (maxY - minY) * 1e-6 * float64(attempt+1)
	}

	return cx, cy
}

// crossings returns the x coordinates where the scanline y crosses any ring
// edge. The half-open vertex rule (lower endpoint inclusive) counts each
// vertex crossing exactly once.
func crossings(p *shp.Polygon, y float64) []float64 {
	var xs []float64

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		n := end - start
		if n < 3 {
			continue
		}

		for j := start; j < end; j++ {
			a := p.Points[j]
			b := p.Points[start+(j-start+1)%n]
			if (a.Y <= y && b.Y > y) || (b.Y <= y && a.Y > y) {
				t := (y - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
	}

	// Coincident crossings come in pairs where the scanline grazes a vertex
	// without entering the polygon (both edges of a local extremum count).
	// Dropping the whole pair, not one member, keeps the even-odd parity of
	// the crossing count intact.
	sort.Float64s(xs)
	out := make([]float64, 0, len(xs))
	for i := 0; i < len(xs); {
		if i+1 < len(xs) && math.Abs(xs[i+1]-xs[i]) < 1e-9 {
			i += 2
			continue
		}
		out = append(out, xs[i])
		i++
	}
	return out
}
