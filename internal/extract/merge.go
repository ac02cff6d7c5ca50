package extract

import (
	"math"

	"github.com/golang/geo/r2"
)

// MergeDistance is the spatial tolerance, in PDF units, for treating two
// fragment endpoints as the same physical point.
const MergeDistance = 5.0

// Segment is one edge of a merged run, in PDF units.
type Segment struct {
	X1             float64 `json:"x1"`
	Y1             float64 `json:"y1"`
	X2             float64 `json:"x2"`
	Y2             float64 `json:"y2"`
	LengthPDFUnits float64 `json:"length_pdf_units"`
}

// Midpoint is the arithmetic mean of a run's vertices. It is not
// length-weighted; dense vertex clusters pull it toward themselves.
type Midpoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Run is a continuous physical line assembled from one or more stroked
// path fragments of the same colour.
type Run struct {
	Colour         string
	Points         []r2.Point
	LengthPDFUnits float64
	SegmentCount   int
	BBox           BBox
	Midpoint       Midpoint
	Segments       []Segment
}

// MergeConnectedPaths fuses same-colour paths whose endpoints lie within
// mergeDistance of each other into continuous runs. A single tray run is
// often drawn as several separate stroke operations; this stitches them
// back together.
//
// Per colour group the merge is a greedy fixpoint: seed a chain with the
// first unconsumed path, then repeatedly scan the remaining paths and
// splice in any whose head or tail touches the chain's current head or
// tail. The four endpoint pairings are checked in a fixed order
// (tail-head, tail-tail, head-head, head-tail) and the first one within
// tolerance wins; keep that order exactly, downstream consumers depend on
// the resulting topology.
func MergeConnectedPaths(paths []SegmentPath, mergeDistance float64) []Run {
	if len(paths) == 0 {
		return []Run{}
	}

	colourOrder := []string{}
	colourGroups := map[string][]SegmentPath{}

	for _, p := range paths {
		if _, seen := colourGroups[p.Colour]; !seen {
			colourOrder = append(colourOrder, p.Colour)
		}
		colourGroups[p.Colour] = append(colourGroups[p.Colour], p)
	}

	merged := []Run{}

	for _, colour := range colourOrder {
		remaining := colourGroups[colour]

		for len(remaining) > 0 {
			current := append([]r2.Point{}, remaining[0].Points...)
			remaining = remaining[1:]

			for changed := true; changed; {
				changed = false
				unspliced := remaining[:0:0]

				for _, candidate := range remaining {
					if spliced, ok := splice(current, candidate.Points, mergeDistance); ok {
						current = spliced
						changed = true
						continue
					}
					unspliced = append(unspliced, candidate)
				}

				remaining = unspliced
			}

			merged = append(merged, buildRun(colour, current))
		}
	}

	return merged
}

// splice attaches candidate to chain if any endpoint pairing is within
// tolerance, reversing the candidate when needed so the matched endpoints
// sit adjacent. The shared vertex is kept once.
func splice(chain, candidate []r2.Point, mergeDistance float64) ([]r2.Point, bool) {
	cStart := candidate[0]
	cEnd := candidate[len(candidate)-1]
	chainStart := chain[0]
	chainEnd := chain[len(chain)-1]

	switch {
	case distance(chainEnd, cStart) < mergeDistance:
		return append(chain, candidate[1:]...), true
	case distance(chainEnd, cEnd) < mergeDistance:
		return append(chain, reversed(candidate[:len(candidate)-1])...), true
	case distance(chainStart, cStart) < mergeDistance:
		return append(reversed(candidate[:len(candidate)-1]), chain...), true
	case distance(chainStart, cEnd) < mergeDistance:
		return append(append([]r2.Point{}, candidate...), chain[1:]...), true
	}

	return nil, false
}

func reversed(points []r2.Point) []r2.Point {
	out := make([]r2.Point, len(points))

	for i, p := range points {
		out[len(points)-1-i] = p
	}

	return out
}

// buildRun recomputes length, per-edge breakdown, bounds and midpoint for
// a finished chain, merge-introduced vertices included.
func buildRun(colour string, points []r2.Point) Run {
	totalLength := 0.0
	segments := make([]Segment, 0, len(points)-1)

	for i := 0; i < len(points)-1; i++ {
		segLen := distance(points[i], points[i+1])
		totalLength += segLen
		segments = append(segments, Segment{
			X1:             round1(points[i].X),
			Y1:             round1(points[i].Y),
			X2:             round1(points[i+1].X),
			Y2:             round1(points[i+1].Y),
			LengthPDFUnits: round2(segLen),
		})
	}

	sumX, sumY := 0.0, 0.0
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}

	return Run{
		Colour:         colour,
		Points:         points,
		LengthPDFUnits: totalLength,
		SegmentCount:   len(points) - 1,
		BBox:           BBoxOf(points),
		Midpoint: Midpoint{
			X: round1(sumX / float64(len(points))),
			Y: round1(sumY / float64(len(points))),
		},
		Segments: segments,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
