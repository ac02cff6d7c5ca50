package extract

import (
	"math"

	"github.com/golang/geo/r2"
)

// Primitive operation kinds emitted by the geometry provider.
const (
	OpLine  = "l"
	OpCurve = "c"
	OpRect  = "re"
	OpQuad  = "qu"
)

// MinPathLength is the noise floor for raw paths, in PDF units.
const MinPathLength = 5.0

// DrawingItem is a single primitive operation inside a drawing object.
// Lines carry two points, curves four (start, two controls, end), rects
// and quads their four corners.
type DrawingItem struct {
	Op     string
	Points []r2.Point
}

// Drawing is one stroked drawing object as reported by the geometry
// provider. StrokeColour holds the raw colour-space channels; nil means
// the object was not stroked.
type Drawing struct {
	StrokeColour []float64
	Items        []DrawingItem
}

// BBox is an axis-aligned bounding box in PDF units.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// SegmentPath is one normalized stroked path: an ordered polyline with its
// canonical colour key, chord length and bounding box.
type SegmentPath struct {
	Colour         string
	Points         []r2.Point
	LengthPDFUnits float64
	BBox           BBox
}

// NormalizePath flattens a drawing object into an ordered polyline.
// Curves contribute only their endpoints (chord approximation); rects and
// quads are never tray lines and contribute nothing. When consecutive
// operations share a start point the duplicate vertex is dropped.
func NormalizePath(d Drawing) []r2.Point {
	points := []r2.Point{}

	for _, item := range d.Items {
		switch item.Op {
		case OpLine:
			if len(item.Points) < 2 {
				continue
			}
			appendVertex(&points, item.Points[0])
			points = append(points, item.Points[1])
		case OpCurve:
			if len(item.Points) < 4 {
				continue
			}
			appendVertex(&points, item.Points[0])
			points = append(points, item.Points[3])
		case OpRect, OpQuad:
			continue
		}
	}

	return points
}

func appendVertex(points *[]r2.Point, p r2.Point) {
	if len(*points) == 0 || (*points)[len(*points)-1] != p {
		*points = append(*points, p)
	}
}

// PathLength is the sum of consecutive-vertex Euclidean distances.
func PathLength(points []r2.Point) float64 {
	total := 0.0

	for i := 0; i < len(points)-1; i++ {
		total += distance(points[i], points[i+1])
	}

	return total
}

func distance(a, b r2.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBoxOf computes the min/max bounds over all vertices.
func BBoxOf(points []r2.Point) BBox {
	rect := r2.RectFromPoints(points[0])

	for _, p := range points[1:] {
		rect = rect.AddPoint(p)
	}

	return BBox{X0: rect.X.Lo, Y0: rect.Y.Lo, X1: rect.X.Hi, Y1: rect.Y.Hi}
}

// CollectColouredPaths filters a page's drawing objects down to the
// meaningfully coloured stroked paths and normalizes each one. Drawings
// with no stroke colour, unsupported colour spaces, neutral colours, fewer
// than two vertices or a chord length under the noise floor are dropped.
func CollectColouredPaths(drawings []Drawing) []SegmentPath {
	paths := []SegmentPath{}

	for _, d := range drawings {
		if d.StrokeColour == nil {
			continue
		}

		r, g, b, ok := NormalizeColour(d.StrokeColour)
		if !ok {
			continue
		}

		if !IsMeaningfulColour(r, g, b) {
			continue
		}

		points := NormalizePath(d)
		if len(points) < 2 {
			continue
		}

		length := PathLength(points)
		if length < MinPathLength {
			continue
		}

		paths = append(paths, SegmentPath{
			Colour:         RGBToHex(r, g, b),
			Points:         points,
			LengthPDFUnits: length,
			BBox:           BBoxOf(points),
		})
	}

	return paths
}
