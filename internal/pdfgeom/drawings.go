package pdfgeom

import (
	"github.com/golang/geo/r2"
	"github.com/mgmeyers/unipdf/v3/contentstream"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"

	"github.com/idoyourquotes/vector-service/internal/extract"
)

// pathBuilder accumulates the primitive operations of the current path
// between path-construction and path-painting operators.
type pathBuilder struct {
	items   []extract.DrawingItem
	current r2.Point
	start   r2.Point
	open    bool
}

func (b *pathBuilder) moveTo(p r2.Point) {
	b.current = p
	b.start = p
	b.open = true
}

func (b *pathBuilder) lineTo(p r2.Point) {
	b.items = append(b.items, extract.DrawingItem{
		Op:     extract.OpLine,
		Points: []r2.Point{b.current, p},
	})
	b.current = p
}

func (b *pathBuilder) curveTo(c1, c2, end r2.Point) {
	b.items = append(b.items, extract.DrawingItem{
		Op:     extract.OpCurve,
		Points: []r2.Point{b.current, c1, c2, end},
	})
	b.current = end
}

func (b *pathBuilder) rect(corners [4]r2.Point) {
	b.items = append(b.items, extract.DrawingItem{
		Op:     extract.OpRect,
		Points: corners[:],
	})
	b.current = corners[0]
	b.start = corners[0]
	b.open = true
}

func (b *pathBuilder) closeSubpath() {
	if b.open && b.current != b.start {
		b.lineTo(b.start)
	}
}

func (b *pathBuilder) reset() {
	b.items = nil
	b.open = false
}

// Drawings walks the page's content streams and returns one Drawing per
// painted path that includes a stroke, with coordinates mapped through
// the current transformation matrix into page space. Fill-only and
// clipping paths are discarded; so are paths whose stroke colour space
// cannot be reduced to gray/RGB/CMYK channels.
func (d *Document) Drawings(pageNum int) ([]extract.Drawing, error) {
	page, err := d.reader.GetPage(pageNum)
	if err != nil {
		return nil, err
	}

	contents, err := page.GetAllContentStreams()
	if err != nil {
		return nil, err
	}

	ops, err := contentstream.NewContentStreamParser(contents).Parse()
	if err != nil {
		return nil, err
	}

	drawings := []extract.Drawing{}
	builder := &pathBuilder{}

	processor := contentstream.NewContentStreamProcessor(*ops)
	processor.AddHandler(contentstream.HandlerConditionEnumAllOperands, "",
		func(op *contentstream.ContentStreamOperation, gs contentstream.GraphicsState, resources *model.PdfPageResources) error {
			params, err := floatParams(op.Params)
			if err != nil {
				// malformed operands: skip the operator, keep walking
				return nil
			}

			xf := func(x, y float64) r2.Point {
				tx, ty := gs.CTM.Transform(x, y)
				return r2.Point{X: tx, Y: ty}
			}

			switch op.Operand {
			case "m":
				if len(params) == 2 {
					builder.moveTo(xf(params[0], params[1]))
				}
			case "l":
				if len(params) == 2 {
					builder.lineTo(xf(params[0], params[1]))
				}
			case "c":
				if len(params) == 6 {
					builder.curveTo(xf(params[0], params[1]), xf(params[2], params[3]), xf(params[4], params[5]))
				}
			case "v":
				if len(params) == 4 {
					builder.curveTo(builder.current, xf(params[0], params[1]), xf(params[2], params[3]))
				}
			case "y":
				if len(params) == 4 {
					end := xf(params[2], params[3])
					builder.curveTo(xf(params[0], params[1]), end, end)
				}
			case "re":
				if len(params) == 4 {
					x, y, w, h := params[0], params[1], params[2], params[3]
					builder.rect([4]r2.Point{
						xf(x, y),
						xf(x+w, y),
						xf(x+w, y+h),
						xf(x, y+h),
					})
				}
			case "h":
				builder.closeSubpath()
			case "s", "b", "b*":
				builder.closeSubpath()
				fallthrough
			case "S", "B", "B*":
				if len(builder.items) > 0 {
					drawings = append(drawings, extract.Drawing{
						StrokeColour: strokeChannels(gs),
						Items:        builder.items,
					})
				}
				builder.reset()
			case "f", "F", "f*", "n":
				builder.reset()
			}

			return nil
		})

	if err := processor.Process(page.Resources); err != nil {
		return nil, err
	}

	return drawings, nil
}

// strokeChannels reports the raw stroke-colour channels of the graphics
// state: 1 for grayscale, 3 for RGB, 4 for CMYK. Other colour spaces are
// reduced through RGB when possible; nil means no usable stroke colour.
func strokeChannels(gs contentstream.GraphicsState) []float64 {
	switch c := gs.ColorStroking.(type) {
	case *model.PdfColorDeviceGray:
		return []float64{c.Val()}
	case *model.PdfColorDeviceRGB:
		return []float64{c.R(), c.G(), c.B()}
	case *model.PdfColorDeviceCMYK:
		return []float64{c.C(), c.M(), c.Y(), c.K()}
	}

	if gs.ColorspaceStroking == nil || gs.ColorStroking == nil {
		return nil
	}

	converted, err := gs.ColorspaceStroking.ColorToRGB(gs.ColorStroking)
	if err != nil {
		return nil
	}

	rgb, ok := converted.(*model.PdfColorDeviceRGB)
	if !ok {
		return nil
	}

	return []float64{rgb.R(), rgb.G(), rgb.B()}
}

func floatParams(objs []core.PdfObject) ([]float64, error) {
	params := make([]float64, 0, len(objs))

	for _, obj := range objs {
		v, err := core.GetNumberAsFloat(obj)
		if err != nil {
			return nil, err
		}
		params = append(params, v)
	}

	return params, nil
}
