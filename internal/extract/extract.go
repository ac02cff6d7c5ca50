// Package extract turns colour-coded stroked paths from scaled CAD
// drawings into real-world tray-run lengths: colour classification,
// fragment-to-run merging, scale resolution and per-colour aggregation.
package extract

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// GeometryProvider supplies parsed page geometry and text. The core never
// reads PDF byte streams itself; pages are 1-based throughout.
type GeometryProvider interface {
	NumPages() int
	PageSize(page int) (width, height float64, err error)
	Drawings(page int) ([]Drawing, error)
	Text(page int) (string, error)
}

// Options carries the caller-supplied overrides for scale resolution.
// Scale is the bare denominator as given in the request ("100" for
// 1:100); either field may be empty, in which case text detection and
// finally the defaults apply.
type Options struct {
	Scale     string
	PaperSize string
}

// Result is the full measurement payload for one page.
type Result struct {
	PageWidth          float64                   `json:"page_width"`
	PageHeight         float64                   `json:"page_height"`
	Scale              string                    `json:"scale"`
	PaperSize          string                    `json:"paper_size"`
	MetresPerPDFUnit   float64                   `json:"metres_per_pdf_unit"`
	TotalColouredPaths int                       `json:"total_coloured_paths"`
	Runs               []RunResult               `json:"runs"`
	ColourSummary      map[string]*ColourSummary `json:"colour_summary"`
}

// Page measures all coloured tray runs on one page of an open document:
// collect coloured stroked paths, merge connected fragments, resolve the
// drawing scale and convert to metres.
func Page(doc GeometryProvider, pageNum int, opts Options) (*Result, error) {
	log := logrus.WithField("page", pageNum)

	pageWidth, pageHeight, err := doc.PageSize(pageNum)
	if err != nil {
		return nil, fmt.Errorf("reading page size: %w", err)
	}

	scale, paperSize := resolveScale(doc, pageNum, opts)
	metresPerUnit := MetresPerPDFUnit(scale, paperSize, pageWidth)

	log.WithFields(logrus.Fields{
		"width":      fmt.Sprintf("%.0f", pageWidth),
		"height":     fmt.Sprintf("%.0f", pageHeight),
		"scale":      scale,
		"paper":      paperSize,
		"m_per_unit": fmt.Sprintf("%.6f", metresPerUnit),
	}).Info("resolved page scale")

	result := &Result{
		PageWidth:        round1(pageWidth),
		PageHeight:       round1(pageHeight),
		Scale:            scale,
		PaperSize:        paperSize,
		MetresPerPDFUnit: metresPerUnit,
		Runs:             []RunResult{},
		ColourSummary:    map[string]*ColourSummary{},
	}

	drawings, err := doc.Drawings(pageNum)
	if err != nil {
		// Geometry extraction is best effort, as in the upstream parser:
		// an unreadable content stream yields an empty measurement, not a
		// failed request.
		log.WithError(err).Warn("drawing extraction failed")
		return result, nil
	}

	rawPaths := CollectColouredPaths(drawings)
	result.TotalColouredPaths = len(rawPaths)
	log.WithField("paths", len(rawPaths)).Info("collected coloured path segments")

	if len(rawPaths) == 0 {
		return result, nil
	}

	runs := MergeConnectedPaths(rawPaths, MergeDistance)
	log.WithField("runs", len(runs)).Info("merged connected runs")

	result.Runs, result.ColourSummary = AggregateRuns(runs, metresPerUnit)

	for colour, entry := range result.ColourSummary {
		log.WithFields(logrus.Fields{
			"colour": colour,
			"name":   entry.ColourName,
			"runs":   entry.RunCount,
			"metres": entry.TotalLengthMetres,
		}).Info("colour summary")
	}

	return result, nil
}

// resolveScale applies the precedence order: explicit caller parameters,
// then values detected from page text, then defaults (1:100 on A0).
func resolveScale(doc GeometryProvider, pageNum int, opts Options) (scale, paperSize string) {
	detectedScale, detectedPaper := "", ""

	if text, err := doc.Text(pageNum); err == nil {
		detectedScale, detectedPaper = DetectScaleFromText(text)
	}

	switch {
	case opts.Scale != "":
		scale = "1:" + opts.Scale
	case detectedScale != "":
		scale = detectedScale
	default:
		scale = "1:100"
	}

	switch {
	case opts.PaperSize != "":
		paperSize = opts.PaperSize
	case detectedPaper != "":
		paperSize = detectedPaper
	default:
		paperSize = "A0"
	}

	return scale, paperSize
}
