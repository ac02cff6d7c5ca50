package extract

import "sort"

// MinRunLengthMetres filters out converted runs too short to be real tray
// lines: leader strokes, hatching remnants and similar drawing artifacts.
const MinRunLengthMetres = 0.5

// SegmentResult is one edge of a run with its length converted to metres.
type SegmentResult struct {
	X1           float64 `json:"x1"`
	Y1           float64 `json:"y1"`
	X2           float64 `json:"x2"`
	Y2           float64 `json:"y2"`
	LengthMetres float64 `json:"length_metres"`
}

// RunResult is a merged run with real-world lengths applied.
type RunResult struct {
	Colour              string          `json:"colour"`
	TotalLengthMetres   float64         `json:"total_length_metres"`
	TotalLengthPDFUnits float64         `json:"total_length_pdf_units"`
	SegmentCount        int             `json:"segment_count"`
	BBox                BBox            `json:"bbox"`
	Midpoint            Midpoint        `json:"midpoint"`
	Segments            []SegmentResult `json:"segments"`
}

// ColourSummary accumulates per-colour totals across runs.
type ColourSummary struct {
	ColourName        string  `json:"colour_name"`
	RunCount          int     `json:"run_count"`
	TotalLengthMetres float64 `json:"total_length_metres"`
}

// AggregateRuns converts merged runs to metres, drops artifact runs under
// the length floor, accumulates per-colour summaries and sorts the
// survivors longest first. The sort is stable: equal lengths keep the
// order the merger emitted them in.
func AggregateRuns(runs []Run, metresPerUnit float64) ([]RunResult, map[string]*ColourSummary) {
	results := []RunResult{}
	summary := map[string]*ColourSummary{}

	for _, run := range runs {
		lengthMetres := round2(run.LengthPDFUnits * metresPerUnit)

		if lengthMetres < MinRunLengthMetres {
			continue
		}

		segments := make([]SegmentResult, 0, len(run.Segments))
		for _, seg := range run.Segments {
			segments = append(segments, SegmentResult{
				X1:           seg.X1,
				Y1:           seg.Y1,
				X2:           seg.X2,
				Y2:           seg.Y2,
				LengthMetres: round2(seg.LengthPDFUnits * metresPerUnit),
			})
		}

		results = append(results, RunResult{
			Colour:              run.Colour,
			TotalLengthMetres:   lengthMetres,
			TotalLengthPDFUnits: round2(run.LengthPDFUnits),
			SegmentCount:        run.SegmentCount,
			BBox:                run.BBox,
			Midpoint:            run.Midpoint,
			Segments:            segments,
		})

		entry := summary[run.Colour]
		if entry == nil {
			entry = &ColourSummary{ColourName: ColourName(run.Colour)}
			summary[run.Colour] = entry
		}
		entry.RunCount++
		entry.TotalLengthMetres += lengthMetres
	}

	for _, entry := range summary {
		entry.TotalLengthMetres = round2(entry.TotalLengthMetres)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalLengthMetres > results[j].TotalLengthMetres
	})

	return results, summary
}
