package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultScaleRatio is assumed when no scale is supplied or detected.
const DefaultScaleRatio = 100

// Landscape paper widths in millimetres. Immutable process-wide
// configuration; unknown sizes fall back to A0.
var paperWidthsMM = map[string]float64{
	"A0": 1189,
	"A1": 841,
	"A2": 594,
	"A3": 420,
	"A4": 297,
}

// paperSizePriority is the detection order for paper-size tokens in page
// text; the first token found wins.
var paperSizePriority = []string{"A0", "A1", "A2", "A3", "A4"}

var scalePattern = regexp.MustCompile(`(?:SCALE\s*)?1\s*:\s*(\d+)`)

// ParseScaleRatio extracts the denominator from a "1:N" scale string.
// Absent or unparseable input yields the 1:100 default.
func ParseScaleRatio(scale string) int {
	if scale == "" {
		return DefaultScaleRatio
	}

	ratio, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(scale, "1:", "")))
	if err != nil || ratio <= 0 {
		return DefaultScaleRatio
	}

	return ratio
}

// PaperWidthMM looks up the landscape width of a paper size code,
// defaulting to A0 for unknown codes.
func PaperWidthMM(code string) float64 {
	if w, ok := paperWidthsMM[code]; ok {
		return w
	}

	return paperWidthsMM["A0"]
}

// MetresPerPDFUnit computes the conversion factor from PDF units to
// real-world metres: the page width in PDF units maps to the paper's
// physical millimetres, the scale ratio maps paper millimetres to real
// millimetres, and /1000 converts to metres.
func MetresPerPDFUnit(scale, paperSize string, pageWidth float64) float64 {
	return (PaperWidthMM(paperSize) / pageWidth) * float64(ParseScaleRatio(scale)) / 1000
}

// DetectScaleFromText scans page text for a scale callout ("1:100",
// "SCALE 1:50", ...) and a paper-size token. Either result may be empty.
// Best-effort only; explicit caller parameters take precedence.
func DetectScaleFromText(text string) (scale, paperSize string) {
	upper := strings.ToUpper(text)

	if m := scalePattern.FindStringSubmatch(upper); m != nil {
		scale = "1:" + m[1]
	}

	for _, size := range paperSizePriority {
		if strings.Contains(upper, size) {
			paperSize = size
			break
		}
	}

	return scale, paperSize
}
