package extract

import (
	"fmt"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// SaturationThreshold is the minimum saturation for a stroke colour to be
// treated as a tray colour rather than structural linework.
const SaturationThreshold = 0.15

// NormalizeColour maps a raw stroke-colour descriptor to RGB floats in
// [0,1]. One channel is grayscale, three is RGB, four is CMYK. Any other
// arity means the colour space is unknown and the path should be skipped.
func NormalizeColour(channels []float64) (r, g, b float64, ok bool) {
	switch len(channels) {
	case 1:
		return channels[0], channels[0], channels[0], true
	case 3:
		return channels[0], channels[1], channels[2], true
	case 4:
		c, m, y, k := channels[0], channels[1], channels[2], channels[3]
		return (1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k), true
	}

	return 0, 0, 0, false
}

// IsMeaningfulColour reports whether an RGB colour is meaningfully coloured,
// excluding the black/white/grey strokes used for borders and dimension
// lines in CAD drawings.
func IsMeaningfulColour(r, g, b float64) bool {
	brightness := (r + g + b) / 3

	maxC := r
	if g > maxC {
		maxC = g
	}
	if b > maxC {
		maxC = b
	}

	minC := r
	if g < minC {
		minC = g
	}
	if b < minC {
		minC = b
	}

	saturation := 0.0
	if maxC > 0 {
		saturation = (maxC - minC) / maxC
	}

	return brightness > 0.08 && brightness < 0.94 && saturation > SaturationThreshold
}

func toHexByte(c float64) int {
	// Truncation, not rounding: identical float inputs must always land in
	// the same colour bucket.
	i := int(c * 255)

	if i < 0 {
		return 0
	}
	if i > 255 {
		return 255
	}

	return i
}

// RGBToHex converts 0-1 floats to a canonical "#rrggbb" colour key.
func RGBToHex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", toHexByte(r), toHexByte(g), toHexByte(b))
}

// HexToRGB converts a "#rrggbb" colour key back to 0-1 floats.
func HexToRGB(hex string) (r, g, b float64, err error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid colour key %q", hex)
	}

	channels := [3]float64{}

	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid colour key %q: %w", hex, err)
		}
		channels[i] = float64(v) / 255
	}

	return channels[0], channels[1], channels[2], nil
}

// ColourName returns a human readable name for a colour key, for quoting
// UIs and logs. Unparseable keys map to the empty string.
func ColourName(hex string) string {
	r, g, b, err := HexToRGB(hex)
	if err != nil {
		return ""
	}

	color := colorful.Color{R: r, G: g, B: b}
	h, s, l := color.Hsl()

	// name buckets based on HSL
	if l < 0.12 {
		return "Black"
	}
	if l > 0.98 {
		return "White"
	}
	if s < 0.2 {
		return "Gray"
	}
	if h < 15 {
		return "Red"
	}
	if h < 45 {
		return "Orange"
	}
	if h < 65 {
		return "Yellow"
	}
	if h < 170 {
		return "Green"
	}
	if h < 190 {
		return "Cyan"
	}
	if h < 263 {
		return "Blue"
	}
	if h < 280 {
		return "Purple"
	}
	if h < 335 {
		return "Magenta"
	}
	return "Red"
}
