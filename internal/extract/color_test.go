package extract

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColour(t *testing.T) {
	tests := []struct {
		name     string
		channels []float64
		r, g, b  float64
		ok       bool
	}{
		{"grayscale", []float64{0.4}, 0.4, 0.4, 0.4, true},
		{"rgb", []float64{0.2, 0.4, 0.6}, 0.2, 0.4, 0.6, true},
		{"cmyk black", []float64{0, 0, 0, 1}, 0, 0, 0, true},
		{"cmyk cyan", []float64{1, 0, 0, 0}, 0, 1, 1, true},
		{"cmyk mixed", []float64{0.5, 0, 0, 0.5}, 0.25, 0.5, 0.5, true},
		{"empty", []float64{}, 0, 0, 0, false},
		{"two channels", []float64{0.5, 0.5}, 0, 0, 0, false},
		{"five channels", []float64{1, 1, 1, 1, 1}, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, ok := NormalizeColour(tt.channels)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.r, r, 1e-12)
				assert.InDelta(t, tt.g, g, 1e-12)
				assert.InDelta(t, tt.b, b, 1e-12)
			}
		})
	}
}

func TestIsMeaningfulColour(t *testing.T) {
	assert.False(t, IsMeaningfulColour(0, 0, 0), "black is structural")
	assert.False(t, IsMeaningfulColour(1, 1, 1), "white is structural")
	assert.False(t, IsMeaningfulColour(0.5, 0.5, 0.5), "grey has zero saturation")
	assert.False(t, IsMeaningfulColour(0.05, 0.02, 0.02), "too dark")
	assert.False(t, IsMeaningfulColour(0.98, 0.95, 0.95), "too bright")

	assert.True(t, IsMeaningfulColour(1, 0, 0))
	assert.True(t, IsMeaningfulColour(0, 0.6, 0.9))
	assert.True(t, IsMeaningfulColour(0.8, 0.4, 0))
}

func TestRGBToHexTruncates(t *testing.T) {
	// 0.999*255 = 254.745; truncation keeps identical floats in identical
	// buckets regardless of how close they sit to the next value.
	assert.Equal(t, "#fe0000", RGBToHex(0.999, 0, 0))
	assert.Equal(t, "#ff0000", RGBToHex(1, 0, 0))
	assert.Equal(t, "#000000", RGBToHex(0, 0, 0))

	// out-of-range channels clamp instead of producing malformed keys
	assert.Equal(t, "#ff0000", RGBToHex(1.5, -0.2, 0))
}

func TestColourRoundTrip(t *testing.T) {
	for i := 0; i <= 255; i += 15 {
		c := float64(i) / 255

		hex := RGBToHex(c, c, c)
		r, g, b, err := HexToRGB(hex)
		require.NoError(t, err)

		assert.InDelta(t, c, r, 1.0/255)
		assert.InDelta(t, c, g, 1.0/255)
		assert.InDelta(t, c, b, 1.0/255)
	}
}

func TestRGBToHexIdempotent(t *testing.T) {
	r, g, b := 0.12345, 0.6789, 0.99999

	first := RGBToHex(r, g, b)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RGBToHex(r, g, b))
	}
}

func TestHexToRGBRejectsBadKeys(t *testing.T) {
	for _, hex := range []string{"", "#fff", "#gggggg", "ff00", "#ff00001"} {
		_, _, _, err := HexToRGB(hex)
		assert.Error(t, err, fmt.Sprintf("key %q", hex))
	}
}

func TestColourName(t *testing.T) {
	tests := []struct {
		hex  string
		name string
	}{
		{"#ff0000", "Red"},
		{"#ff8800", "Orange"},
		{"#ffff00", "Yellow"},
		{"#00ff00", "Green"},
		{"#00ffff", "Cyan"},
		{"#0000ff", "Blue"},
		{"#ff00ff", "Magenta"},
		{"#000000", "Black"},
		{"#ffffff", "White"},
		{"#808080", "Gray"},
		{"not-a-colour", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.name, ColourName(tt.hex), tt.hex)
	}
}

func TestToHexByteBoundaries(t *testing.T) {
	assert.Equal(t, 0, toHexByte(0))
	assert.Equal(t, 255, toHexByte(1))
	assert.Equal(t, 127, toHexByte(0.5))
	assert.Equal(t, 254, toHexByte(math.Nextafter(1, 0)))
}
