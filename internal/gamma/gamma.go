// Package gamma holds the gamma 2.2 lookup table applied to pixel values
// before they are written into controller frame data.
package gamma

import "math"

const exponent = 2.2

// table maps linear 8-bit intensity to gamma-corrected 8-bit intensity.
// Precomputed once, like the bit-expansion LUT in the SPI driver.
var table [256]byte

func init() {
	for i := 0; i < 256; i++ {
		table[i] = byte(math.Round(math.Pow(float64(i)/255.0, exponent) * 255.0))
	}
}

// Correct returns the gamma-corrected value for a linear intensity.
func Correct(v byte) byte {
	return table[v]
}

// Table returns the full 256-entry LUT for bulk encoders.
func Table() *[256]byte {
	return &table
}
