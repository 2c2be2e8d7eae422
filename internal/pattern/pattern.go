// Package pattern fills a DATFile with test content: the classic white
// field with red end markers, a solid color, or a rotating rainbow sweep.
package pattern

import (
	"fmt"
	"math"

	"github.com/coreman2200/ledatgen/internal/datfile"
)

// Apply fills every universe and frame of d with the named pattern.
func Apply(d *datfile.DATFile, name string) error {
	switch name {
	case "", "markers":
		return Markers(d)
	case "solid":
		return Solid(d, 255, 255, 255)
	case "rainbow":
		return Rainbow(d)
	default:
		return fmt.Errorf("unknown pattern %q", name)
	}
}

// Markers paints every pixel white with the first and last pixel of each
// universe red, the standard wiring sanity check.
func Markers(d *datfile.DATFile) error {
	for u := 0; u < d.NumUniverses(); u++ {
		leds, err := d.UniverseLeds(u)
		if err != nil {
			return err
		}
		for f := 0; f < d.NumFrames(); f++ {
			for p := 0; p < leds; p++ {
				if err := d.SetPixel(u, f, p, 255, 255, 255); err != nil {
					return err
				}
			}
			if err := d.SetPixel(u, f, 0, 255, 0, 0); err != nil {
				return err
			}
			if err := d.SetPixel(u, f, leds-1, 255, 0, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// Solid paints every pixel of every frame the same color.
func Solid(d *datfile.DATFile, r, g, b byte) error {
	for u := 0; u < d.NumUniverses(); u++ {
		leds, err := d.UniverseLeds(u)
		if err != nil {
			return err
		}
		for f := 0; f < d.NumFrames(); f++ {
			for p := 0; p < leds; p++ {
				if err := d.SetPixel(u, f, p, r, g, b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Rainbow paints a hue gradient along each string that rotates one full
// cycle over the animation.
func Rainbow(d *datfile.DATFile) error {
	frames := d.NumFrames()
	for u := 0; u < d.NumUniverses(); u++ {
		leds, err := d.UniverseLeds(u)
		if err != nil {
			return err
		}
		for f := 0; f < frames; f++ {
			phase := float64(f) / float64(frames)
			for p := 0; p < leds; p++ {
				h := math.Mod(float64(p)/float64(leds)+phase, 1.0)
				r, g, b := hsvToRGB(h, 1.0, 1.0)
				if err := d.SetPixel(u, f, p, byte(r*255), byte(g*255), byte(b*255)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - f*s)
	t := v * (1.0 - (1.0-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
