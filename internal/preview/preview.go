// Package preview pushes animation frames to a physical LED string over
// SPI (WS281x-style NRZ encoding) before committing to an SD card, with a
// console fallback when no SPI port is present.
package preview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/ledatgen/internal/datfile"
)

const refreshRate physic.Frequency = 800

// Renderer draws one-row frame images to a display.Drawer.
type Renderer struct {
	drawer display.Drawer
	SPI    bool
}

// Init opens the named SPI port (empty string picks the first available) and
// prepares an NRZ LED drawer sized for numPixels. Falls back to a console
// screen when no port can be opened.
func Init(numPixels int, spiDev string) (*Renderer, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	port, err := spireg.Open(spiDev)
	if err != nil {
		log.Warn().Err(err).Str("dev", spiDev).Msg("no SPI port; previewing at the console")
		return &Renderer{drawer: screen.New(100)}, nil
	}

	opts := nrzled.Opts{
		NumPixels: numPixels,
		Channels:  3,
		Freq:      ((refreshRate * 3) + 100) * physic.KiloHertz,
	}
	d, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("nrzled init: %w", err)
	}
	d.Halt()
	return &Renderer{drawer: d, SPI: true}, nil
}

// NewWithDrawer wraps an existing drawer. Used by tests with spitest.
func NewWithDrawer(d display.Drawer) *Renderer {
	return &Renderer{drawer: d}
}

// Frame draws one frame of the animation.
func (r *Renderer) Frame(d *datfile.DATFile, frame int) error {
	img, err := Image(d, frame)
	if err != nil {
		return err
	}
	return r.drawer.Draw(r.drawer.Bounds(), img, image.Point{})
}

// Halt blanks the output.
func (r *Renderer) Halt() error {
	return r.drawer.Halt()
}

// Image renders one frame as a one-row image: all universes concatenated in
// index order, pre-gamma RGB as stored (the strip hardware applies its own
// response; the DAT gamma table is a file-format concern).
func Image(d *datfile.DATFile, frame int) (*image.NRGBA, error) {
	im := image.NewNRGBA(image.Rect(0, 0, d.TotalPixels(), 1))
	x := 0
	for u := 0; u < d.NumUniverses(); u++ {
		leds, err := d.UniverseLeds(u)
		if err != nil {
			return nil, err
		}
		for p := 0; p < leds; p++ {
			r, g, b, err := d.GetPixel(u, frame, p)
			if err != nil {
				return nil, err
			}
			im.SetNRGBA(x, 0, color.NRGBA{R: r, G: g, B: b, A: 255})
			x++
		}
	}
	return im, nil
}
