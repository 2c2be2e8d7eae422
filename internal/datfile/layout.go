package datfile

import "github.com/coreman2200/ledatgen/internal/gamma"

// frameLayout turns one frame of pixel data into controller bytes. The
// writer only needs the frame byte length and an encoder; header and padding
// logic is shared.
type frameLayout interface {
	frameSize(d *DATFile) int
	encodeFrame(d *DATFile, frame int, buf []byte)
}

// groupedLayout is the hardware-accurate multi-controller arrangement.
//
// Group size = 8 x controllerCount bytes. Each LED slot occupies 3
// consecutive groups holding the B, G, R channel planes. Within each
// controller's 8-byte block the ports are reversed: port 0 lands on the
// last byte, port 7 on the first. Values pass through the gamma LUT.
type groupedLayout struct{}

func (groupedLayout) frameSize(d *DATFile) int {
	return d.MaxLedsPerUniverse() * 3 * d.GroupSize()
}

func (groupedLayout) encodeFrame(d *DATFile, frame int, buf []byte) {
	grp := d.GroupSize()
	lut := gamma.Table()

	for uid, u := range d.universes {
		ctrl := uid / PortsPerController
		port := uid % PortsPerController
		bytePos := ctrl*PortsPerController + (PortsPerController - 1 - port)

		base := frame * u.leds * 3
		for led := 0; led < u.leds; led++ {
			r := u.data[base+led*3]
			g := u.data[base+led*3+1]
			b := u.data[base+led*3+2]

			groupBase := led * 3 * grp
			buf[groupBase+bytePos] = lut[b]
			buf[groupBase+grp+bytePos] = lut[g]
			buf[groupBase+2*grp+bytePos] = lut[r]
		}
	}
}

// sequentialLayout concatenates per-universe BGR triples in universe order.
// No grouping, no gamma, no equalization: each universe contributes exactly
// leds*3 bytes.
type sequentialLayout struct{}

func (sequentialLayout) frameSize(d *DATFile) int {
	return d.TotalPixels() * 3
}

func (sequentialLayout) encodeFrame(d *DATFile, frame int, buf []byte) {
	off := 0
	for _, u := range d.universes {
		base := frame * u.leds * 3
		for led := 0; led < u.leds; led++ {
			buf[off] = u.data[base+led*3+2]
			buf[off+1] = u.data[base+led*3+1]
			buf[off+2] = u.data[base+led*3]
			off += 3
		}
	}
}
