// Package datfile builds .dat animation files for H803TC / H801RC / H802RA
// LED string controllers (LEDBuild-compatible).
//
// File structure:
//   - Header: 512 bytes (magic + config, mostly zeros)
//   - Frame data: grouped channel planes or sequential BGR, per layout mode
//   - Each frame padded to a 512-byte boundary
//
// Multi-controller: universes 0-7 map to controller 1, 8-15 to controller 2,
// and so on, 8 ports per controller.
package datfile

import (
	"fmt"
	"strings"
)

const (
	// HeaderSize is the fixed header length; frames pad to the same boundary.
	HeaderSize = 512

	// PortsPerController is the number of output ports on one controller.
	PortsPerController = 8
)

// LayoutMode selects the frame byte layout at construction time.
type LayoutMode int

const (
	// LayoutGrouped is the hardware-accurate multi-controller layout:
	// gamma-corrected channel planes with reversed port-to-byte mapping.
	LayoutGrouped LayoutMode = iota

	// LayoutSequential concatenates per-universe BGR triples with no
	// grouping and no gamma correction, for simple single-controller rigs.
	LayoutSequential
)

func (m LayoutMode) String() string {
	switch m {
	case LayoutGrouped:
		return "grouped"
	case LayoutSequential:
		return "sequential"
	default:
		return fmt.Sprintf("LayoutMode(%d)", int(m))
	}
}

// universe is one LED string: a fixed LED count plus its pixel data,
// a flat RGB buffer of frames*leds*3 bytes.
type universe struct {
	leds int
	data []byte
}

func (u *universe) alloc(frames int) []byte {
	return make([]byte, frames*u.leds*3)
}

// DATFile accumulates per-universe animation frames and writes them out in
// the controller's binary format. Not safe for concurrent use.
type DATFile struct {
	mode   LayoutMode
	layout frameLayout

	templateFile string
	registry     *HeaderRegistry

	universes []*universe
	frames    int
}

// New returns an empty builder using the given frame layout.
func New(mode LayoutMode) *DATFile {
	d := &DATFile{mode: mode}
	switch mode {
	case LayoutSequential:
		d.layout = sequentialLayout{}
	default:
		d.layout = groupedLayout{}
	}
	return d
}

// SetTemplateFile associates a known-working DAT file whose 512-byte header
// is reused on Write (with the controller count patched in).
func (d *DATFile) SetTemplateFile(path string) {
	d.templateFile = path
}

// SetRegistry points the builder at a header registry other than the shared
// process-wide one. Useful for test isolation.
func (d *DATFile) SetRegistry(r *HeaderRegistry) {
	d.registry = r
}

func (d *DATFile) reg() *HeaderRegistry {
	if d.registry != nil {
		return d.registry
	}
	return defaultRegistry
}

// Mode reports the layout selected at construction.
func (d *DATFile) Mode() LayoutMode {
	return d.mode
}

// NumUniverses is the number of universes (ports) added so far.
func (d *DATFile) NumUniverses() int {
	return len(d.universes)
}

// NumFrames is the global frame count shared by all universes.
func (d *DATFile) NumFrames() int {
	return d.frames
}

// TotalPixels is the pixel count summed over all universes.
func (d *DATFile) TotalPixels() int {
	n := 0
	for _, u := range d.universes {
		n += u.leds
	}
	return n
}

// MaxLedsPerUniverse is the largest LED count across universes; it fixes the
// per-frame group count in the grouped layout.
func (d *DATFile) MaxLedsPerUniverse() int {
	n := 0
	for _, u := range d.universes {
		if u.leds > n {
			n = u.leds
		}
	}
	return n
}

// ControllerCount is the number of 8-port controllers the rig needs.
func (d *DATFile) ControllerCount() int {
	if len(d.universes) == 0 {
		return 1
	}
	return (len(d.universes) + PortsPerController - 1) / PortsPerController
}

// GroupSize is the channel-plane width in bytes: 8 per controller.
func (d *DATFile) GroupSize() int {
	return PortsPerController * d.ControllerCount()
}

// UniverseLeds returns the LED count of one universe.
func (d *DATFile) UniverseLeds(universe int) (int, error) {
	if universe < 0 || universe >= len(d.universes) {
		return 0, fmt.Errorf("%w: universe %d not in [0, %d)", ErrOutOfRange, universe, len(d.universes))
	}
	return d.universes[universe].leds, nil
}

// AddUniverse appends a universe (port) with numLeds LEDs and returns its
// 0-based index. Its buffer is allocated to the current global frame count,
// zero-filled.
func (d *DATFile) AddUniverse(numLeds int) (int, error) {
	if numLeds <= 0 {
		return 0, fmt.Errorf("%w: led count must be positive, got %d", ErrInvalidConfig, numLeds)
	}
	u := &universe{leds: numLeds}
	u.data = u.alloc(d.frames)
	d.universes = append(d.universes, u)
	return len(d.universes) - 1, nil
}

// SetFrameCount sets the global frame count and resizes every universe's
// buffer. Frames below min(old, new) are preserved byte-for-byte; newly
// introduced frames start black; frames beyond the new count are dropped.
func (d *DATFile) SetFrameCount(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: frame count must be positive, got %d", ErrInvalidConfig, n)
	}
	old := d.frames
	d.frames = n
	keep := old
	if n < keep {
		keep = n
	}
	for _, u := range d.universes {
		next := u.alloc(n)
		copy(next, u.data[:keep*u.leds*3])
		u.data = next
	}
	return nil
}

// SetPixel stores a pixel's RGB color (linear, before gamma).
func (d *DATFile) SetPixel(universe, frame, pixel int, r, g, b byte) error {
	u, off, err := d.pixelOffset(universe, frame, pixel)
	if err != nil {
		return err
	}
	u.data[off] = r
	u.data[off+1] = g
	u.data[off+2] = b
	return nil
}

// GetPixel returns the stored (r, g, b) for a pixel.
func (d *DATFile) GetPixel(universe, frame, pixel int) (r, g, b byte, err error) {
	u, off, err := d.pixelOffset(universe, frame, pixel)
	if err != nil {
		return 0, 0, 0, err
	}
	return u.data[off], u.data[off+1], u.data[off+2], nil
}

func (d *DATFile) pixelOffset(uni, frame, pixel int) (*universe, int, error) {
	if uni < 0 || uni >= len(d.universes) {
		return nil, 0, fmt.Errorf("%w: universe %d not in [0, %d)", ErrOutOfRange, uni, len(d.universes))
	}
	u := d.universes[uni]
	if frame < 0 || frame >= d.frames {
		return nil, 0, fmt.Errorf("%w: frame %d not in [0, %d)", ErrOutOfRange, frame, d.frames)
	}
	if pixel < 0 || pixel >= u.leds {
		return nil, 0, fmt.Errorf("%w: pixel %d not in [0, %d)", ErrOutOfRange, pixel, u.leds)
	}
	return u, (frame*u.leds + pixel) * 3, nil
}

// String summarizes the current configuration.
func (d *DATFile) String() string {
	parts := make([]string, len(d.universes))
	for i, u := range d.universes {
		parts[i] = fmt.Sprintf("u%d=%d", i, u.leds)
	}
	return fmt.Sprintf("DATFile(universes=[%s], frames=%d)", strings.Join(parts, ", "), d.frames)
}

// Clear drops all frame data (frame count back to zero) while keeping the
// universe configuration intact.
func (d *DATFile) Clear() {
	d.frames = 0
	for _, u := range d.universes {
		u.data = u.alloc(0)
	}
}
