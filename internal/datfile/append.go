package datfile

import "fmt"

// FrameData carries pre-built pixel frames for one universe in the canonical
// [frame][pixel][channel] orientation. Callers state the shape of their data
// through a constructor instead of relying on runtime shape guessing.
type FrameData struct {
	frames [][][3]byte
}

// SingleFrame wraps one pixels x 3 frame.
func SingleFrame(pixels [][3]byte) FrameData {
	return FrameData{frames: [][][3]byte{pixels}}
}

// Frames wraps data already in frames x pixels x 3 orientation.
func Frames(frames [][][3]byte) FrameData {
	return FrameData{frames: frames}
}

// PixelMajorFrames accepts pixels x frames x 3 data, as emitted by some
// producers, and transposes it to the canonical orientation.
func PixelMajorFrames(data [][][3]byte) FrameData {
	if len(data) == 0 {
		return FrameData{}
	}
	frames := make([][][3]byte, len(data[0]))
	for f := range frames {
		row := make([][3]byte, len(data))
		for p := range data {
			row[p] = data[p][f]
		}
		frames[f] = row
	}
	return FrameData{frames: frames}
}

// NumFrames reports how many frames the data holds.
func (fd FrameData) NumFrames() int {
	return len(fd.frames)
}

// AppendFrames grows the animation by fd's frames and stores them in the
// given universe. Existing frames are never touched; frames added to the
// other universes start black, same zero-fill rule as SetFrameCount.
func (d *DATFile) AppendFrames(uni int, fd FrameData) error {
	if uni < 0 || uni >= len(d.universes) {
		return fmt.Errorf("%w: universe %d not in [0, %d)", ErrOutOfRange, uni, len(d.universes))
	}
	u := d.universes[uni]
	for f, pixels := range fd.frames {
		if len(pixels) != u.leds {
			return fmt.Errorf("%w: frame %d has %d pixels, universe %d has %d LEDs",
				ErrInvalidConfig, f, len(pixels), uni, u.leds)
		}
	}
	if len(fd.frames) == 0 {
		return nil
	}

	start := d.frames
	if err := d.SetFrameCount(start + len(fd.frames)); err != nil {
		return err
	}
	for f, pixels := range fd.frames {
		off := (start + f) * u.leds * 3
		for p, rgb := range pixels {
			copy(u.data[off+p*3:off+p*3+3], rgb[:])
		}
	}
	return nil
}
