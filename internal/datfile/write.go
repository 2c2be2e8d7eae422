package datfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Write emits the .dat file plus a .txt summary with the same base name and
// returns the number of bytes written to the .dat file.
//
// Layout on disk: 512-byte header, then each frame in ascending order, each
// zero-padded to the next 512-byte boundary. There is no frame index or
// length prefix; a reader must already know the rig configuration.
//
// template optionally supplies header bytes for this write, taking
// precedence over any template file set at construction. There is no
// partial-write recovery: on error the output is incomplete and the whole
// operation must be treated as failed.
func (d *DATFile) Write(path string, template []byte) (int64, error) {
	header, err := d.resolveHeader(template)
	if err != nil {
		return 0, err
	}

	frameSize := d.layout.frameSize(d)
	pad := (HeaderSize - frameSize%HeaderSize) % HeaderSize

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	var total int64

	n, err := w.Write(header)
	total += int64(n)
	if err != nil {
		f.Close()
		return total, err
	}

	buf := make([]byte, frameSize)
	padding := make([]byte, pad)
	for frame := 0; frame < d.frames; frame++ {
		for i := range buf {
			buf[i] = 0
		}
		d.layout.encodeFrame(d, frame, buf)

		n, err = w.Write(buf)
		total += int64(n)
		if err != nil {
			f.Close()
			return total, err
		}
		n, err = w.Write(padding)
		total += int64(n)
		if err != nil {
			f.Close()
			return total, err
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return total, err
	}
	if err := f.Close(); err != nil {
		return total, err
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if err := d.WriteSummary(base + ".txt"); err != nil {
		return total, err
	}
	return total, nil
}

// WriteSummary writes the human-readable configuration listing: universe
// count, per-universe LED counts in index order, then the frame count.
func (d *DATFile) WriteSummary(path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Universes: %d\n", len(d.universes))
	for i, u := range d.universes {
		fmt.Fprintf(&b, "Universe %d: %d LEDs\n", i, u.leds)
	}
	fmt.Fprintf(&b, "Frames: %d\n", d.frames)
	return os.WriteFile(path, []byte(b.String()), 0644)
}
