package datfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/ledatgen/internal/gamma"
)

func writeAndRead(t *testing.T, d *DATFile, template []byte) (int64, []byte) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.dat")
	n, err := d.Write(path, template)
	if err != nil {
		t.Fatal(err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(len(blob)), n, "returned size must match file size")
	return n, blob
}

func TestWriteSequentialScenario(t *testing.T) {
	d := New(LayoutSequential)
	d.SetRegistry(NewHeaderRegistry())
	if _, err := d.AddUniverse(3); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFrameCount(1); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixel(0, 0, 0, 255, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixel(0, 0, 1, 0, 255, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixel(0, 0, 2, 0, 0, 255); err != nil {
		t.Fatal(err)
	}

	n, blob := writeAndRead(t, d, nil)
	assert.Equal(t, int64(1024), n, "512 header + 9 frame bytes padded to 512")

	// BGR triples, no gamma, in pixel order.
	frame := blob[HeaderSize:]
	assert.Equal(t, []byte{0, 0, 255, 0, 255, 0, 255, 0, 0}, frame[:9])
	for i := 9; i < 512; i++ {
		if frame[i] != 0 {
			t.Fatalf("padding byte %d = %#x, want zero", i, frame[i])
		}
	}
}

func TestWriteSequentialSizeFormula(t *testing.T) {
	d := New(LayoutSequential)
	d.SetRegistry(NewHeaderRegistry())
	for _, leds := range []int{100, 50, 77} {
		if _, err := d.AddUniverse(leds); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.SetFrameCount(4); err != nil {
		t.Fatal(err)
	}

	// frame bytes = 227*3 = 681, padded to 1024; total = 512 + 4*1024.
	n, _ := writeAndRead(t, d, nil)
	assert.Equal(t, int64(512+4*1024), n)
}

func TestWriteGroupedScenario(t *testing.T) {
	d := New(LayoutGrouped)
	d.SetRegistry(NewHeaderRegistry())
	if _, err := d.AddUniverse(1); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFrameCount(1); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixel(0, 0, 0, 10, 20, 30); err != nil {
		t.Fatal(err)
	}

	n, blob := writeAndRead(t, d, nil)
	assert.Equal(t, int64(1024), n)

	// controllerCount=1, groupSize=8, frame length 24. Universe 0 is port 0
	// of controller 0, so it writes the LAST byte of each 8-byte block:
	// offset 7 = gamma(B), 15 = gamma(G), 23 = gamma(R).
	frame := blob[HeaderSize:]
	assert.Equal(t, gamma.Correct(30), frame[7], "blue plane")
	assert.Equal(t, gamma.Correct(20), frame[15], "green plane")
	assert.Equal(t, gamma.Correct(10), frame[23], "red plane")
	for i := 0; i < 512; i++ {
		if i == 7 || i == 15 || i == 23 {
			continue
		}
		if frame[i] != 0 {
			t.Fatalf("frame byte %d = %#x, want zero", i, frame[i])
		}
	}
}

func TestWriteGroupedMultiController(t *testing.T) {
	d := New(LayoutGrouped)
	d.SetRegistry(NewHeaderRegistry())
	for i := 0; i < 9; i++ {
		if _, err := d.AddUniverse(2); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.SetFrameCount(1); err != nil {
		t.Fatal(err)
	}
	// Universe 8 = controller 1, local port 0 -> byte 8 + 7 = 15 in each group.
	// Universe 7 = controller 0, local port 7 -> byte 0 in each group.
	if err := d.SetPixel(8, 0, 1, 0, 0, 200); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixel(7, 0, 0, 100, 0, 0); err != nil {
		t.Fatal(err)
	}

	_, blob := writeAndRead(t, d, nil)
	frame := blob[HeaderSize:]

	grp := 16 // 8 * 2 controllers
	// LED slot 1, blue plane, universe 8's byte.
	assert.Equal(t, gamma.Correct(200), frame[1*3*grp+15])
	// LED slot 0, red plane, universe 7's byte.
	assert.Equal(t, gamma.Correct(100), frame[2*grp+0])
}

func TestWriteUsesRegisteredHeaderVerbatim(t *testing.T) {
	reg := NewHeaderRegistry()
	registered := testHeader(0xC4)
	registered[16] = 0xAA
	registered[17] = 0xBB
	reg.Register(2, 400, registered, "")

	d := New(LayoutGrouped)
	d.SetRegistry(reg)
	if _, err := d.AddUniverse(400); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddUniverse(400); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFrameCount(1); err != nil {
		t.Fatal(err)
	}

	_, blob := writeAndRead(t, d, nil)
	assert.True(t, bytes.Equal(registered, blob[:HeaderSize]),
		"registered header must be reproduced unmodified")
}

func TestWriteDeterministic(t *testing.T) {
	d := New(LayoutGrouped)
	d.SetRegistry(NewHeaderRegistry())
	if _, err := d.AddUniverse(5); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFrameCount(3); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixel(0, 1, 2, 40, 50, 60); err != nil {
		t.Fatal(err)
	}

	_, first := writeAndRead(t, d, nil)
	_, second := writeAndRead(t, d, nil)
	assert.True(t, bytes.Equal(first, second), "write is a pure function of builder state")
}

func TestWriteSummarySidecar(t *testing.T) {
	d := New(LayoutSequential)
	d.SetRegistry(NewHeaderRegistry())
	if _, err := d.AddUniverse(400); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddUniverse(150); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFrameCount(60); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "show.dat")
	if _, err := d.Write(path, nil); err != nil {
		t.Fatal(err)
	}

	txt, err := os.ReadFile(filepath.Join(dir, "show.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := "Universes: 2\n" +
		"Universe 0: 400 LEDs\n" +
		"Universe 1: 150 LEDs\n" +
		"Frames: 60\n"
	assert.Equal(t, want, string(txt))
}

func TestWriteZeroFramesHeaderOnly(t *testing.T) {
	d := New(LayoutGrouped)
	d.SetRegistry(NewHeaderRegistry())
	if _, err := d.AddUniverse(10); err != nil {
		t.Fatal(err)
	}

	n, blob := writeAndRead(t, d, nil)
	assert.Equal(t, int64(HeaderSize), n)
	assert.Equal(t, HeaderSize, len(blob))
}

func TestWriteTemplateArgumentPrecedence(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "file-template.dat")
	if err := os.WriteFile(tplPath, testHeader(0x11), 0644); err != nil {
		t.Fatal(err)
	}

	d := New(LayoutSequential)
	d.SetRegistry(NewHeaderRegistry())
	d.SetTemplateFile(tplPath)
	if _, err := d.AddUniverse(1); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFrameCount(1); err != nil {
		t.Fatal(err)
	}

	// The explicit write-time template wins over the stored path.
	_, blob := writeAndRead(t, d, testHeader(0x22))
	assert.Equal(t, byte(0x22), blob[0])

	_, blob = writeAndRead(t, d, nil)
	assert.Equal(t, byte(0x11), blob[0], "stored template path used when no argument")
}
