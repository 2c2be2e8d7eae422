package datfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultICType is the pixel IC assumed when a registration does not name one.
const DefaultICType = "QED3110"

// headerMagic is the "HC" signature at offset 0 of a synthesized header.
var headerMagic = [4]byte{0x00, 0x00, 0x48, 0x43}

// Vendor blocks captured from LEDBuild-generated files. Opaque to us; the
// hardware rejects files without them.
var (
	vendorConfig = [12]byte{
		0x40, 0x40, 0x0A, 0x60, 0x40, 0x4A, 0x0A, 0x60,
		0x04, 0x08, 0x50, 0x32,
	}
	vendorCalibration = [52]byte{
		0xB3, 0x2F, 0x76, 0x45, 0x28, 0x02, 0x83, 0xAC,
		0xE3, 0x00, 0x04, 0xDF, 0x67, 0x43, 0x11, 0x40,
		0x08, 0xA0, 0xAF, 0xAF, 0xF5, 0xE9, 0xB4, 0xFB,
		0x15, 0x55, 0xB1, 0xAF, 0x7C, 0x45, 0x32, 0x22,
		0x85, 0xEC, 0xEC, 0x20, 0x0B, 0x9F, 0x7C, 0x03,
		0x17, 0x40, 0x0E, 0xE0, 0xB9, 0x8F, 0x83, 0x31,
		0x52, 0x70, 0x50, 0x55,
	}
)

// HeaderKey identifies a registered header by the rig configuration it was
// captured from.
type HeaderKey struct {
	SlaveCount     int
	PixelsPerSlave int
	ICType         string
}

type headerEntry struct {
	key    HeaderKey
	header [HeaderSize]byte
}

// HeaderRegistry stores known-working 512-byte headers keyed by rig
// configuration. Entries are kept in registration order; lookups scan in
// that order and match on slave count alone, so of two registrations with
// the same slave count the earlier one wins. That matching rule is part of
// the format contract, not an accident.
//
// Safe for concurrent use.
type HeaderRegistry struct {
	mu      sync.Mutex
	entries []headerEntry
}

// NewHeaderRegistry returns an empty registry.
func NewHeaderRegistry() *HeaderRegistry {
	return &HeaderRegistry{}
}

// defaultRegistry backs the package-level registration helpers, mirroring
// the process-wide registry of earlier tooling. Builders may swap in their
// own via SetRegistry.
var defaultRegistry = NewHeaderRegistry()

// DefaultRegistry returns the shared process-wide registry.
func DefaultRegistry() *HeaderRegistry {
	return defaultRegistry
}

// Register stores a known-working header for a configuration. The header is
// kept at exactly 512 bytes: longer input is truncated, shorter input is
// zero-padded. An empty icType means DefaultICType. Re-registering a key
// overwrites the bytes but keeps the original position in lookup order.
func (r *HeaderRegistry) Register(slaveCount, pixelsPerSlave int, header []byte, icType string) {
	if icType == "" {
		icType = DefaultICType
	}
	key := HeaderKey{SlaveCount: slaveCount, PixelsPerSlave: pixelsPerSlave, ICType: icType}

	var e headerEntry
	e.key = key
	copy(e.header[:], header)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].key == key {
			r.entries[i].header = e.header
			return
		}
	}
	r.entries = append(r.entries, e)
}

// LoadHeaderFromFile reads the first 512 bytes of an existing DAT file,
// registers them for the given configuration, and returns them. A short
// read is reported as an I/O failure.
func (r *HeaderRegistry) LoadHeaderFromFile(path string, slaveCount, pixelsPerSlave int, icType string) ([]byte, error) {
	header, err := readHeaderBytes(path)
	if err != nil {
		return nil, err
	}
	r.Register(slaveCount, pixelsPerSlave, header, icType)
	return header, nil
}

// lookup returns the first registered header whose slave count matches.
func (r *HeaderRegistry) lookup(slaveCount int) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].key.SlaveCount == slaveCount {
			out := make([]byte, HeaderSize)
			copy(out, r.entries[i].header[:])
			return out, true
		}
	}
	return nil, false
}

// Len reports the number of registered headers.
func (r *HeaderRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// RegisterHeader registers a header with the shared process-wide registry.
func RegisterHeader(slaveCount, pixelsPerSlave int, header []byte, icType string) {
	defaultRegistry.Register(slaveCount, pixelsPerSlave, header, icType)
}

// LoadHeaderFromFile loads and registers a header with the shared registry.
func LoadHeaderFromFile(path string, slaveCount, pixelsPerSlave int, icType string) ([]byte, error) {
	return defaultRegistry.LoadHeaderFromFile(path, slaveCount, pixelsPerSlave, icType)
}

func readHeaderBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open header source: %w", err)
	}
	defer f.Close()

	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("read header from %s: %w", path, err)
	}
	return header, nil
}

// resolveHeader produces the 512 header bytes for a write. Resolution order:
//
//  1. Template bytes — the explicit argument when it carries at least 512
//     bytes, else the template file set at construction. The controller
//     count is patched into bytes 16..17 (uint16 little-endian).
//  2. First registry entry matching the current universe count, returned
//     byte-for-byte.
//  3. Synthesized default: magic, vendor config, controller count, vendor
//     calibration, zeros.
func (d *DATFile) resolveHeader(template []byte) ([]byte, error) {
	if len(template) < HeaderSize && d.templateFile != "" {
		b, err := readHeaderBytes(d.templateFile)
		if err != nil {
			return nil, err
		}
		template = b
	}

	ctrl := uint16(d.ControllerCount())

	if len(template) >= HeaderSize {
		header := make([]byte, HeaderSize)
		copy(header, template)
		binary.LittleEndian.PutUint16(header[16:18], ctrl)
		return header, nil
	}

	if header, ok := d.reg().lookup(d.NumUniverses()); ok {
		return header, nil
	}

	header := make([]byte, HeaderSize)
	copy(header[0:4], headerMagic[:])
	copy(header[4:16], vendorConfig[:])
	binary.LittleEndian.PutUint16(header[16:18], ctrl)
	copy(header[18:70], vendorCalibration[:])
	return header, nil
}
