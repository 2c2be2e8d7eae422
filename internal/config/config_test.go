package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/ledatgen/internal/datfile"
)

func TestRoundTrip(t *testing.T) {
	cfg := &Config{
		Layout:  "sequential",
		Output:  "show.dat",
		Frames:  60,
		FPS:     30,
		Pattern: "rainbow",
		Universes: []UniverseCfg{
			{Leds: 400},
			{Leds: 150},
		},
		Serve: ServeCfg{Addr: ":9090", Dir: "out"},
	}

	path := filepath.Join(t.TempDir(), "rig.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, cfg, got)
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestLayoutMode(t *testing.T) {
	cases := []struct {
		name string
		mode datfile.LayoutMode
		ok   bool
	}{
		{"", datfile.LayoutGrouped, true},
		{"grouped", datfile.LayoutGrouped, true},
		{"sequential", datfile.LayoutSequential, true},
		{"diagonal", 0, false},
	}
	for _, c := range cases {
		cfg := &Config{Layout: c.name}
		mode, err := cfg.LayoutMode()
		if c.ok {
			if err != nil {
				t.Fatalf("layout %q: %v", c.name, err)
			}
			assert.Equal(t, c.mode, mode)
		} else if err == nil {
			t.Fatalf("layout %q: expected error", c.name)
		}
	}
}

func TestBuild(t *testing.T) {
	cfg := &Config{
		Layout: "grouped",
		Frames: 10,
		Universes: []UniverseCfg{
			{Leds: 400},
			{Leds: 400},
			{Leds: 200},
		},
	}
	d, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, d.NumUniverses())
	assert.Equal(t, 10, d.NumFrames())
	assert.Equal(t, datfile.LayoutGrouped, d.Mode())

	leds, err := d.UniverseLeds(2)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 200, leds)
}

func TestBuildRejectsBadUniverse(t *testing.T) {
	cfg := &Config{Universes: []UniverseCfg{{Leds: 0}}}
	if _, err := cfg.Build(); err == nil {
		t.Fatal("expected error for zero-LED universe")
	}
}
