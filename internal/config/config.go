// Package config loads and saves the yaml rig description consumed by the
// ledatgen tools.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ledatgen/internal/datfile"
)

// UniverseCfg describes one LED string attached to a controller port.
type UniverseCfg struct {
	Leds int `yaml:"leds"`
}

// HeaderCfg registers a known-working header captured from an existing file.
type HeaderCfg struct {
	File           string `yaml:"file"`
	Slaves         int    `yaml:"slaves"`
	PixelsPerSlave int    `yaml:"pixels_per_slave"`
	ICType         string `yaml:"ic_type,omitempty"` // defaults to QED3110
}

// ServeCfg configures the static server for the browser front end.
type ServeCfg struct {
	Addr string `yaml:"addr,omitempty"` // e.g. :8080
	Dir  string `yaml:"dir,omitempty"`
}

// Config is the full rig description.
type Config struct {
	Layout   string `yaml:"layout"` // "grouped" | "sequential"
	Template string `yaml:"template,omitempty"`
	Output   string `yaml:"output"`
	Frames   int    `yaml:"frames"`
	FPS      int    `yaml:"fps,omitempty"`
	Pattern  string `yaml:"pattern,omitempty"` // "markers" | "solid" | "rainbow"
	SPIDev   string `yaml:"spi_dev,omitempty"` // preview output, e.g. /dev/spidev0.0

	Universes []UniverseCfg `yaml:"universes"`
	Headers   []HeaderCfg   `yaml:"headers,omitempty"`
	Serve     ServeCfg      `yaml:"serve,omitempty"`
}

// Load reads and parses a rig config.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes a rig config back out.
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// LayoutMode maps the yaml layout name onto a datfile layout.
func (c *Config) LayoutMode() (datfile.LayoutMode, error) {
	switch c.Layout {
	case "", "grouped":
		return datfile.LayoutGrouped, nil
	case "sequential":
		return datfile.LayoutSequential, nil
	default:
		return 0, fmt.Errorf("unknown layout %q (want grouped or sequential)", c.Layout)
	}
}

// Build constructs a DATFile from the config: layout mode, template file,
// universes in listed order, frame count, and any header registrations.
func (c *Config) Build() (*datfile.DATFile, error) {
	mode, err := c.LayoutMode()
	if err != nil {
		return nil, err
	}
	d := datfile.New(mode)
	if c.Template != "" {
		d.SetTemplateFile(c.Template)
	}
	for i, u := range c.Universes {
		if _, err := d.AddUniverse(u.Leds); err != nil {
			return nil, fmt.Errorf("universe %d: %w", i, err)
		}
	}
	if c.Frames != 0 {
		if err := d.SetFrameCount(c.Frames); err != nil {
			return nil, err
		}
	}
	for _, h := range c.Headers {
		if _, err := datfile.LoadHeaderFromFile(h.File, h.Slaves, h.PixelsPerSlave, h.ICType); err != nil {
			return nil, err
		}
	}
	return d, nil
}
