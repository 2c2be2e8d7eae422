// ledatgen builds a controller-ready .dat animation file (plus its .txt
// summary) from a yaml rig description and a test pattern.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledatgen/internal/config"
	"github.com/coreman2200/ledatgen/internal/pattern"
)

func main() {
	// ---- Flags (remain usable; rig.yaml can override most) ----
	var (
		configPath  = flag.String("config", "rig.yaml", "path to rig.yaml")
		output      = flag.String("output", "output.dat", "output .dat path")
		frames      = flag.Int("frames", 1, "number of animation frames")
		layoutName  = flag.String("layout", "grouped", "frame layout: grouped | sequential")
		patternName = flag.String("pattern", "markers", "fill pattern: markers | solid | rainbow")
		template    = flag.String("template", "", "known-good .dat file to copy the header from")
		universes   = flag.Int("universes", 2, "universe count when no config file is present")
		leds        = flag.Int("leds", 400, "LEDs per universe when no config file is present")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load rig.yaml (optional) ----
	cfg := &config.Config{}
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg.Layout = *layoutName
		cfg.Output = *output
		cfg.Frames = *frames
		cfg.Pattern = *patternName
		cfg.Template = *template
		for i := 0; i < *universes; i++ {
			cfg.Universes = append(cfg.Universes, config.UniverseCfg{Leds: *leds})
		}
	} else {
		cfg = c
		if cfg.Output == "" {
			cfg.Output = *output
		}
		if cfg.Frames == 0 {
			cfg.Frames = *frames
		}
		if cfg.Pattern == "" {
			cfg.Pattern = *patternName
		}
		if cfg.Template == "" {
			cfg.Template = *template
		}
	}

	d, err := cfg.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rig configuration")
	}
	if err := pattern.Apply(d, cfg.Pattern); err != nil {
		log.Fatal().Err(err).Str("pattern", cfg.Pattern).Msg("pattern fill failed")
	}

	n, err := d.Write(cfg.Output, nil)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Output).Msg("write failed")
	}
	log.Info().
		Str("path", cfg.Output).
		Int64("bytes", n).
		Int("universes", d.NumUniverses()).
		Int("frames", d.NumFrames()).
		Int("controllers", d.ControllerCount()).
		Str("layout", d.Mode().String()).
		Msg("dat file written")
}
