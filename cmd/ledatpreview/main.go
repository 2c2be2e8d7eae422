// ledatpreview plays the configured animation on an attached LED string
// over SPI (console fallback) so wiring can be checked before burning the
// .dat file to an SD card.
package main

import (
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledatgen/internal/config"
	"github.com/coreman2200/ledatgen/internal/pattern"
	"github.com/coreman2200/ledatgen/internal/preview"
)

const defaultFPS = 30

func main() {
	var (
		configPath = flag.String("config", "rig.yaml", "path to rig.yaml")
		fps        = flag.Int("fps", defaultFPS, "playback frames per second")
		spiDev     = flag.String("spi", "", "SPI port name (empty picks the first available)")
		loop       = flag.Bool("loop", true, "restart from frame 0 at the end")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}
	eFPS, eDev := *fps, *spiDev
	if cfg.FPS > 0 {
		eFPS = cfg.FPS
	}
	if cfg.SPIDev != "" {
		eDev = cfg.SPIDev
	}

	d, err := cfg.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rig configuration")
	}
	if err := pattern.Apply(d, cfg.Pattern); err != nil {
		log.Fatal().Err(err).Msg("pattern fill failed")
	}
	if d.NumFrames() == 0 {
		log.Fatal().Msg("nothing to preview: frame count is zero")
	}

	r, err := preview.Init(d.TotalPixels(), eDev)
	if err != nil {
		log.Fatal().Err(err).Msg("preview init failed")
	}
	defer r.Halt()

	log.Info().
		Int("frames", d.NumFrames()).
		Int("fps", eFPS).
		Bool("spi", r.SPI).
		Msg("preview starting")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	ticker := time.NewTicker(time.Second / time.Duration(eFPS))
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-ticker.C:
			if err := r.Frame(d, frame); err != nil {
				log.Fatal().Err(err).Int("frame", frame).Msg("draw failed")
			}
			frame++
			if frame >= d.NumFrames() {
				if !*loop {
					return
				}
				frame = 0
			}
		case sig := <-c:
			log.Info().Str("signal", sig.String()).Msg("aborting")
			return
		}
	}
}
