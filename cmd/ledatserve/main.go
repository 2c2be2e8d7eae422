// ledatserve serves the encoder's output directory to the browser front
// end, with no-cache headers and a /ws change feed for live reload.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledatgen/internal/config"
	"github.com/coreman2200/ledatgen/internal/server"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		dir        = flag.String("dir", ".", "directory to serve")
		configPath = flag.String("config", "rig.yaml", "path to rig.yaml")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// rig.yaml overrides flags where filled in
	eAddr, eDir := *addr, *dir
	if cfg, err := config.Load(*configPath); err == nil {
		if cfg.Serve.Addr != "" {
			eAddr = cfg.Serve.Addr
		}
		if cfg.Serve.Dir != "" {
			eDir = cfg.Serve.Dir
		}
	}

	s := server.New(eDir)
	srv := &http.Server{
		Addr:         eAddr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go s.WatchChanges(time.Second, done)
	go func() {
		log.Info().Str("addr", eAddr).Str("dir", eDir).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	close(done)
	_ = srv.Close()
}
