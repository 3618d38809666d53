package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/syncwire/internal/config"
	"github.com/danmuck/syncwire/internal/daemon"
	"github.com/danmuck/syncwire/internal/observability"
)

func main() {
	observability.InitLogger("syncwired")
	configPath := flag.String("config", "cmd/syncwired/config.toml", "daemon config path")
	flag.Parse()

	cfg, err := config.LoadDaemonConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load daemon config")
	}
	observability.SetLevel(cfg.LogLevel)
	log.Info().Str("path", *configPath).Msg("loaded daemon config")

	srv := daemon.New(cfg)
	if err := srv.Listen(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("listen failed")
	}

	if cfg.AdminAddr != "" {
		go func() {
			if err := srv.ServeAdmin(); err != nil {
				log.Fatal().Err(err).Str("addr", cfg.AdminAddr).Msg("admin endpoint stopped")
			}
		}()
		log.Info().Str("addr", cfg.AdminAddr).Msg("admin endpoint started")
	}

	if err := srv.Serve(); err != nil {
		log.Fatal().Err(err).Msg("daemon stopped")
	}
}
