package main

import (
	"flag"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/syncwire/internal/config"
	"github.com/danmuck/syncwire/internal/handshake"
	"github.com/danmuck/syncwire/internal/observability"
)

func main() {
	observability.InitLogger("syncprobe")
	configPath := flag.String("config", "cmd/syncprobe/config.toml", "probe config path")
	addr := flag.String("addr", "", "daemon address, overrides config")
	flag.Parse()

	cfg, err := config.LoadProbeConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load probe config")
	}
	observability.SetLevel(cfg.LogLevel)
	if *addr != "" {
		cfg.Addr = *addr
	}

	conn, err := net.DialTimeout("tcp", cfg.Addr, cfg.ConnectTimeout.Duration)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("dial failed")
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(cfg.HandshakeTimeout.Duration))

	start := time.Now()
	sess, err := handshake.Negotiate(conn, handshake.Options{
		Role:      handshake.RoleInitiator,
		Transport: handshake.TransportDaemon,
		LocalMax:  cfg.LocalMaxVersion,
	})
	if err != nil {
		observability.RecordHandshake("initiator", "daemon", "error", "", time.Since(start))
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("handshake failed")
	}
	observability.RecordHandshake("initiator", "daemon", "ok",
		strconv.Itoa(int(sess.Version.Major)), time.Since(start))

	log.Info().
		Str("addr", cfg.Addr).
		Int32("version", sess.Version.Major).
		Str("flags", sess.Flags.String()).
		Dur("took", time.Since(start)).
		Msg("session negotiated")
}
