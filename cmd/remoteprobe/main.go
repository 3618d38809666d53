package main

import (
	"flag"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/danmuck/syncwire/internal/config"
	"github.com/danmuck/syncwire/internal/handshake"
	"github.com/danmuck/syncwire/internal/observability"
)

// remoteprobe tunnels the binary handshake through an SSH session running
// the remote server command, the way the deployed fleet is usually reached.
func main() {
	observability.InitLogger("remoteprobe")
	configPath := flag.String("config", "cmd/remoteprobe/config.toml", "remote probe config path")
	flag.Parse()

	cfg, err := config.LoadRemoteConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load remote config")
	}
	observability.SetLevel(cfg.LogLevel)

	key, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.KeyFile).Msg("failed to read private key")
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse private key")
	}
	hostKeys, err := knownhosts.New(cfg.KnownHostsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.KnownHostsFile).Msg("failed to load known hosts")
	}

	client, err := ssh.Dial("tcp", cfg.Addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         cfg.ConnectTimeout.Duration,
	})
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("ssh dial failed")
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		log.Fatal().Err(err).Msg("ssh session failed")
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		log.Fatal().Err(err).Msg("stdin pipe failed")
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		log.Fatal().Err(err).Msg("stdout pipe failed")
	}
	if err := session.Start(cfg.RemoteCommand); err != nil {
		log.Fatal().Err(err).Str("command", cfg.RemoteCommand).Msg("remote command failed")
	}

	// A stalled remote is cut off by tearing the session down.
	timer := time.AfterFunc(cfg.HandshakeTimeout.Duration, func() {
		log.Warn().Msg("handshake timeout, closing session")
		session.Close()
	})
	defer timer.Stop()

	start := time.Now()
	sess, err := handshake.Negotiate(struct {
		io.Reader
		io.Writer
	}{stdout, stdin}, handshake.Options{
		Role:      handshake.RoleInitiator,
		Transport: handshake.TransportInBand,
		LocalMax:  cfg.LocalMaxVersion,
	})
	if err != nil {
		observability.RecordHandshake("initiator", "inband", "error", "", time.Since(start))
		log.Fatal().Err(err).Msg("handshake failed")
	}
	observability.RecordHandshake("initiator", "inband", "ok",
		strconv.Itoa(int(sess.Version.Major)), time.Since(start))

	log.Info().
		Str("addr", cfg.Addr).
		Str("command", cfg.RemoteCommand).
		Int32("version", sess.Version.Major).
		Str("flags", sess.Flags.String()).
		Msg("session negotiated over ssh")
}
