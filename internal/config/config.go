package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/syncwire/internal/handshake"
)

// Duration is a TOML-friendly time.Duration ("5s", "250ms").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// ProbeConfig drives the initiator-side probes.
type ProbeConfig struct {
	Addr             string   `toml:"addr"`
	LocalMaxVersion  int32    `toml:"local_max_version"`
	ConnectTimeout   Duration `toml:"connect_timeout"`
	HandshakeTimeout Duration `toml:"handshake_timeout"`
	LogLevel         string   `toml:"log_level"`
}

// DaemonConfig drives the responder daemon.
type DaemonConfig struct {
	Name             string   `toml:"name"`
	Addr             string   `toml:"addr"`
	AdminAddr        string   `toml:"admin_addr"`
	CorsOrigins      []string `toml:"cors_origins"`
	LocalMaxVersion  int32    `toml:"local_max_version"`
	HandshakeTimeout Duration `toml:"handshake_timeout"`
	CompatDescriptor string   `toml:"compat_descriptor"`
	LogLevel         string   `toml:"log_level"`
}

// RemoteConfig drives the SSH in-band probe.
type RemoteConfig struct {
	Addr             string   `toml:"addr"`
	User             string   `toml:"user"`
	KeyFile          string   `toml:"key_file"`
	KnownHostsFile   string   `toml:"known_hosts_file"`
	RemoteCommand    string   `toml:"remote_command"`
	LocalMaxVersion  int32    `toml:"local_max_version"`
	ConnectTimeout   Duration `toml:"connect_timeout"`
	HandshakeTimeout Duration `toml:"handshake_timeout"`
	LogLevel         string   `toml:"log_level"`
}

func LoadProbeConfig(path string) (ProbeConfig, error) {
	var cfg ProbeConfig
	if err := loadToml(path, &cfg); err != nil {
		return ProbeConfig{}, err
	}
	if cfg.ConnectTimeout.Duration == 0 {
		cfg.ConnectTimeout.Duration = 5 * time.Second
	}
	if cfg.HandshakeTimeout.Duration == 0 {
		cfg.HandshakeTimeout.Duration = 5 * time.Second
	}
	if err := ValidateProbeConfig(cfg); err != nil {
		return ProbeConfig{}, err
	}
	return cfg, nil
}

func LoadDaemonConfig(path string) (DaemonConfig, error) {
	var cfg DaemonConfig
	if err := loadToml(path, &cfg); err != nil {
		return DaemonConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = "syncwired"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8730"
	}
	if cfg.HandshakeTimeout.Duration == 0 {
		cfg.HandshakeTimeout.Duration = 10 * time.Second
	}
	if err := ValidateDaemonConfig(cfg); err != nil {
		return DaemonConfig{}, err
	}
	return cfg, nil
}

func LoadRemoteConfig(path string) (RemoteConfig, error) {
	var cfg RemoteConfig
	if err := loadToml(path, &cfg); err != nil {
		return RemoteConfig{}, err
	}
	if cfg.RemoteCommand == "" {
		cfg.RemoteCommand = "rsync --server --sender ."
	}
	if cfg.ConnectTimeout.Duration == 0 {
		cfg.ConnectTimeout.Duration = 10 * time.Second
	}
	if cfg.HandshakeTimeout.Duration == 0 {
		cfg.HandshakeTimeout.Duration = 10 * time.Second
	}
	if err := ValidateRemoteConfig(cfg); err != nil {
		return RemoteConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateProbeConfig(cfg ProbeConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("probe config missing addr")
	}
	return validateVersionCap(cfg.LocalMaxVersion)
}

func ValidateDaemonConfig(cfg DaemonConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("daemon config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("daemon config missing addr")
	}
	if err := validateVersionCap(cfg.LocalMaxVersion); err != nil {
		return err
	}
	// Fail at startup, not at the first connection.
	if _, err := handshake.NegotiateCompat(handshake.MaxProtocolVersion, cfg.CompatDescriptor); err != nil {
		return fmt.Errorf("daemon config compat_descriptor: %w", err)
	}
	return nil
}

func ValidateRemoteConfig(cfg RemoteConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("remote config missing addr")
	}
	if strings.TrimSpace(cfg.User) == "" {
		return fmt.Errorf("remote config missing user")
	}
	if strings.TrimSpace(cfg.KeyFile) == "" {
		return fmt.Errorf("remote config missing key_file")
	}
	if strings.TrimSpace(cfg.KnownHostsFile) == "" {
		return fmt.Errorf("remote config missing known_hosts_file")
	}
	return validateVersionCap(cfg.LocalMaxVersion)
}

func validateVersionCap(v int32) error {
	if v == 0 {
		return nil
	}
	if v < handshake.MinProtocolVersion || v > handshake.MaxProtocolVersion {
		return fmt.Errorf("local_max_version %d outside supported range %d..%d",
			v, handshake.MinProtocolVersion, handshake.MaxProtocolVersion)
	}
	return nil
}
