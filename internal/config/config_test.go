package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadProbeConfigAppliesDefaults(t *testing.T) {
	path := writeFile(t, "probe.toml", "addr = \"localhost:8730\"\n")
	cfg, err := LoadProbeConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConnectTimeout.Duration != 5*time.Second {
		t.Fatalf("connect timeout default %v", cfg.ConnectTimeout.Duration)
	}
	if cfg.HandshakeTimeout.Duration != 5*time.Second {
		t.Fatalf("handshake timeout default %v", cfg.HandshakeTimeout.Duration)
	}
}

func TestLoadProbeConfigParsesDurations(t *testing.T) {
	path := writeFile(t, "probe.toml",
		"addr = \"localhost:8730\"\nconnect_timeout = \"250ms\"\nhandshake_timeout = \"2s\"\n")
	cfg, err := LoadProbeConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConnectTimeout.Duration != 250*time.Millisecond {
		t.Fatalf("connect timeout %v", cfg.ConnectTimeout.Duration)
	}
	if cfg.HandshakeTimeout.Duration != 2*time.Second {
		t.Fatalf("handshake timeout %v", cfg.HandshakeTimeout.Duration)
	}
}

func TestLoadProbeConfigRejectsMissingAddr(t *testing.T) {
	path := writeFile(t, "probe.toml", "log_level = \"debug\"\n")
	if _, err := LoadProbeConfig(path); err == nil {
		t.Fatal("expected error for missing addr")
	}
}

func TestLoadDaemonConfigRejectsBadVersionCap(t *testing.T) {
	path := writeFile(t, "daemon.toml",
		"name = \"d\"\naddr = \":8730\"\nlocal_max_version = 26\n")
	if _, err := LoadDaemonConfig(path); err == nil {
		t.Fatal("expected error for out-of-range version cap")
	}
}

func TestLoadDaemonConfigRejectsBadDescriptorAtStartup(t *testing.T) {
	path := writeFile(t, "daemon.toml",
		"name = \"d\"\naddr = \":8730\"\ncompat_descriptor = \"i f\"\n")
	if _, err := LoadDaemonConfig(path); err == nil {
		t.Fatal("expected error for malformed descriptor")
	}
}

func TestLoadRemoteConfigRequiresSSHFields(t *testing.T) {
	path := writeFile(t, "remote.toml", "addr = \"host:22\"\nuser = \"sync\"\n")
	if _, err := LoadRemoteConfig(path); err == nil {
		t.Fatal("expected error for missing key_file")
	}
}

func TestTemplatesRoundTripThroughLoaders(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		kind string
		load func(string) error
	}{
		{"probe", func(p string) error { _, err := LoadProbeConfig(p); return err }},
		{"daemon", func(p string) error { _, err := LoadDaemonConfig(p); return err }},
		{"remote", func(p string) error { _, err := LoadRemoteConfig(p); return err }},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, tc.kind+".toml")
		if err := WriteTemplate(path, tc.kind, false); err != nil {
			t.Fatalf("%s: write template: %v", tc.kind, err)
		}
		if err := tc.load(path); err != nil {
			t.Fatalf("%s: template does not load: %v", tc.kind, err)
		}
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	path := writeFile(t, "probe.toml", "addr = \"x\"\n")
	if err := WriteTemplate(path, "probe", false); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if err := WriteTemplate(path, "probe", true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}
