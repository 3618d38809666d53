package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "probe":
		return probeTemplate, nil
	case "daemon":
		return daemonTemplate, nil
	case "remote":
		return remoteTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const probeTemplate = `addr = "localhost:8730"
local_max_version = 30
connect_timeout = "5s"
handshake_timeout = "5s"
log_level = "info"
`

const daemonTemplate = `name = "syncwired"
addr = ":8730"
admin_addr = ":9730"
cors_origins = ["http://localhost:3000"]
local_max_version = 30
handshake_timeout = "10s"
compat_descriptor = ""
log_level = "info"
`

const remoteTemplate = `addr = "backup.example.net:22"
user = "sync"
key_file = "~/.ssh/id_ed25519"
known_hosts_file = "~/.ssh/known_hosts"
remote_command = "rsync --server --sender ."
local_max_version = 30
connect_timeout = "10s"
handshake_timeout = "10s"
log_level = "info"
`
