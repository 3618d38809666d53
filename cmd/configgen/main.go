package main

import (
	"flag"
	"log"

	"github.com/danmuck/syncwire/internal/config"
)

func main() {
	kind := flag.String("kind", "daemon", "config kind: probe|daemon|remote")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}

		var err error
		switch *kind {
		case "probe":
			_, err = config.LoadProbeConfig(path)
		case "daemon":
			_, err = config.LoadDaemonConfig(path)
		case "remote":
			_, err = config.LoadRemoteConfig(path)
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}

func defaultPath(kind string) string {
	switch kind {
	case "probe":
		return "cmd/syncprobe/config.toml"
	case "daemon":
		return "cmd/syncwired/config.toml"
	case "remote":
		return "cmd/remoteprobe/config.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}
