// Command scrollreeld runs the scrollreel daemon in the foreground.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"scrollreel/internal/config"
	"scrollreel/internal/daemonrun"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel: *logLevel,
		Version:  version,
	}); err != nil {
		log.Fatalf("scrollreeld: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, _, _, err := config.Load(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}
