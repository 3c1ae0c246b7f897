package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TalZucker/ab-optix/config"
	"github.com/TalZucker/ab-optix/shell"
)

var (
	GitVersion string
)

var (
	configPath = flag.String("config", "", "path to an optional YAML config file")
	debug      = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	cfg := config.New()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			log.Fatal().Err(err).Msg("could-not-load-config")
		}
	}

	var logger zerolog.Logger
	if *debug || cfg.GetBool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")

	if GitVersion != "" {
		fmt.Println("aboptix", GitVersion)
	}

	sc := shell.NewShellController(cfg)
	sc.Loop()
}
