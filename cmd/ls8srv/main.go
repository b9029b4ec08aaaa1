// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/ezrec/ls8/api"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/internal"
)

func main() {
	var listen string
	var maxTicks int
	var verbose bool

	flag.StringVar(&listen, "l", ":8080", "Listen address")
	flag.IntVar(&maxTicks, "m", emulator.DEFAULT_MAX_TICKS, "Tick budget per request")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("Unknown arguments: %v", flag.Args())
	}

	logger := zap.Must(zap.NewProduction())
	if verbose {
		var err error
		logger, err = internal.NewLogger(verbose)
		if err != nil {
			log.Fatal(err)
		}
	}
	defer logger.Sync()

	server, err := api.NewServer(api.ServerConfig{
		ListenerAddr: listen,
		Logger:       logger,
		MaxTicks:     maxTicks,
	})
	if err != nil {
		log.Fatal(err)
	}

	err = server.Start()
	if err != nil {
		logger.Fatal("api server stopped", zap.Error(err))
	}
}
