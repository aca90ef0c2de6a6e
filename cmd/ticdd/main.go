package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/ticd/internal/config"
	"github.com/danmuck/ticd/internal/logging"
	"github.com/danmuck/ticd/internal/node"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a ticd TOML config (defaults apply when empty)")
	initConfig := flag.String("init-config", "", "write a config template to this path and exit")
	force := flag.Bool("force", false, "overwrite an existing template")
	flag.Parse()

	if *initConfig != "" {
		if err := config.WriteTemplate(*initConfig, *force); err != nil {
			fmt.Fprintf(os.Stderr, "ticdd: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote config template to %s\n", *initConfig)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ticdd: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Configure(logging.ProfileRuntime, func(c *logging.Config) {
		*c = cfg.Logging()
	})

	gin.SetMode(gin.ReleaseMode)
	svc, err := node.NewService(cfg, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ticdd: build node")
	}
	if err := svc.Run(); err != nil {
		logger.Fatal().Err(err).Msg("ticdd: run")
	}
}

func loadConfig(path string) (config.NodeConfig, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}
