package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/bazaar-shop/marketplace/internal/migrate"
	"github.com/bazaar-shop/marketplace/pkg/config"
	"github.com/bazaar-shop/marketplace/pkg/logger"
)

func main() {
	timeout := flag.Duration("timeout", time.Minute, "overall migration timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] up|down|status\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}
	switch cmd {
	case "up":
		err = migrate.Up(ctx, cfg.DatabaseURL)
	case "down":
		err = migrate.Down(ctx, cfg.DatabaseURL)
	case "status":
		err = migrate.Status(ctx, cfg.DatabaseURL)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("command", cmd), zap.Error(err))
	}
	log.Info("migrations completed", zap.String("command", cmd))
}
