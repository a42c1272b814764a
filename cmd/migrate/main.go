// migrate aplica o revierte las migraciones SQL embebidas.
//
// Uso: go run ./cmd/migrate [up|down|version]
package main

import (
	"fmt"
	"os"

	"github.com/tienda-pos/backoffice-api/internal/infrastructure/postgres"
	"github.com/tienda-pos/backoffice-api/pkg/config"
	"github.com/tienda-pos/backoffice-api/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("migrador")
	}
	defer migrator.Close()

	switch cmd {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = migrator.Version()
		if err == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión actual")
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración")
	}
}
