// status-refresh recomputes the lifecycle status of every non-closed
// contract. It is a one-shot job meant to run from an external scheduler
// (daily cron); it does not schedule itself.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gestgov/contratos-service/internal/config"
	"github.com/gestgov/contratos-service/internal/db"
	"github.com/gestgov/contratos-service/internal/excel"
	"github.com/gestgov/contratos-service/internal/logger"
	"github.com/gestgov/contratos-service/internal/pdf"
	"github.com/gestgov/contratos-service/internal/repository"
	"github.com/gestgov/contratos-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contratoRepo := repository.NewContratoRepository(database)
	contratoService := service.NewContratoService(contratoRepo, excel.NewGenerator(), pdf.NewGenerator(), cfg)

	atualizados, err := contratoService.AtualizarStatusPorData(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("status refresh failed")
	}
	log.Info().Int("atualizados", atualizados).Msg("contract statuses refreshed")
}
