package main

import (
	"fmt"
	"os"

	"github.com/gestgov/contratos-service/internal/auth"
	"github.com/gestgov/contratos-service/internal/config"
	"github.com/gestgov/contratos-service/internal/db"
	"github.com/gestgov/contratos-service/internal/excel"
	httphandler "github.com/gestgov/contratos-service/internal/http"
	"github.com/gestgov/contratos-service/internal/http/middleware"
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

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contratoService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contratos service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
