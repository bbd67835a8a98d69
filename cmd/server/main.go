package main

import (
	"log"

	"github.com/runterra/territory-backend/internal/api"
	"github.com/runterra/territory-backend/internal/config"
	"github.com/runterra/territory-backend/internal/database"
	"github.com/runterra/territory-backend/internal/handler"
	"github.com/runterra/territory-backend/internal/hexgrid"
	"github.com/runterra/territory-backend/internal/repository"
	"github.com/runterra/territory-backend/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	indexer := hexgrid.NewH3Indexer()

	runRepo := repository.NewRunRepository(db)
	contribRepo := repository.NewContributionRepository(db)
	ownershipRepo := repository.NewOwnershipRepository(db)

	runService := service.NewRunService(db, runRepo, contribRepo, indexer, cfg.H3Resolution)
	ownershipService := service.NewOwnershipService(db, contribRepo, ownershipRepo, indexer)

	runHandler := handler.NewRunHandler(runService)
	zoneHandler := handler.NewZoneHandler(ownershipService)

	router := api.SetupRouter(cfg, runHandler, zoneHandler)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
