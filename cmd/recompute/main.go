package main

import (
	"flag"
	"log"

	"github.com/runterra/territory-backend/internal/config"
	"github.com/runterra/territory-backend/internal/database"
	"github.com/runterra/territory-backend/internal/hexgrid"
	"github.com/runterra/territory-backend/internal/repository"
	"github.com/runterra/territory-backend/internal/service"
)

// recompute is the backfill entry point: it rebuilds hex paths and zone
// contributions for finalized runs, and re-resolves ownership for a
// cycle, using the exact same computations the finalize path runs.
func main() {
	runID := flag.String("run", "", "recompute a single run by id")
	cycleKey := flag.String("cycle", "", "re-resolve ownership for a cycle (YYYY-MM-DD, a Monday)")
	limit := flag.Int("limit", 1000, "max finalized runs to recompute with -all")
	all := flag.Bool("all", false, "recompute all finalized runs")
	flag.Parse()

	if *runID == "" && *cycleKey == "" && !*all {
		log.Fatal("nothing to do: pass -run, -cycle or -all")
	}

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

	if *runID != "" {
		if err := runService.RecomputeRun(*runID); err != nil {
			log.Fatalf("Recompute run %s failed: %v", *runID, err)
		}
		log.Printf("Recomputed run %s", *runID)
	}

	if *all {
		count, err := runService.RecomputeFinalized(*limit)
		if err != nil {
			log.Fatalf("Recompute all failed: %v", err)
		}
		log.Printf("Recomputed %d runs", count)
	}

	if *cycleKey != "" {
		owned, err := ownershipService.RecomputeCycle(*cycleKey)
		if err != nil {
			log.Fatalf("Recompute cycle %s failed: %v", *cycleKey, err)
		}
		log.Printf("Cycle %s: %d cells owned", *cycleKey, owned)
	}
}
