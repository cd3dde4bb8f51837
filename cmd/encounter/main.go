// Package main runs encounter scenarios: each scenario's combatants converge on its target under the zone and
// roster rules until the tick limit or a termination signal.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/config"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/scenario"
	"github.com/cory-johannsen/gauntlet/internal/observability"
	"github.com/cory-johannsen/gauntlet/internal/server"
	"github.com/cory-johannsen/gauntlet/internal/simulation"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenariosDir := flag.String("scenarios", "content/scenarios", "path to scenario YAML files directory")
	only := flag.String("scenario", "", "run only the scenario with this id; empty runs all")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, meter, err := observability.Setup(cfg, "encounter")
	if err != nil {
		log.Fatalf("initializing observability: %v", err)
	}
	defer logger.Sync()

	scenarios, err := scenario.LoadDir(*scenariosDir)
	if err != nil {
		logger.Fatal("loading scenarios", zap.Error(err))
	}
	if *only != "" {
		scenarios = slices.DeleteFunc(scenarios, func(s *scenario.Scenario) bool { return s.ID != *only })
		if len(scenarios) == 0 {
			logger.Fatal("scenario not found", zap.String("scenario", *only), zap.String("dir", *scenariosDir))
		}
	}
	logger.Info("scenarios loaded", zap.Int("count", len(scenarios)))

	engine := combat.NewEngine()
	lifecycle := server.NewLifecycle(logger)
	runners := make([]*simulation.Runner, 0, len(scenarios))
	for _, sc := range scenarios {
		r, err := simulation.New(cfg, sc, meter, logger)
		if err != nil {
			logger.Fatal("building scenario", zap.String("scenario", sc.ID), zap.Error(err))
		}
		if err := engine.Start(r.Encounter()); err != nil {
			logger.Fatal("starting encounter", zap.String("scenario", sc.ID), zap.Error(err))
		}
		runners = append(runners, r)
		lifecycle.Add(sc.ID, &server.FuncService{StartFn: r.Run})
	}

	logger.Info("encounters ready",
		zap.Strings("encounters", engine.IDs()),
		zap.Duration("startup", time.Since(start)),
	)

	runErr := lifecycle.Run(context.Background())

	for _, r := range runners {
		sum := r.Summary()
		logger.Info("encounter summary",
			zap.String("scenario", sum.Scenario),
			zap.Int("steps", sum.Steps),
			zap.Duration("elapsed", sum.Elapsed),
			zap.Int("active", sum.Active),
			zap.Int("passive", sum.Passive),
			zap.Int("unassigned", sum.Unassigned),
			zap.Int("occupied_zones", sum.OccupiedZones),
			zap.Int("swings", sum.SwingsStarted),
			zap.Int("hits", sum.Hits),
			zap.Float64("target_damage", sum.TargetDamage),
			zap.Float64("target_health", sum.TargetHealth),
		)
		engine.End(sum.Scenario)
	}

	if runErr != nil {
		logger.Error("encounter run failed", zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}
}
