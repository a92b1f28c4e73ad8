package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cppla/deltatracker/achievements"
	"github.com/cppla/deltatracker/analytics"
	"github.com/cppla/deltatracker/config"
	"github.com/cppla/deltatracker/models"
	"github.com/cppla/deltatracker/quotes"
	"github.com/cppla/deltatracker/routes"
	"github.com/cppla/deltatracker/store"
	"github.com/cppla/deltatracker/utils"
	"github.com/cppla/deltatracker/workers"
)

func main() {
	hashKey := flag.String("hash-key", "", "print the bcrypt hash for an access key and exit")
	quoteLang := flag.String("lang", "en", "language of the built-in quotes (en|ru)")
	flag.Parse()

	if *hashKey != "" {
		hash, err := utils.HashAccessKey(*hashKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)
	st := store.NewGormStore(db)
	loc := cfg.Location()

	hub := achievements.NewHub(cfg.NotifyBuffer, utils.Logger.Named("hub"))
	engine := achievements.NewEngine(st,
		achievements.WithLocation(loc),
		achievements.WithLogger(utils.Logger.Named("achievements")),
		achievements.WithNotifier(hub),
	)
	if err := engine.Restore(context.Background()); err != nil {
		utils.Sugar.Fatalf("restore achievement engine: %v", err)
	}

	pool, err := quotes.Load(cfg.QuotesPath, *quoteLang)
	if err != nil {
		utils.Sugar.Fatalf("load quotes: %v", err)
	}

	r := routes.SetupRouter(routes.Deps{
		Engine: engine,
		Stats:  analytics.NewAggregator(st, loc),
		Store:  st,
		Quotes: pool,
	})

	srv := utils.NewServer(":"+cfg.AppPort, r, utils.DefaultReadTimeout)

	if !cfg.DisableRolloverScheduler {
		worker := workers.NewRolloverWorker(engine, loc, utils.Logger.Named("rollover"), func() {
			utils.InvalidateByPrefix(utils.StatsCachePrefix)
		})
		if err := worker.Start(); err != nil {
			utils.Sugar.Fatalf("start rollover worker: %v", err)
		}
		srv.OnShutdown(func(context.Context) {
			if err := worker.Stop(); err != nil {
				utils.Sugar.Warnf("stop rollover worker: %v", err)
			}
		})
	}
	srv.OnShutdown(func(context.Context) { config.CloseDatabase() })

	utils.Sugar.Infof("Starting server on port %s (graceful), timezone %s", cfg.AppPort, loc)
	if err := srv.ListenAndServe(); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
