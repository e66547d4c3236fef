package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/config"
	"github.com/iliyamo/train-station-reservation/internal/database"
	"github.com/iliyamo/train-station-reservation/internal/handler"
	"github.com/iliyamo/train-station-reservation/internal/queue"
	"github.com/iliyamo/train-station-reservation/internal/repository"
	"github.com/iliyamo/train-station-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		Station:   handler.NewStationHandler(repository.NewStationRepo(db)),
		Route:     handler.NewRouteHandler(repository.NewRouteRepo(db)),
		TrainType: handler.NewTrainTypeHandler(repository.NewTrainTypeRepo(db)),
		Facility:  handler.NewFacilityHandler(repository.NewFacilityRepo(db)),
		Train:     handler.NewTrainHandler(repository.NewTrainRepo(db)),
		Crew:      handler.NewCrewHandler(repository.NewCrewRepo(db)),
		Journey:   handler.NewJourneyHandler(repository.NewJourneyRepo(db)),
		Order:     handler.NewOrderHandler(repository.NewOrderRepo(db), repository.NewJourneyRepo(db)),
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, cfg, rdb)

	// Background consumer keeps its own connection and reconnect loop.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
