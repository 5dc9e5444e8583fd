package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/weiwei-tsao/covid-state-compare/internal/business/covid"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/arcgis"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/covid-state-compare/internal/platform/firestore"
	apirouter "github.com/weiwei-tsao/covid-state-compare/internal/platform/http"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/logging"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/metrics"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/socrata"
	"github.com/weiwei-tsao/covid-state-compare/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logging.Init(cfg.LogLevel, cfg.LogFile)
	gin.SetMode(cfg.GinMode)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}

	var (
		recorder covid.RunRecorder = covid.NopRecorder{}
		runs     apirouter.RunLister
	)
	firestoreClient, err := firestoreclient.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("firestore init")
	}
	if firestoreClient != nil {
		defer firestoreClient.Close()
		runRepo := repository.NewRunRepository(firestoreClient)
		recorder = runRepo
		runs = runRepo
	}

	fetcher := covid.NewFetcher(
		arcgis.New(nil, arcgis.Config{URL: cfg.ArcGISURL, Timeout: cfg.HTTPTimeout}),
		socrata.New(nil, socrata.Config{
			Domain:   cfg.SocrataDomain,
			Dataset:  cfg.SocrataDataset,
			Limit:    cfg.SocrataLimit,
			AppToken: cfg.SocrataAppToken,
			Timeout:  cfg.HTTPTimeout,
		}),
	)
	collector := metrics.NewCollector()
	cache := covid.NewCache(fetcher, covid.CacheOptions{
		Location: loc,
		Recorder: recorder,
		Observer: collector,
	})
	svc := covid.NewService(cache)

	// Warm the cache; a failure here is retried by the first request.
	if _, err := cache.Ensure(ctx); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed")
	}

	router := apirouter.NewRouter(svc, runs, collector, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("timezone", loc.String()).Msg("server listening")

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server exited")
}
