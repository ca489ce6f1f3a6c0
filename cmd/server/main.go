package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"ulascansenturk/weather-glasses/config"
	"ulascansenturk/weather-glasses/internal/api/v1/handlers"
	"ulascansenturk/weather-glasses/internal/host"
	"ulascansenturk/weather-glasses/internal/inmemorycache"
	"ulascansenturk/weather-glasses/internal/providers"
	"ulascansenturk/weather-glasses/internal/service"
	"ulascansenturk/weather-glasses/internal/telemetry"
)

func main() {
	conf, err := config.LoadConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}

	logLevel, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil || conf.LogLevel == "" {
		logLevel = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).
		Level(logLevel).
		With().
		Str("service_name", conf.ServiceName).
		Str("package_name", conf.PackageName).
		Timestamp().
		Logger()
	log.Logger = logger

	ctx, mainCtxStop := context.WithCancel(context.Background())

	shutdownTracer, err := telemetry.InitTracer(conf.ServiceName, conf.ZipkinURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracer")
	}

	weatherClient, err := providers.NewOpenWeatherClient(
		conf.OpenWeatherAPIKey,
		providers.WithBaseURL(conf.OpenWeatherBaseURL),
		providers.WithGeocodingURL(conf.OpenWeatherGeoURL),
		providers.WithTimeout(conf.HTTPTimeoutDuration()),
		providers.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create weather client")
	}

	cacheProvider := inmemorycache.NewInMemoryCacheProvider(time.Minute)
	locationSearch := service.NewLocationSearch(weatherClient, cacheProvider, conf.GeocodeCacheTTL, logger)

	orchestrator := service.NewOrchestrator(weatherClient, conf.DefaultCity, conf.LocationTimeout, logger)
	registry := host.NewRegistry(logger)

	router := handlers.NewRouter(
		handlers.NewLocationsHandler(locationSearch, conf.HTTPTimeoutDuration()),
		handlers.NewSessionsHandler(ctx, orchestrator, registry, conf.HostAPIKey, conf.HTTPTimeoutDuration(), logger),
		registry,
		logger,
	)

	httpServer := &http.Server{
		Addr:              conf.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: conf.HTTPTimeoutDuration(),
	}

	handleSignals(ctx, mainCtxStop, conf.ShutdownTimeout, func(shutdownCtx context.Context) {
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
		registry.StopAll(shutdownCtx)
		cacheProvider.Close()
		if tracerErr := shutdownTracer(shutdownCtx); tracerErr != nil {
			logger.Error().Err(tracerErr).Msg("tracer shutdown failed")
		}
	})

	logger.Info().Msgf("started server on %s", conf.ServerAddress())

	serverErr := httpServer.ListenAndServe()
	if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
		logger.Err(serverErr).Msg("server stopped")
		os.Exit(1)
	}
	<-ctx.Done()
}

func handleSignals(ctx context.Context, cancelCtx context.CancelFunc, shutdownDuration time.Duration, callback func(context.Context)) {
	sig := make(chan os.Signal, 1)

	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sig

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDuration)

		go func() {
			<-shutdownCtx.Done()

			if shutdownCtx.Err() == context.DeadlineExceeded {
				panic("graceful shutdown timed out.. forcing exit.")
			}
		}()

		callback(shutdownCtx)

		cancel()
		cancelCtx()
	}()
}
