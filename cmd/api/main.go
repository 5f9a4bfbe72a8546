package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/octobees/contact-scraper/internal/acquirer"
	"github.com/octobees/contact-scraper/internal/auth"
	"github.com/octobees/contact-scraper/internal/config"
	"github.com/octobees/contact-scraper/internal/database"
	"github.com/octobees/contact-scraper/internal/handler"
	"github.com/octobees/contact-scraper/internal/logging"
	middlewarepkg "github.com/octobees/contact-scraper/internal/middleware"
	"github.com/octobees/contact-scraper/internal/repository"
	"github.com/octobees/contact-scraper/internal/router"
	"github.com/octobees/contact-scraper/internal/scraper"
	"github.com/octobees/contact-scraper/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	fetcher := acquirer.New(cfg.Fetch.Acquirer(),
		acquirer.WithPrimaryClient(acquirer.NewProxyClient(context.Background(), cfg.Fetch.IDTokenAudience)),
	)
	pipeline := scraper.New(fetcher)

	usersRepo := repository.NewPGXUsersRepository(pool)
	scrapesRepo := repository.NewPGXScrapesRepository(pool)

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	scrapeService := service.NewScrapeService(pipeline, scrapesRepo, service.NewDataProcessor(cfg.PhoneRegion))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, pool, router.Handlers{
		Auth:   handler.NewAuthHandler(authService, jwtManager.TTL()),
		Users:  handler.NewUserAdminHandler(userService),
		Scrape: handler.NewScrapeHandler(scrapeService),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
