package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var cacheRepo *repositories.CacheRepository
	var runsRepo *repositories.RunRepository
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err == nil {
			cacheRepo = repositories.NewCacheRepository(db)
			runsRepo = repositories.NewRunRepository(db)
		} else {
			logger.Warn("migrations failed, caching disabled", "error", err)
		}
	} else {
		logger.Warn("database unavailable, caching disabled", "error", err)
	}

	var cache services.Cache = services.NopCache()
	if cacheRepo != nil {
		cache = cacheRepo
	}

	var spotifyService *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify, cache); err == nil {
			spotifyService = svc
		} else {
			logger.Warn("spotify service unavailable", "error", err)
		}
	}

	var lyricsService services.LyricsSearcher
	lyricsFactory := func(pageSize, maxPages int) (services.LyricsSearcher, error) {
		return services.NewMusixmatchService(
			config.Credentials.Musixmatch.APIKey,
			cache,
			services.WithMusixmatchPaging(pageSize, maxPages),
		)
	}
	if config.Credentials.Musixmatch.APIKey != "" {
		if svc, err := lyricsFactory(config.Search.PageSize, config.Search.MaxPages); err == nil {
			lyricsService = svc
		} else {
			logger.Warn("musixmatch service unavailable", "error", err)
		}
	}

	opts := RunnerOpts{
		Config:   config,
		Spotify:  spotifyService,
		Lyrics:   lyricsService,
		Detector: services.NewWhatlangDetector(),
		Cache:    cacheRepo,
		Runs:     runsRepo,
		Logger:   logger,
	}
	if spotifyService != nil {
		opts.Tracks = spotifyService
		opts.Catalog = spotifyService
	}

	runner := NewRunner(opts)
	runner.lyricsFactory = lyricsFactory

	app := &cli.Command{
		Name:     "lyrx",
		Usage:    "Build playlists from songs whose lyrics contain a phrase",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
