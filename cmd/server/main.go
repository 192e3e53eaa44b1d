package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/MaximilianIsing/OCR-Processing/internal/config"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/pipeline"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/rasterize"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/recognize"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/workdir"
	"github.com/MaximilianIsing/OCR-Processing/internal/handlers"
	"github.com/MaximilianIsing/OCR-Processing/internal/logger"
	"github.com/MaximilianIsing/OCR-Processing/internal/services"
)

// @title OCR Processing API
// @version 1.0
// @description Extracts plain text from uploaded PDF documents via OCR
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel)
	log.Info().Msgf("🚀 Starting ocr-processing on port %s", cfg.Port)

	// Init working directories
	workdirs, err := workdir.NewManager(cfg.WorkDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize work directory")
	}

	// Init rasterizer (multi-backend support)
	raster := newRasterizer(cfg)

	// Init OCR provider (multi-provider support)
	provider := newProvider(cfg)

	log.Info().Msgf("🖼️  Using rasterizer backend: %s", raster.Name())
	log.Info().Msgf("🔍 Using OCR provider: %s", provider.Name())

	// Init pipeline
	runner := pipeline.NewRunner(raster, provider, workdirs, pipeline.Config{
		MaxPages:         cfg.MaxPages,
		BatchSize:        cfg.BatchSize,
		ReuseRecognizers: cfg.ReuseWorkers,
		PageTimeout:      cfg.PageTimeout,
		PreferNativeText: cfg.PreferNativeText,
	})

	// Init services
	extractService, err := services.NewExtractService(runner, workdirs.UploadsDir())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize extract service")
	}

	// Init handlers
	rootHandler := handlers.NewRootHandler()
	healthHandler := handlers.NewHealthHandler(provider.Name(), raster.Name())
	extractHandler := handlers.NewExtractHandler(extractService, cfg.MaxUploadMB)

	// Init Fiber app. BodyLimit sits above the upload cap so the handler's
	// own size check answers most oversized uploads; bodies the transport
	// refuses outright get the same JSON shape from the error handler.
	app := fiber.New(fiber.Config{
		AppName:      "OCR Processing API",
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(cfg.MaxUploadMB),
	})

	// Middleware
	app.Use(cors.New())

	// Routes
	app.Get("/", rootHandler.GetRoot)
	app.Get("/health", healthHandler.GetHealth)
	app.Post("/extract-text", extractHandler.ExtractText)

	// Sweep stale run directories and uploads left behind by killed processes
	if cfg.SweepEnabled {
		sweeper := cron.New()
		if _, err := sweeper.AddFunc("@every 1h", func() {
			workdirs.Sweep(cfg.WorkdirMaxAge)
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule workdir sweep")
		}
		sweeper.Start()
		defer sweeper.Stop()
		log.Info().Dur("max_age", cfg.WorkdirMaxAge).Msg("🧹 Workdir sweeper scheduled")
	}

	// Start server, stop cleanly on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msgf("✅ ocr-processing running at :%s", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("🛑 Shutting down")
		return app.Shutdown()
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func newRasterizer(cfg *config.Config) rasterize.Rasterizer {
	opts := rasterize.Options{
		DPI:     cfg.RasterDPI,
		Format:  cfg.RasterFormat,
		Quality: cfg.RasterQuality,
	}
	switch cfg.RasterBackend {
	case "mupdf":
		return rasterize.NewMuPDFRasterizer(opts)
	default:
		// Default to poppler's CLI tools
		return rasterize.NewPopplerRasterizer(opts)
	}
}

func newProvider(cfg *config.Config) recognize.Provider {
	rcfg := recognize.Config{
		Language:    cfg.OCRLanguage,
		Whitelist:   cfg.OCRWhitelist,
		PageSegMode: cfg.OCRPageSegMode,
		DPI:         cfg.RasterDPI,
	}
	switch cfg.OCRProvider {
	case "tesseract-cli":
		return recognize.NewTesseractCLIProvider(rcfg)
	case "openai":
		return recognize.NewOpenAIVisionProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, rcfg)
	default:
		// Default to the in-process tesseract bindings
		return recognize.NewTesseractProvider(rcfg)
	}
}
