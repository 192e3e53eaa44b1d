package main

import (
	"context"
	"flag"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/MaximilianIsing/OCR-Processing/internal/config"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/pipeline"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/rasterize"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/recognize"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/workdir"
	"github.com/MaximilianIsing/OCR-Processing/internal/logger"
)

// extract runs the OCR pipeline once against a local PDF, without the HTTP
// surface. Useful for scripting and for exercising backend/provider
// combinations from a shell.
func main() {
	input := flag.String("input", "", "path to the PDF to extract")
	output := flag.String("output", "", "where to write the text (default: input path with a .txt extension)")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel)

	if *input == "" {
		log.Fatal().Msg("usage: extract -input document.pdf [-output document.txt]")
	}
	outPath := *output
	if outPath == "" {
		outPath = strings.TrimSuffix(*input, filepath.Ext(*input)) + ".txt"
	}

	workdirs, err := workdir.NewManager(cfg.WorkDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize work directory")
	}

	raster := newRasterizer(cfg)
	provider := newProvider(cfg)
	log.Info().Msgf("🖼️  Using rasterizer backend: %s", raster.Name())
	log.Info().Msgf("🔍 Using OCR provider: %s", provider.Name())

	runner := pipeline.NewRunner(raster, provider, workdirs, pipeline.Config{
		MaxPages:         cfg.MaxPages,
		BatchSize:        cfg.BatchSize,
		ReuseRecognizers: cfg.ReuseWorkers,
		PageTimeout:      cfg.PageTimeout,
		PreferNativeText: cfg.PreferNativeText,
	})

	result, err := runner.Run(context.Background(), *input, outPath)
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("Extraction failed")
	}

	log.Info().
		Int("pages", result.PageCount).
		Int("chars", len(result.Text)).
		Str("output", outPath).
		Msg("✅ Extraction complete")
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
		return recognize.NewTesseractProvider(rcfg)
	}
}
