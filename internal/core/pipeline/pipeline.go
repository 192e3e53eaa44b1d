// Package pipeline drives a whole PDF-to-text run: page-limit enforcement,
// rasterization, batched concurrent recognition, ordered reassembly,
// normalization, and working-directory cleanup on success and failure.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MaximilianIsing/OCR-Processing/internal/core/pdfmeta"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/rasterize"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/recognize"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/text"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/workdir"
)

// Scanned documents usually extract to nothing but whitespace; anything
// shorter than this is treated as "no usable text layer".
const nativeTextMinChars = 64

// Config is the canonical policy set for runs. Earlier iterations of this
// service hardcoded several variants of these knobs; they are configuration
// now, and there is exactly one pipeline.
type Config struct {
	MaxPages         int           // reject documents with more pages than this
	BatchSize        int           // pages recognized concurrently; the sole backpressure
	ReuseRecognizers bool          // pool handles across the run instead of creating one per page
	PageTimeout      time.Duration // per-page recognition deadline, 0 disables it
	PreferNativeText bool          // use the document's own text layer when it has one
}

// Result is what a completed run hands back.
type Result struct {
	Text      string
	PageCount int
}

// PageResult pairs a page index with its recognized text. Text is empty when
// that page's recognition failed.
type PageResult struct {
	Index int
	Text  string
}

// Runner executes runs against fixed collaborators. One Runner is safe for
// concurrent runs; every run works in its own directory.
type Runner struct {
	raster   rasterize.Rasterizer
	provider recognize.Provider
	workdirs *workdir.Manager
	cfg      Config

	// textLayer reports the document's extractable text layer, if usable.
	// Defaults to the pdfmeta-backed embeddedText.
	textLayer func(inputPath string) (string, bool)
}

// NewRunner wires a pipeline together.
func NewRunner(raster rasterize.Rasterizer, provider recognize.Provider, workdirs *workdir.Manager, cfg Config) *Runner {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 30
	}
	r := &Runner{raster: raster, provider: provider, workdirs: workdirs, cfg: cfg}
	r.textLayer = r.embeddedText
	return r
}

// Run converts the PDF at inputPath to normalized plain text. When
// outputPath is non-empty the text is also written there. A single page's
// recognition failure degrades that page to empty text and never fails the
// run; the working directory is removed on every path.
func (r *Runner) Run(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	dir, err := r.workdirs.NewRun()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer r.workdirs.Remove(dir)

	return r.run(ctx, inputPath, outputPath, dir)
}

func (r *Runner) run(ctx context.Context, inputPath, outputPath, dir string) (*Result, error) {
	pages, err := r.raster.PageCount(ctx, inputPath)
	if err != nil {
		if pages, err = r.parsedPageCount(inputPath, err); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRasterizationFailed, err)
		}
	}
	if pages <= 0 {
		return nil, fmt.Errorf("%w: reported page count %d", ErrRasterizationFailed, pages)
	}
	if pages > r.cfg.MaxPages {
		return nil, fmt.Errorf("%w: document has %d pages, limit is %d", ErrPageLimitExceeded, pages, r.cfg.MaxPages)
	}

	log.Info().
		Str("input", inputPath).
		Int("pages", pages).
		Str("rasterizer", r.raster.Name()).
		Str("provider", r.provider.Name()).
		Msg("starting ocr run")

	if r.cfg.PreferNativeText {
		if embedded, ok := r.textLayer(inputPath); ok {
			log.Info().Str("input", inputPath).Msg("document carries a text layer, skipping ocr")
			return r.finish(embedded, pages, outputPath)
		}
	}

	images, err := r.raster.Rasterize(ctx, inputPath, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterizationFailed, err)
	}

	results, err := r.recognizeAll(ctx, images)
	if err != nil {
		return nil, err
	}

	// Completion order within a batch is arbitrary; the index sort is what
	// restores document order.
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	parts := make([]string, len(results))
	for i, pr := range results {
		parts[i] = pr.Text
	}
	return r.finish(strings.Join(parts, " "), pages, outputPath)
}

// recognizeAll processes images in fixed-size batches: batches run strictly
// one after another, pages within a batch concurrently. In-flight
// recognitions therefore never exceed the batch size.
func (r *Runner) recognizeAll(ctx context.Context, images []rasterize.PageImage) ([]PageResult, error) {
	var pool *handlePool
	if r.cfg.ReuseRecognizers {
		size := r.cfg.BatchSize
		if len(images) < size {
			size = len(images)
		}
		var err error
		pool, err = newHandlePool(r.provider, size)
		if err != nil {
			return nil, fmt.Errorf("recognizer pool: %w", err)
		}
		defer pool.releaseAll()
	}

	results := make([]PageResult, 0, len(images))
	var mu sync.Mutex

	for start := 0; start < len(images); start += r.cfg.BatchSize {
		end := start + r.cfg.BatchSize
		if end > len(images) {
			end = len(images)
		}

		var wg sync.WaitGroup
		for _, img := range images[start:end] {
			wg.Add(1)
			go func(img rasterize.PageImage) {
				defer wg.Done()
				pr := r.recognizePage(ctx, pool, img)
				mu.Lock()
				results = append(results, pr)
				mu.Unlock()
			}(img)
		}
		wg.Wait()
	}
	return results, nil
}

// recognizePage produces this page's result and deletes its image right
// away, without waiting for the batch or the run to end. A failure is
// logged and recorded as empty text; it never cancels sibling pages.
func (r *Runner) recognizePage(ctx context.Context, pool *handlePool, img rasterize.PageImage) PageResult {
	recognized, err := r.recognizeImage(ctx, pool, img)
	if err != nil {
		log.Warn().Err(err).Int("page", img.Index).Msg("page recognition failed, continuing with empty text")
		recognized = ""
	}
	r.removeImage(img.Path)
	return PageResult{Index: img.Index, Text: recognized}
}

func (r *Runner) recognizeImage(ctx context.Context, pool *handlePool, img rasterize.PageImage) (string, error) {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return "", fmt.Errorf("read page image: %w", err)
	}

	var handle recognize.Handle
	if pool != nil {
		handle = pool.acquire()
		defer pool.release(handle)
	} else {
		handle, err = r.provider.NewHandle()
		if err != nil {
			return "", fmt.Errorf("create recognizer: %w", err)
		}
		defer func() {
			if err := handle.Close(); err != nil {
				log.Warn().Err(err).Msg("could not close recognizer handle")
			}
		}()
	}

	if r.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.PageTimeout)
		defer cancel()
	}
	return handle.Recognize(ctx, data)
}

func (r *Runner) removeImage(path string) {
	if err := os.Remove(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not remove page image")
	}
}

// parsedPageCount answers a failed backend page count with the pure-Go
// parser, so the page limit still applies when the backend tool is missing
// or chokes on the document. When both fail, the backend's error stands.
func (r *Runner) parsedPageCount(inputPath string, cause error) (int, error) {
	pages, err := pdfmeta.PageCount(inputPath)
	if err != nil {
		return 0, cause
	}
	log.Warn().Err(cause).Int("pages", pages).Str("input", inputPath).
		Msg("backend page count failed, using parsed page tree")
	return pages, nil
}

// embeddedText reads the document's own text layer. Any failure just falls
// back to OCR.
func (r *Runner) embeddedText(inputPath string) (string, bool) {
	extracted, err := pdfmeta.EmbeddedText(inputPath)
	if err != nil {
		log.Warn().Err(err).Str("input", inputPath).Msg("could not read embedded text, falling back to ocr")
		return "", false
	}
	if !pdfmeta.HasUsableText(extracted, nativeTextMinChars) {
		return "", false
	}
	return extracted, true
}

func (r *Runner) finish(raw string, pages int, outputPath string) (*Result, error) {
	normalized := text.Normalize(raw)
	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(normalized), 0o644); err != nil {
			return nil, fmt.Errorf("%w: write %s: %w", ErrIO, outputPath, err)
		}
	}
	log.Info().Int("pages", pages).Int("chars", len(normalized)).Msg("ocr run complete")
	return &Result{Text: normalized, PageCount: pages}, nil
}
