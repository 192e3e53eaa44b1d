package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaximilianIsing/OCR-Processing/internal/core/pipeline"
	"github.com/MaximilianIsing/OCR-Processing/internal/services"
)

type stubExtractor struct {
	result *services.ExtractResult
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, fileHeader *multipart.FileHeader) (*services.ExtractResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestApp(extractor Extractor, maxUploadMB int) *fiber.App {
	app := fiber.New(fiber.Config{BodyLimit: 64 * 1024 * 1024})
	h := NewExtractHandler(extractor, maxUploadMB)
	app.Post("/extract-text", h.ExtractText)
	return app
}

func pdfRequest(t *testing.T, field, filename, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract-text", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestExtractTextSuccess(t *testing.T) {
	stub := &stubExtractor{result: &services.ExtractResult{
		Filename:  "scan.pdf",
		PageCount: 3,
		Text:      "page one page two page three",
	}}
	app := newTestApp(stub, 50)

	resp, err := app.Test(pdfRequest(t, "pdf", "scan.pdf", "application/pdf", []byte("%PDF-1.4")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "scan.pdf", body["filename"])
	assert.Equal(t, float64(3), body["pageCount"])
	assert.Equal(t, float64(len("page one page two page three")), body["textLength"])
	assert.Equal(t, "page one page two page three", body["text"])
	assert.Equal(t, 1, stub.calls)
}

func TestExtractTextRequiresFile(t *testing.T) {
	stub := &stubExtractor{}
	app := newTestApp(stub, 50)

	req := httptest.NewRequest(http.MethodPost, "/extract-text", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No PDF file provided", body["error"])
	assert.Equal(t, 0, stub.calls, "extractor must not run without a file")
}

func TestExtractTextRejectsWrongContentType(t *testing.T) {
	stub := &stubExtractor{}
	app := newTestApp(stub, 50)

	resp, err := app.Test(pdfRequest(t, "pdf", "notes.txt", "text/plain", []byte("hello")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid file type", body["error"])
	assert.Equal(t, 0, stub.calls)
}

func TestExtractTextRejectsOversizedFile(t *testing.T) {
	stub := &stubExtractor{}
	app := newTestApp(stub, 1)

	payload := bytes.Repeat([]byte("x"), 1536*1024) // 1.5 MB against a 1 MB cap
	resp, err := app.Test(pdfRequest(t, "pdf", "big.pdf", "application/pdf", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "File too large", body["error"])
	assert.Equal(t, 0, stub.calls)
}

func TestOversizedBodyRejectedByTransportAnswersJSON(t *testing.T) {
	// A body above BodyLimit never reaches the route; the app error handler
	// must still answer with the handlers' JSON shape instead of the
	// transport's plain-text 413.
	stub := &stubExtractor{}
	app := fiber.New(fiber.Config{
		BodyLimit:    2 * 1024 * 1024,
		ErrorHandler: ErrorHandler(1),
	})
	h := NewExtractHandler(stub, 1)
	app.Post("/extract-text", h.ExtractText)

	payload := bytes.Repeat([]byte("x"), 3*1024*1024)
	resp, err := app.Test(pdfRequest(t, "pdf", "huge.pdf", "application/pdf", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "File too large", body["error"])
	assert.Contains(t, body["message"], "1 MB")
	assert.Equal(t, 0, stub.calls, "extractor must not run for a refused body")
}

func TestErrorHandlerKeepsFiberStatusCodes(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(50)})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/no-such-route", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestExtractTextMapsPageLimitToClientError(t *testing.T) {
	stub := &stubExtractor{err: fmt.Errorf("%w: document has 31 pages, limit is 30", pipeline.ErrPageLimitExceeded)}
	app := newTestApp(stub, 50)

	resp, err := app.Test(pdfRequest(t, "pdf", "long.pdf", "application/pdf", []byte("%PDF-1.4")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "PDF exceeds page limit", body["error"])
	assert.Contains(t, body["message"], "31 pages")
}

func TestExtractTextMapsBogusPDFToClientError(t *testing.T) {
	stub := &stubExtractor{err: fmt.Errorf("%w: missing %%PDF signature", services.ErrNotPDF)}
	app := newTestApp(stub, 50)

	resp, err := app.Test(pdfRequest(t, "pdf", "fake.pdf", "application/pdf", []byte("ZIP!")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid file type", decodeBody(t, resp)["error"])
}

func TestExtractTextMapsOtherFailuresToServerError(t *testing.T) {
	stub := &stubExtractor{err: errors.New("rasterizer crashed")}
	app := newTestApp(stub, 50)

	resp, err := app.Test(pdfRequest(t, "pdf", "scan.pdf", "application/pdf", []byte("%PDF-1.4")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Text extraction failed", body["error"])
	assert.Contains(t, body["message"], "rasterizer crashed")
}

func TestGetRoot(t *testing.T) {
	app := fiber.New()
	app.Get("/", NewRootHandler().GetRoot)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["message"])
	assert.Contains(t, body["endpoints"], "POST /extract-text")
}

func TestGetHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/health", NewHealthHandler("tesseract", "poppler").GetHealth)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "tesseract", body["provider"])
	assert.Equal(t, "poppler", body["rasterizer"])
}
