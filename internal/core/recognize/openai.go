package recognize

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIVisionProvider recognizes by asking a vision-capable chat model to
// transcribe the page image. Slower and priced per call, but needs no OCR
// runtime on the host. Handles share one HTTP client and are stateless.
type OpenAIVisionProvider struct {
	client *openai.Client
	model  string
	prompt string
}

// NewOpenAIVisionProvider creates a provider that sends page images to the
// given chat model.
func NewOpenAIVisionProvider(apiKey, model string, cfg Config) *OpenAIVisionProvider {
	prompt := "Transcribe every piece of text visible in this page image. " +
		"Return only the transcription in reading order, with no commentary."
	if cfg.Language != "" {
		prompt += fmt.Sprintf(" The document language code is %q.", cfg.Language)
	}
	return &OpenAIVisionProvider{
		client: openai.NewClient(apiKey),
		model:  model,
		prompt: prompt,
	}
}

// Name returns the provider name.
func (p *OpenAIVisionProvider) Name() string {
	return "openai"
}

// NewHandle returns a handle bound to this provider's client and prompt.
func (p *OpenAIVisionProvider) NewHandle() (Handle, error) {
	return &visionHandle{provider: p}, nil
}

type visionHandle struct {
	provider *OpenAIVisionProvider
}

func (h *visionHandle) Recognize(ctx context.Context, image []byte) (string, error) {
	p := h.provider
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: p.prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:" + imageMIME(image) + ";base64," + base64.StdEncoding.EncodeToString(image),
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (h *visionHandle) Close() error {
	return nil
}

// imageMIME sniffs the page image's format for the data URL. The rasterizer
// emits JPEG or PNG depending on configuration; anything unrecognized is
// labeled JPEG.
func imageMIME(data []byte) string {
	if mime := http.DetectContentType(data); strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/jpeg"
}
