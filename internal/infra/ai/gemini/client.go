package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/infra/ai/prompt"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	maxOutputTokens = 8192
	defaultModel    = "gemini-2.0-flash"
)

type Client struct {
	client    *genai.Client
	textModel *genai.GenerativeModel
	jsonModel *genai.GenerativeModel
	timeout   time.Duration
}

// NewClient dials the Gemini API. The same underlying model is exposed
// twice: once free-form for the narrative and chat stages, once locked
// to a JSON response MIME type for the verdict and price stages.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	textModel := client.GenerativeModel(model)
	textModel.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptr(int32(maxOutputTokens)),
	}

	jsonModel := client.GenerativeModel(model)
	jsonModel.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptr(int32(maxOutputTokens)),
	}
	jsonModel.ResponseMIMEType = "application/json"

	return &Client{client: client, textModel: textModel, jsonModel: jsonModel, timeout: timeout}, nil
}

func (c *Client) Close() error { return c.client.Close() }

func (c *Client) Analyze(ctx context.Context, images []analysis.ImageInput) (string, error) {
	return c.generate(ctx, c.textModel, visionParts(prompt.GetAnalysisPrompt(), images))
}

func (c *Client) ScoreAuthenticity(ctx context.Context, images []analysis.ImageInput, narrative string) (string, error) {
	return c.generate(ctx, c.jsonModel, visionParts(prompt.GetAuthenticityPrompt(narrative), images))
}

func (c *Client) EstimatePrice(ctx context.Context, images []analysis.ImageInput, narrative string, auth analysis.Authenticity) (string, error) {
	return c.generate(ctx, c.jsonModel, visionParts(prompt.GetPricePrompt(narrative, auth), images))
}

func (c *Client) Chat(ctx context.Context, message, contextSummary string) (string, error) {
	return c.generate(ctx, c.textModel, []genai.Part{genai.Text(prompt.GetChatPrompt(message, contextSummary))})
}

func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, parts []genai.Part) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", wrapErr(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &analysis.UpstreamError{Provider: "gemini", Message: "empty candidate"}
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", &analysis.UpstreamError{Provider: "gemini", Message: "no text parts in candidate"}
	}
	return b.String(), nil
}

func visionParts(text string, images []analysis.ImageInput) []genai.Part {
	parts := []genai.Part{genai.Text(text)}
	for _, img := range images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}
	return parts
}

func wrapErr(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		wrapped := err
		if apiErr.Code == http.StatusTooManyRequests {
			wrapped = analysis.ErrQuotaExceeded
		}
		return &analysis.UpstreamError{Provider: "gemini", Status: apiErr.Code, Message: apiErr.Message, Err: wrapped}
	}
	return &analysis.UpstreamError{Provider: "gemini", Message: err.Error(), Err: err}
}

func ptr[T any](v T) *T { return &v }
