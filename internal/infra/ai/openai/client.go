package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/infra/ai/prompt"
	"github.com/sashabaranov/go-openai"
)

const (
	maxTokens    = 2048
	defaultModel = "gpt-4o"
)

type Client struct {
	*openai.Client
	Model   string
	timeout time.Duration
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, timeout: timeout}
}

func (c *Client) Analyze(ctx context.Context, images []analysis.ImageInput) (string, error) {
	req := c.request(visionMessage(prompt.GetAnalysisPrompt(), images))
	return c.complete(ctx, req)
}

func (c *Client) ScoreAuthenticity(ctx context.Context, images []analysis.ImageInput, narrative string) (string, error) {
	req := c.request(visionMessage(prompt.GetAuthenticityPrompt(narrative), images))
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	return c.complete(ctx, req)
}

func (c *Client) EstimatePrice(ctx context.Context, images []analysis.ImageInput, narrative string, auth analysis.Authenticity) (string, error) {
	req := c.request(visionMessage(prompt.GetPricePrompt(narrative, auth), images))
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	return c.complete(ctx, req)
}

func (c *Client) Chat(ctx context.Context, message, contextSummary string) (string, error) {
	req := c.request(openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.GetChatPrompt(message, contextSummary),
	})
	return c.complete(ctx, req)
}

func (c *Client) request(msg openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: []openai.ChatCompletionMessage{msg},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
	return req
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", &analysis.UpstreamError{Provider: "openai", Message: "empty completion"}
	}
	return resp.Choices[0].Message.Content, nil
}

func visionMessage(text string, images []analysis.ImageInput) openai.ChatCompletionMessage {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: text},
	}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(img),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
}

func dataURL(img analysis.ImageInput) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func wrapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPStatusCode
		wrapped := err
		if status == http.StatusTooManyRequests {
			wrapped = analysis.ErrQuotaExceeded
		}
		return &analysis.UpstreamError{Provider: "openai", Status: status, Message: apiErr.Message, Err: wrapped}
	}
	return &analysis.UpstreamError{Provider: "openai", Message: err.Error(), Err: err}
}
