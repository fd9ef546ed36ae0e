package ai

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

const (
	anthropicBackend      = "anthropic"
	defaultAnthropicModel = "claude-3-5-sonnet-20240620"
)

type anthropicClient struct {
	client    anthropic.Client
	modelID   string
	maxTokens int64
}

func newAnthropicClient(model domain.ModelDefinition, apiKey string) ports.AnalysisClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// One attempt per analysis; the SDK retries by default.
		option.WithMaxRetries(0),
	}
	if model.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(model.Endpoint))
	}
	return &anthropicClient{
		client:    anthropic.NewClient(opts...),
		modelID:   valueOrDefault(model.ModelID, defaultAnthropicModel),
		maxTokens: int64(valueOrDefaultInt(model.MaxTokens, domain.DefaultMaxTokens)),
	}
}

func (a *anthropicClient) Name() string {
	return anthropicBackend
}

func (a *anthropicClient) Analyze(ctx context.Context, prompt string, attachment *domain.Attachment) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if attachment != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(
			attachment.MIMEType,
			base64.StdEncoding.EncodeToString(attachment.Data),
		))
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	response, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.modelID),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", analysisError(anthropicBackend, err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return nonEmpty(anthropicBackend, text.String())
}
