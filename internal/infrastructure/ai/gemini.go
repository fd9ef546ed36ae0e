package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

const geminiBackend = "gemini"

type geminiClient struct {
	client    *genai.Client
	modelID   string
	maxTokens int32
}

func newGeminiClient(ctx context.Context, model domain.ModelDefinition, apiKey string) (ports.AnalysisClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if model.Endpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: model.Endpoint}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", domain.ErrConfiguration, err)
	}
	return &geminiClient{
		client:    client,
		modelID:   valueOrDefault(model.ModelID, domain.DefaultGeminiModel),
		maxTokens: int32(valueOrDefaultInt(model.MaxTokens, domain.DefaultMaxTokens)),
	}, nil
}

func (g *geminiClient) Name() string {
	return geminiBackend
}

// Analyze sends the prompt, and the screenshot when present, as one user turn.
func (g *geminiClient) Analyze(ctx context.Context, prompt string, attachment *domain.Attachment) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if attachment != nil {
		parts = append(parts, genai.NewPartFromBytes(attachment.Data, attachment.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.modelID,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{MaxOutputTokens: g.maxTokens},
	)
	if err != nil {
		return "", analysisError(geminiBackend, err)
	}
	return nonEmpty(geminiBackend, resp.Text())
}
