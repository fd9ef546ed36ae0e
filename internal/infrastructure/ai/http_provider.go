package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

const (
	httpBackend = "http"
	// maxErrorBody bounds how much of a failed response ends up in the error message.
	maxErrorBody = 512
)

// httpClient is a configuration-driven JSON-over-HTTP analysis client.
// All service-specific behavior is controlled through the model's APIFormat configuration.
type httpClient struct {
	model      domain.ModelDefinition
	apiKey     string
	orgID      string
	httpClient *http.Client
}

func newHTTPClient(model domain.ModelDefinition, apiKey, orgID string, client *http.Client) ports.AnalysisClient {
	return &httpClient{
		model:      model,
		apiKey:     apiKey,
		orgID:      orgID,
		httpClient: client,
	}
}

func (p *httpClient) Name() string {
	return httpBackend
}

func (p *httpClient) Analyze(ctx context.Context, prompt string, attachment *domain.Attachment) (string, error) {
	requestBody, err := p.buildRequestBody(prompt, attachment)
	if err != nil {
		return "", analysisError(httpBackend, fmt.Errorf("build request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.model.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", analysisError(httpBackend, fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	p.setAuthHeaders(httpReq)
	p.setExtraHeaders(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", analysisError(httpBackend, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", analysisError(httpBackend, fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode >= 400 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody] + "..."
		}
		return "", analysisError(httpBackend, fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet))
	}

	content, err := p.parseResponse(body)
	if err != nil {
		return "", analysisError(httpBackend, fmt.Errorf("parse response: %w", err))
	}
	return nonEmpty(httpBackend, content)
}

// buildRequestBody constructs the JSON request body based on the model's APIFormat configuration.
func (p *httpClient) buildRequestBody(prompt string, attachment *domain.Attachment) ([]byte, error) {
	request := map[string]interface{}{
		"model": p.model.ModelID,
		"messages": []map[string]interface{}{
			{"role": "user", "content": formatContent(prompt, attachment, p.model.APIFormat)},
		},
	}

	if p.model.MaxTokens > 0 {
		request["max_tokens"] = p.model.MaxTokens
	} else if p.model.APIFormat.IsContentWrapped() {
		// The Anthropic API rejects requests without max_tokens.
		request["max_tokens"] = domain.DefaultMaxTokens
	}

	return json.Marshal(request)
}

// formatContent shapes the user turn for the configured wire format.
func formatContent(prompt string, attachment *domain.Attachment, format domain.APIFormat) interface{} {
	if format.IsContentWrapped() {
		parts := make([]map[string]interface{}, 0, 2)
		if attachment != nil {
			parts = append(parts, map[string]interface{}{
				"type": "image",
				"source": map[string]string{
					"type":       "base64",
					"media_type": attachment.MIMEType,
					"data":       base64.StdEncoding.EncodeToString(attachment.Data),
				},
			})
		}
		return append(parts, map[string]interface{}{"type": "text", "text": prompt})
	}

	if attachment == nil {
		return prompt
	}
	// OpenAI vision format: text part plus an inline data URL.
	dataURL := "data:" + attachment.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(attachment.Data)
	return []map[string]interface{}{
		{"type": "text", "text": prompt},
		{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
	}
}

// setAuthHeaders configures authentication headers based on the model's APIFormat.
func (p *httpClient) setAuthHeaders(req *http.Request) {
	if p.apiKey != "" {
		format := p.model.APIFormat
		req.Header.Set(format.GetAuthHeaderName(), format.GetAuthHeaderPrefix()+p.apiKey)
	}
	if p.orgID != "" {
		req.Header.Set("OpenAI-Organization", p.orgID)
	}
}

// setExtraHeaders adds any additional headers defined in the APIFormat configuration.
func (p *httpClient) setExtraHeaders(req *http.Request) {
	for key, value := range p.model.APIFormat.ExtraHeaders {
		req.Header.Set(key, value)
	}
}

// parseResponse extracts the generated text from the JSON response using the configured JSON path.
func (p *httpClient) parseResponse(body []byte) (string, error) {
	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("unmarshal JSON: %w", err)
	}

	path := p.model.APIFormat.GetResponseJSONPath()
	content, err := extractJSONPath(response, path)
	if err != nil {
		return "", fmt.Errorf("extract from path '%s': %w", path, err)
	}

	return strings.TrimSpace(content), nil
}

// extractJSONPath extracts a string value from a nested JSON structure using a simple path notation.
// Supported paths: "field", "field.nested", "field[0]", "field[0].nested.field"
func extractJSONPath(data map[string]interface{}, path string) (string, error) {
	var current interface{} = data

	for _, part := range parseJSONPath(path) {
		switch part.kind {
		case "field":
			obj, ok := current.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("expected object at '%s'", part.value)
			}
			var found bool
			current, found = obj[part.value]
			if !found {
				return "", fmt.Errorf("field '%s' not found", part.value)
			}

		case "index":
			arr, ok := current.([]interface{})
			if !ok {
				return "", fmt.Errorf("expected array at index %s", part.value)
			}
			var idx int
			if _, err := fmt.Sscanf(part.value, "%d", &idx); err != nil {
				return "", fmt.Errorf("bad index %q", part.value)
			}
			if idx < 0 || idx >= len(arr) {
				return "", fmt.Errorf("index %d out of bounds (len=%d)", idx, len(arr))
			}
			current = arr[idx]
		}
	}

	if str, ok := current.(string); ok {
		return str, nil
	}

	return "", fmt.Errorf("final value is not a string: %T", current)
}

type pathPart struct {
	kind  string // "field" or "index"
	value string
}

// parseJSONPath converts "content[0].text" into structured path parts:
// [{field, "content"}, {index, "0"}, {field, "text"}].
func parseJSONPath(path string) []pathPart {
	var parts []pathPart
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, pathPart{kind: "field", value: current.String()})
			current.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch ch := path[i]; ch {
		case '.':
			flush()
		case '[':
			flush()
			j := strings.IndexByte(path[i+1:], ']')
			if j < 0 {
				continue
			}
			parts = append(parts, pathPart{kind: "index", value: path[i+1 : i+1+j]})
			i += j + 1
		default:
			current.WriteByte(ch)
		}
	}
	flush()

	return parts
}
