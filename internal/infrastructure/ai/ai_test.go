package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/bugsqa/internal/domain"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFactoryMissingCredentialIsConfigurationError(t *testing.T) {
	f := NewFactory(WithGetenv(envMap(nil)))

	models := []domain.ModelDefinition{
		{Name: "gemini", Backend: domain.BackendGemini, ModelID: "gemini-2.0-flash", AuthEnvVar: "GOOGLE_API_KEY"},
		{Name: "claude", Backend: domain.BackendAnthropic, ModelID: "claude-3-5-sonnet-20240620"},
		{Name: "openai", Backend: domain.BackendHTTP, Endpoint: "https://api.openai.com/v1/chat/completions", AuthEnvVar: "OPENAI_API_KEY"},
		{Name: "http-no-endpoint", Backend: domain.BackendHTTP},
		{Name: "grpc", Backend: "grpc"},
	}
	for _, m := range models {
		t.Run(m.Name, func(t *testing.T) {
			_, err := f.ForModel(context.Background(), m)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestFactoryHTTPWithoutKeyVariable(t *testing.T) {
	f := NewFactory(WithGetenv(envMap(nil)))
	client, err := f.ForModel(context.Background(), domain.ModelDefinition{
		Name: "ollama", Backend: domain.BackendHTTP, Endpoint: "http://localhost:11434/v1/chat/completions", ModelID: "llava",
	})
	require.NoError(t, err)
	assert.Equal(t, "http", client.Name())
}

func TestHTTPClientOpenAIFormat(t *testing.T) {
	var captured map[string]interface{}
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"  Root cause: nil map.  "}}]}`)
	}))
	defer srv.Close()

	f := NewFactory(WithGetenv(envMap(map[string]string{"OPENAI_API_KEY": "sk-test", "OPENAI_ORG": "org-1"})))
	client, err := f.ForModel(context.Background(), domain.ModelDefinition{
		Name: "openai", Backend: domain.BackendHTTP, Endpoint: srv.URL,
		AuthEnvVar: "OPENAI_API_KEY", OrgEnvVar: "OPENAI_ORG", ModelID: "gpt-4o", MaxTokens: 1000,
		APIFormat: domain.APIFormat{ExtraHeaders: map[string]string{"X-Trace": "on"}},
	})
	require.NoError(t, err)

	out, err := client.Analyze(context.Background(), "analyze this", nil)
	require.NoError(t, err)

	assert.Equal(t, "Root cause: nil map.", out)
	assert.Equal(t, "Bearer sk-test", headers.Get("Authorization"))
	assert.Equal(t, "org-1", headers.Get("OpenAI-Organization"))
	assert.Equal(t, "on", headers.Get("X-Trace"))
	assert.Equal(t, "gpt-4o", captured["model"])
	assert.EqualValues(t, 1000, captured["max_tokens"])

	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "analyze this", messages[0].(map[string]interface{})["content"])
}

func TestHTTPClientOpenAIImage(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"I see a stack trace."}}]}`)
	}))
	defer srv.Close()

	client := newHTTPClient(domain.ModelDefinition{Endpoint: srv.URL, ModelID: "llava"}, "", "", srv.Client())
	_, err := client.Analyze(context.Background(), "what broke?", &domain.Attachment{Data: []byte("PNG"), MIMEType: "image/png"})
	require.NoError(t, err)

	content := captured["messages"].([]interface{})[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, content, 2)
	image := content[1].(map[string]interface{})
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, "data:image/png;base64,UE5H", image["image_url"].(map[string]interface{})["url"])
}

func TestHTTPClientAnthropicWrapper(t *testing.T) {
	var captured map[string]interface{}
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"Use a guard clause."}]}`)
	}))
	defer srv.Close()

	model := domain.ModelDefinition{
		Endpoint: srv.URL,
		ModelID:  "claude-3-5-sonnet-20240620",
		APIFormat: domain.APIFormat{
			AuthHeaderName:   "x-api-key",
			ContentWrapper:   domain.ContentWrapperAnthropic,
			ResponseJSONPath: domain.AnthropicResponsePath,
		},
	}
	client := newHTTPClient(model, "key-1", "", srv.Client())

	out, err := client.Analyze(context.Background(), "fix it", &domain.Attachment{Data: []byte{1, 2}, MIMEType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "Use a guard clause.", out)
	assert.Equal(t, "key-1", headers.Get("x-api-key"))
	assert.Empty(t, headers.Get("Authorization"))
	assert.EqualValues(t, domain.DefaultMaxTokens, captured["max_tokens"])

	content := captured["messages"].([]interface{})[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, content, 2)
	assert.Equal(t, "image", content[0].(map[string]interface{})["type"])
	assert.Equal(t, "text", content[1].(map[string]interface{})["type"])
}

func TestHTTPClientFailuresAreAnalysisErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"overloaded"}`, wantMsg: "HTTP 500"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantMsg: "unmarshal JSON"},
		{name: "missing path", status: http.StatusOK, body: `{"choices":[]}`, wantMsg: "out of bounds"},
		{name: "empty text", status: http.StatusOK, body: `{"choices":[{"message":{"content":"   "}}]}`, wantMsg: "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := newHTTPClient(domain.ModelDefinition{Endpoint: srv.URL, ModelID: "m"}, "", "", srv.Client())
			_, err := client.Analyze(context.Background(), "p", nil)

			var ae *domain.AnalysisError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, "http", ae.Backend)
			assert.Contains(t, ae.Message, tt.wantMsg)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestExtractJSONPath(t *testing.T) {
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"choices": [{"message": {"content": "hello"}}],
		"message": {"content": "ollama"},
		"content": [{"type": "text", "text": "claude"}],
		"count": 3
	}`), &data))

	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "choices[0].message.content", want: "hello"},
		{path: "message.content", want: "ollama"},
		{path: "content[0].text", want: "claude"},
		{path: "content[1].text", wantErr: true},
		{path: "missing", wantErr: true},
		{path: "count", wantErr: true},
		{path: "message[0]", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := extractJSONPath(data, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnthropicClientAgainstStubServer(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-20240620",
			"content": [{"type": "text", "text": "Missing await."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 3}
		}`)
	}))
	defer srv.Close()

	f := NewFactory(WithGetenv(envMap(map[string]string{"ANTHROPIC_API_KEY": "sk-ant"})))
	client, err := f.ForModel(context.Background(), domain.ModelDefinition{
		Name: "claude", Backend: domain.BackendAnthropic, Endpoint: srv.URL, ModelID: "claude-3-5-sonnet-20240620",
	})
	require.NoError(t, err)

	out, err := client.Analyze(context.Background(), "why is this undefined?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Missing await.", out)
	assert.Equal(t, "claude-3-5-sonnet-20240620", captured["model"])
}

func TestAnthropicClientSingleAttemptOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)
	}))
	defer srv.Close()

	client := newAnthropicClient(domain.ModelDefinition{Endpoint: srv.URL}, "sk-ant")
	_, err := client.Analyze(context.Background(), "p", nil)

	var ae *domain.AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "anthropic", ae.Backend)
	assert.Equal(t, 1, calls)
}

func TestGeminiClientAgainstStubServer(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Null check missing."}]}}]}`)
	}))
	defer srv.Close()

	f := NewFactory(WithGetenv(envMap(map[string]string{"GOOGLE_API_KEY": "g-key"})))
	client, err := f.ForModel(context.Background(), domain.ModelDefinition{
		Name: "gemini", Backend: domain.BackendGemini, Endpoint: srv.URL, AuthEnvVar: "GOOGLE_API_KEY",
	})
	require.NoError(t, err)

	out, err := client.Analyze(context.Background(), "screenshot analysis", &domain.Attachment{Data: []byte("img"), MIMEType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "Null check missing.", out)

	contents := captured["contents"].([]interface{})
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "inlineData")
	assert.Equal(t, "screenshot analysis", parts[1].(map[string]interface{})["text"])
}
