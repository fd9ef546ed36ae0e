// This file contains analysis backend definitions used throughout the application.
package domain

// Backend names the client implementation used for a model.
type Backend string

const (
	// BackendGemini talks to Google's Gemini API through the genai SDK.
	BackendGemini Backend = "gemini"
	// BackendAnthropic talks to the Anthropic Messages API through its SDK.
	BackendAnthropic Backend = "anthropic"
	// BackendHTTP is the configuration-driven JSON-over-HTTP backend (OpenAI, Ollama, ...).
	BackendHTTP Backend = "http"
)

// ModelDefinition describes an analysis backend declared in the config file.
// Each model represents a specific AI service endpoint with its authentication and
// generation parameters.
type ModelDefinition struct {
	Name       string    `yaml:"name"`
	Backend    Backend   `yaml:"backend"`
	Endpoint   string    `yaml:"endpoint,omitempty"`
	AuthEnvVar string    `yaml:"auth_env_var"`
	OrgEnvVar  string    `yaml:"org_env_var,omitempty"`
	ModelID    string    `yaml:"model_id"`
	MaxTokens  int       `yaml:"max_tokens"`
	APIFormat  APIFormat `yaml:"api_format,omitempty"`
}

// APIFormat defines how to construct requests and parse responses for the HTTP backend.
// All fields are optional with sensible defaults (OpenAI-compatible format).
type APIFormat struct {
	// AuthHeaderName specifies the HTTP header name for authentication.
	// Default: "Authorization"
	AuthHeaderName string `yaml:"auth_header_name,omitempty"`

	// AuthHeaderPrefix is prepended to the API key value.
	// Default: "Bearer " (with trailing space)
	AuthHeaderPrefix string `yaml:"auth_header_prefix,omitempty"`

	// ContentWrapper controls how message content is formatted.
	// Values: "standard" (default) - plain string, or an OpenAI parts array when an image is attached
	//         "anthropic" - wrap in [{"type": "text", "text": "..."}] array
	ContentWrapper string `yaml:"content_wrapper,omitempty"`

	// ResponseJSONPath specifies where to extract the generated text from the response.
	// Default: "choices[0].message.content" (OpenAI format)
	ResponseJSONPath string `yaml:"response_json_path,omitempty"`

	// ExtraHeaders contains additional HTTP headers to send with each request.
	ExtraHeaders map[string]string `yaml:"extra_headers,omitempty"`
}

// API Format Constants define standard values for APIFormat fields.
const (
	DefaultAuthHeaderName   = "Authorization"
	DefaultAuthHeaderPrefix = "Bearer "

	ContentWrapperStandard  = "standard"
	ContentWrapperAnthropic = "anthropic"

	DefaultResponsePath   = "choices[0].message.content"
	AnthropicResponsePath = "content[0].text"
)

// GetAuthHeaderName returns the authentication header name with default fallback.
func (f APIFormat) GetAuthHeaderName() string {
	if f.AuthHeaderName == "" {
		return DefaultAuthHeaderName
	}
	return f.AuthHeaderName
}

// GetAuthHeaderPrefix returns the authentication header prefix with default fallback.
// Note: Empty string is a valid value when a custom header name is set.
func (f APIFormat) GetAuthHeaderPrefix() string {
	if f.AuthHeaderName != "" && f.AuthHeaderPrefix == "" {
		return ""
	}
	if f.AuthHeaderPrefix == "" {
		return DefaultAuthHeaderPrefix
	}
	return f.AuthHeaderPrefix
}

// GetContentWrapper returns the content wrapper format with default fallback.
func (f APIFormat) GetContentWrapper() string {
	if f.ContentWrapper == "" {
		return ContentWrapperStandard
	}
	return f.ContentWrapper
}

// GetResponseJSONPath returns the JSON path for extracting response content with default fallback.
func (f APIFormat) GetResponseJSONPath() string {
	if f.ResponseJSONPath == "" {
		return DefaultResponsePath
	}
	return f.ResponseJSONPath
}

// IsContentWrapped returns true if content should be wrapped in Anthropic's array format.
func (f APIFormat) IsContentWrapped() bool {
	return f.GetContentWrapper() == ContentWrapperAnthropic
}
