package ai

import (
	"errors"
	"strings"

	"github.com/doeshing/bugsqa/internal/domain"
)

func resolveAuth(getenv func(string) string, primary string, fallback string) string {
	if primary != "" {
		if value := getenv(primary); value != "" {
			return value
		}
	}
	if fallback == "" {
		return ""
	}
	return getenv(fallback)
}

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func valueOrDefaultInt(value int, def int) int {
	if value == 0 {
		return def
	}
	return value
}

// analysisError wraps err for backend unless it already is an AnalysisError.
func analysisError(backend string, err error) error {
	var ae *domain.AnalysisError
	if errors.As(err, &ae) {
		return err
	}
	return domain.NewAnalysisError(backend, err)
}

// errEmptyResponse is reported when a call succeeds but carries no text.
var errEmptyResponse = errors.New("empty response from analysis service")

func nonEmpty(backend, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewAnalysisError(backend, errEmptyResponse)
	}
	return text, nil
}
