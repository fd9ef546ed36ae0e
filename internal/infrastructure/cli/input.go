package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/bugsqa/internal/application/session"
	"github.com/doeshing/bugsqa/internal/domain"
)

var imageMIMETypes = []string{"image/png", "image/jpeg"}

// LoadImage reads a screenshot and sniffs its MIME type from the content.
func LoadImage(path string) (session.Submission, error) {
	data, err := readBounded(path, domain.AllowedImageExtensions, domain.MaxImageBytes)
	if err != nil {
		return session.Submission{}, err
	}
	mime := http.DetectContentType(data)
	if !slices.Contains(imageMIMETypes, mime) {
		return session.Submission{}, fmt.Errorf("%w: %s is %s, expected a PNG or JPEG image", domain.ErrValidation, path, mime)
	}
	return session.Submission{
		Kind:  domain.KindImage,
		Image: &domain.Attachment{Data: data, MIMEType: mime},
	}, nil
}

// LoadSourceFile reads a source file to analyze with the text template.
func LoadSourceFile(path string) (session.Submission, error) {
	data, err := readBounded(path, domain.AllowedSourceExtensions, domain.MaxSourceFileBytes)
	if err != nil {
		return session.Submission{}, err
	}
	if !utf8.Valid(data) {
		return session.Submission{}, fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrValidation, path)
	}
	return session.Submission{
		Kind:     domain.KindFile,
		Text:     string(data),
		FileName: filepath.Base(path),
	}, nil
}

func readBounded(path string, extensions []string, limit int64) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: a path is required", domain.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(extensions, ext) {
		return nil, fmt.Errorf("%w: unsupported file type %q (allowed: %s)", domain.ErrValidation, ext, strings.Join(extensions, " "))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrValidation, path)
	}
	if info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %s, limit is %s", domain.ErrValidation, path,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(limit)))
	}
	return os.ReadFile(path)
}
