// Package extract turns complaint files into plain text for submission.
//
// Markup is stripped so the analyzer sees prose. Email messages keep only
// the subject and body; sender, recipient and routing headers are dropped
// before the text reaches the intake.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// Format names a supported submission file format.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatEmail    Format = "email"
)

// ErrUnsupportedFormat is returned for file types that cannot be extracted.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// maxFileSize bounds the bytes read from a submission file.
const maxFileSize = 1 << 20

var extensions = map[string]Format{
	".txt":      FormatText,
	".text":     FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".xhtml":    FormatHTML,
	".eml":      FormatEmail,
}

// Detect picks a format from the file extension. Files without an
// extension are treated as plain text.
func Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return FormatText, nil
	}
	f, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// File reads path and returns its plain text.
func File(path string) (string, error) {
	format, err := Detect(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if info.Size() > maxFileSize {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, path, maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Text(format, data)
}

// Text extracts plain text from data in the given format.
func Text(format Format, data []byte) (string, error) {
	switch format {
	case FormatText:
		return strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n")), nil
	case FormatMarkdown:
		return stripMarkdown(string(data)), nil
	case FormatHTML:
		return stripHTML(string(data)), nil
	case FormatEmail:
		return emailText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
