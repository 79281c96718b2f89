package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document - загруженный документ, живёт только до разбиения на чанки
type Document struct {
	Source string // Имя файла без пути
	Text   string
}

// ErrUnsupportedType возвращается для файлов, которые мы не умеем читать
var ErrUnsupportedType = errors.New("unsupported file type")

// Load читает файл и извлекает из него plain text.
// Поддерживаются .txt, .md (как есть) и .pdf (только текст, без layout).
func Load(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory, not a file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var text string

	switch ext {
	case ".txt", ".md", ".markdown":
		content, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("failed to read file: %w", err)
		}
		text = string(content)
	case ".pdf":
		text, err = extractPDFText(path)
		if err != nil {
			return Document{}, fmt.Errorf("failed to extract pdf text: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %s (only .txt, .md and .pdf are supported)", ErrUnsupportedType, ext)
	}

	return Document{
		Source: filepath.Base(path),
		Text:   text,
	}, nil
}

// extractPDFText извлекает текст из pdf файла
func extractPDFText(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	b, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to get plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("failed to read pdf buffer: %w", err)
	}

	if buf.Len() == 0 {
		return "", fmt.Errorf("no text extracted from pdf")
	}

	return buf.String(), nil
}
