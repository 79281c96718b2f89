package chunker

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Factory создаёт chunker на основе метода и типа файла
type Factory struct {
	config Config
}

// NewFactory создаёт новую фабрику chunker'ов
func NewFactory(config Config) (*Factory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Factory{config: config}, nil
}

// GetChunker возвращает подходящий chunker для файла.
// Если метод явно указан - используем его, иначе определяем по расширению.
func (f *Factory) GetChunker(filePath, method string) (Chunker, error) {
	if method != "" {
		return f.GetChunkerByMethod(method)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".md", ".markdown":
		return NewMarkdownChunker(f.config), nil
	default:
		return NewTextChunker(f.config), nil
	}
}

// GetChunkerByMethod возвращает chunker по названию метода
func (f *Factory) GetChunkerByMethod(method string) (Chunker, error) {
	switch strings.ToLower(method) {
	case "markdown", "md":
		return NewMarkdownChunker(f.config), nil
	case "simple", "text", "txt":
		return NewTextChunker(f.config), nil
	default:
		return nil, fmt.Errorf("unknown chunking method: %s", method)
	}
}
