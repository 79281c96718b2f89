package chunker

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// NewChunk создаёт чанк с автоматической генерацией ID.
// ID детерминирован (hash текста + источника), поэтому повторная
// индексация того же файла даёт те же идентификаторы.
func NewChunk(text, source, section string, index int, metadata map[string]string) Chunk {
	hash := sha256.Sum256([]byte(text + source))

	if metadata == nil {
		metadata = make(map[string]string)
	}

	return Chunk{
		ID:       fmt.Sprintf("%x", hash[:8]),
		Index:    index,
		Text:     text,
		Source:   source,
		Section:  section,
		Metadata: metadata,
	}
}

// GetLastNChars возвращает последние N символов строки для overlap
func GetLastNChars(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}

// SplitByParagraphs разбивает текст на параграфы
func SplitByParagraphs(text string) []string {
	paragraphs := strings.Split(text, "\n\n")
	var result []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
