package chunker

import (
	"log"
)

// TextChunker разбивает plain text скользящим окном с overlap.
// Каждый следующий чанк начинается на MaxChunkSize-Overlap символов
// правее предыдущего, так что склейка чанков без overlap-префиксов
// восстанавливает исходный текст.
type TextChunker struct {
	config Config
}

// NewTextChunker создаёт новый text chunker
func NewTextChunker(config Config) *TextChunker {
	return &TextChunker{config: config}
}

func (s *TextChunker) Name() string {
	return "text"
}

func (s *TextChunker) Chunk(content, source string) ([]Chunk, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	var chunks []Chunk
	runes := []rune(content)
	step := s.config.MaxChunkSize - s.config.Overlap

	// Чанк на каждую стартовую позицию внутри текста: хвост короче
	// overlap'а всё равно даёт свой чанк
	for i := 0; i < len(runes); i += step {
		end := i + s.config.MaxChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, NewChunk(string(runes[i:end]), source, "", len(chunks), map[string]string{
			"method": s.Name(),
		}))
	}

	log.Printf("✅ [%s] Created %d chunks", s.Name(), len(chunks))
	return chunks, nil
}
