package chunker

import (
	"errors"
	"fmt"
)

// Chunk представляет единицу текста для векторизации
type Chunk struct {
	ID       string            // Уникальный идентификатор (hash текста + источника)
	Index    int               // Порядковый номер чанка в документе
	Text     string            // Текст чанка
	Source   string            // Имя исходного файла
	Section  string            // Название секции (заголовок, глава и т.д.)
	Metadata map[string]string // Дополнительные метаданные
}

// Chunker - интерфейс для всех типов chunker'ов
type Chunker interface {
	// Chunk разбивает контент на чанки
	Chunk(content, source string) ([]Chunk, error)

	// Name возвращает название chunker'а для логирования
	Name() string
}

// Config содержит общие параметры для chunker'ов
type Config struct {
	MaxChunkSize int // Максимальный размер чанка в символах
	Overlap      int // Размер overlap между чанками
}

// ErrInvalidConfig возвращается при некорректных параметрах разбиения
var ErrInvalidConfig = errors.New("invalid chunker config")

// Validate проверяет параметры разбиения
func (c Config) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.MaxChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.MaxChunkSize {
		return fmt.Errorf("%w: overlap %d must be less than chunk size %d", ErrInvalidConfig, c.Overlap, c.MaxChunkSize)
	}
	return nil
}
