package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"askdocs/internal/chunker"
	"askdocs/internal/loader"
	"askdocs/internal/store"
)

// Ingest прогоняет файл через pipeline: load -> chunk -> embed -> upsert.
// При ошибке embedder'а прерывается сразу; хранилище остаётся частично
// заполненным, но upsert идемпотентен и повторный Ingest безопасен.
func (a *App) Ingest(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	// Метаданные ключуем по абсолютному пути: одинаковые имена файлов
	// из разных директорий - разные документы
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Пропускаем файл, если он не менялся с прошлой индексации
	if prev, exists := a.metadata.Files[absPath]; exists &&
		prev.LastModified.Equal(info.ModTime()) && prev.Size == info.Size() {
		log.Printf("⏭️  File unchanged since last ingest, skipping: %s", absPath)
		return nil
	}

	doc, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	log.Printf("📄 File loaded: %s (%d bytes)", doc.Source, len(doc.Text))

	chunks, err := a.chunkDocument(doc)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		log.Printf("⚠️  Document produced no chunks, nothing to index")
		return nil
	}

	log.Printf("📦 Split into %d chunks", len(chunks))

	// Векторизуем и сохраняем батчами
	for start := 0; start < len(chunks); start += a.cfg.EmbedBatch {
		end := start + a.cfg.EmbedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}

		vectors, err := a.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding failed at chunk %d: %w", start, err)
		}

		records := make([]store.Record, len(batch))
		for i, ch := range batch {
			md := map[string]string{
				"source":  ch.Source,
				"section": ch.Section,
				"index":   fmt.Sprintf("%d", ch.Index),
			}
			for k, v := range ch.Metadata {
				md[k] = v
			}
			records[i] = store.Record{
				ID:        ch.ID,
				Content:   ch.Text,
				Embedding: vectors[i],
				Metadata:  md,
			}
		}

		if err := a.store.Upsert(ctx, records); err != nil {
			return fmt.Errorf("failed to store chunks: %w", err)
		}

		log.Printf("💾 Stored chunks %d-%d of %d", start+1, end, len(chunks))
	}

	a.metadata.Files[absPath] = FileInfo{
		Path:         absPath,
		LastModified: info.ModTime(),
		Size:         info.Size(),
		Chunks:       len(chunks),
	}

	if err := a.saveAll(); err != nil {
		return err
	}

	log.Printf("✅ Indexed %s: %d chunks, %d records total", doc.Source, len(chunks), a.store.Count())
	return nil
}

// chunkDocument выбирает chunker по файлу и разбивает текст,
// с fallback'ом на text chunker если структурный chunker не справился
func (a *App) chunkDocument(doc loader.Document) ([]chunker.Chunk, error) {
	chunkr, err := a.chunkers.GetChunker(doc.Source, a.cfg.ChunkMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunker: %w", err)
	}

	chunks, err := chunkr.Chunk(doc.Text, doc.Source)
	if err != nil {
		log.Printf("⚠️  Chunker failed: %v, falling back to text chunker", err)
		fallback, ferr := a.chunkers.GetChunkerByMethod("text")
		if ferr != nil {
			return nil, ferr
		}
		chunks, err = fallback.Chunk(doc.Text, doc.Source)
		if err != nil {
			return nil, fmt.Errorf("text chunker failed: %w", err)
		}
	}

	return chunks, nil
}
