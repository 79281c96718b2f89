package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"askdocs/internal/embedder"
	"askdocs/internal/store"
)

func (a *App) Run(ctx context.Context) error {
	log.Println("Application started")
	log.Println("Enter a file path to index it, or a question to search. :reset clears the index. Ctrl+C to exit.")

	scanner := bufio.NewScanner(os.Stdin)

	// Увеличим буфер, если пути/строки будут длинные
	const maxLineSize = 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down application")
			return nil
		default:
			// читаем строку
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("stdin error: %w", err)
				}
				// EOF
				log.Println("stdin closed")
				return nil
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			a.handleLine(ctx, line)
		}
	}
}

// handleLine разбирает ввод: команда, путь к файлу или вопрос
func (a *App) handleLine(ctx context.Context, line string) {
	if line == ":reset" {
		if err := a.resetStore(); err != nil {
			log.Printf("❌ Reset failed: %v", err)
			return
		}
		log.Println("🗑️  Index cleared")
		return
	}

	// Строка с существующим файлом - индексируем
	if info, err := os.Stat(line); err == nil && !info.IsDir() {
		if err := a.Ingest(ctx, line); err != nil {
			log.Printf("❌ Ingest failed: %v", err)
		}
		return
	}

	// Иначе это вопрос
	results, err := a.Query(ctx, line, a.cfg.TopK)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmptyStore):
			log.Printf("❌ Index is empty, ingest a document first (enter a file path)")
		case embedder.IsTransient(err):
			log.Printf("❌ Embedding service unavailable, try again: %v", err)
		default:
			log.Printf("❌ Search error: %v", err)
		}
		return
	}

	log.Printf("🔍 Top %d results:", len(results))
	for i, r := range results {
		header := r.Source
		if r.Section != "" {
			header = fmt.Sprintf("%s / %s", r.Source, r.Section)
		}
		log.Printf("\n%d. [%s] (similarity: %.2f)\n%s", i+1, header, r.Similarity, r.Content)
	}
}
