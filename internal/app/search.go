package app

import (
	"context"
	"fmt"

	"askdocs/internal/store"
)

// SearchResult - результат векторного поиска
type SearchResult struct {
	Content    string
	Source     string
	Section    string
	Similarity float32
	Distance   float32
}

// Query векторизует вопрос и ищет top-k ближайших чанков
func (a *App) Query(ctx context.Context, question string, k int) ([]SearchResult, error) {
	// Не тратим вызов API, если искать не в чем
	if a.store.Count() == 0 {
		return nil, store.ErrEmptyStore
	}

	vector, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := a.store.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, r := range results {
		searchResults = append(searchResults, SearchResult{
			Content:    r.Content,
			Source:     r.Metadata["source"],
			Section:    r.Metadata["section"],
			Similarity: r.Similarity,
			Distance:   r.Distance,
		})
	}

	return searchResults, nil
}
