package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Задачи Jina embeddings API: пассажи индексируются и запрашиваются
// разными режимами модели
const (
	taskPassage = "retrieval.passage"
	taskQuery   = "retrieval.query"
)

// Client - клиент Jina embeddings API (один endpoint, batch строк на входе,
// batch векторов на выходе)
type Client struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	dimension  int // Зафиксированная размерность, 0 до первого ответа
}

// Option настраивает клиент
type Option func(*Client)

// WithHTTPClient подменяет http клиент (для тестов и кастомных таймаутов)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New создаёт клиент embeddings API
func New(apiURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dimension возвращает размерность векторов, 0 если ещё не было ни одного вызова
func (c *Client) Dimension() int {
	return c.dimension
}

// EmbedDocuments векторизует batch текстов, порядок результата совпадает
// с порядком входа
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	return c.embed(ctx, taskPassage, texts)
}

// EmbedQuery векторизует вопрос пользователя
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, taskQuery, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Task  string   `json:"task"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *Client) embed(ctx context.Context, task string, texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Model: c.model,
		Task:  task,
		Input: texts,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Сетевые ошибки и таймауты считаем временными
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// ok
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w (status %d)", ErrRateLimit, resp.StatusCode)
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &TransientError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", string(body)),
		}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	return c.validateVectors(response, len(texts))
}

// validateVectors проверяет ответ на границе: количество, индексы
// и размерность векторов
func (c *Client) validateVectors(response embeddingResponse, want int) ([][]float32, error) {
	if len(response.Data) != want {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrBadResponse, len(response.Data), want)
	}

	// Восстанавливаем порядок входа по полю index
	vectors := make([][]float32, want)
	for _, item := range response.Data {
		if item.Index < 0 || item.Index >= want {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrBadResponse, item.Index)
		}
		if vectors[item.Index] != nil {
			return nil, fmt.Errorf("%w: duplicate embedding index %d", ErrBadResponse, item.Index)
		}
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", ErrBadResponse, item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	// Размерность фиксируется первым ответом и не должна меняться
	for i, v := range vectors {
		if c.dimension == 0 {
			c.dimension = len(v)
		}
		if len(v) != c.dimension {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, want %d", ErrBadResponse, i, len(v), c.dimension)
		}
	}

	return vectors, nil
}
