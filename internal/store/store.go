package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/philippgille/chromem-go"
)

const collectionName = "docs"

// Metric - метрика расстояния для поиска
type Metric string

const (
	MetricCosine Metric = "cosine"
	MetricL2     Metric = "l2"
)

var (
	// ErrEmptyStore - запрос к хранилищу без единой записи
	ErrEmptyStore = errors.New("vector store is empty")

	// ErrDimensionMismatch - размерность вектора не совпадает с уже
	// сохранёнными (признак смены embedding модели)
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Record - единица хранения: вектор + текст чанка + метаданные источника
type Record struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// Result - результат поиска
type Result struct {
	Record
	Similarity float32
	Distance   float32
}

// Store оборачивает chromem-go коллекцию: идемпотентный upsert по ID чанка,
// top-k поиск с настраиваемой метрикой, persistence через export/import.
type Store struct {
	db     *chromem.DB
	coll   *chromem.Collection
	metric Metric

	dim     int            // Размерность, зафиксированная первой записью
	order   map[string]int // ID -> порядок вставки, для стабильного tie-break
	nextSeq int
}

// chromem требует embedding функцию у коллекции, но мы всегда передаём
// готовые векторы, поэтому она не должна вызываться
func failingEmbeddingFunc(_ context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("store received text %q without an embedding", text)
}

// New создаёт пустое хранилище
func New(metric Metric) (*Store, error) {
	switch metric {
	case MetricCosine, MetricL2:
	default:
		return nil, fmt.Errorf("unknown distance metric: %q", metric)
	}

	db := chromem.NewDB()
	coll, err := db.CreateCollection(collectionName, map[string]string{}, failingEmbeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &Store{
		db:     db,
		coll:   coll,
		metric: metric,
		order:  make(map[string]int),
	}, nil
}

// Count возвращает количество записей
func (s *Store) Count() int {
	return s.coll.Count()
}

// Dimension возвращает зафиксированную размерность, 0 для пустого хранилища
func (s *Store) Dimension() int {
	return s.dim
}

// Upsert добавляет записи; запись с уже известным ID заменяется,
// размер хранилища при этом не меняется
func (s *Store) Upsert(ctx context.Context, records []Record) error {
	for _, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %s has no embedding", r.ID)
		}
		if s.dim == 0 {
			s.dim = len(r.Embedding)
		}
		if len(r.Embedding) != s.dim {
			return fmt.Errorf("%w: record %s has dimension %d, store expects %d",
				ErrDimensionMismatch, r.ID, len(r.Embedding), s.dim)
		}

		if _, seen := s.order[r.ID]; !seen {
			s.order[r.ID] = s.nextSeq
			s.nextSeq++
		}

		err := s.coll.AddDocument(ctx, chromem.Document{
			ID:        r.ID,
			Content:   r.Content,
			Embedding: r.Embedding,
			Metadata:  r.Metadata,
		})
		if err != nil {
			return fmt.Errorf("failed to add document %s: %w", r.ID, err)
		}
	}
	return nil
}

// Query возвращает не более k ближайших записей, отсортированных по
// неубыванию расстояния; равные расстояния упорядочены по порядку вставки
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]Result, error) {
	count := s.coll.Count()
	if count == 0 {
		return nil, ErrEmptyStore
	}
	if s.dim != 0 && len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, store expects %d",
			ErrDimensionMismatch, len(vector), s.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	// chromem не разрешает запрашивать больше, чем есть записей
	if k > count {
		k = count
	}

	raw, err := s.coll.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	results := make([]Result, 0, len(raw))
	for _, r := range raw {
		results = append(results, Result{
			Record: Record{
				ID:        r.ID,
				Content:   r.Content,
				Embedding: r.Embedding,
				Metadata:  r.Metadata,
			},
			Similarity: r.Similarity,
			Distance:   s.distance(r.Similarity),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return s.insertionOrder(results[i].ID) < s.insertionOrder(results[j].ID)
	})

	return results, nil
}

// distance переводит cosine similarity chromem'а в расстояние выбранной
// метрики. Векторы в chromem нормализованы, поэтому для l2 верно
// d = sqrt(2 - 2*sim) и порядок результатов совпадает с cosine.
func (s *Store) distance(similarity float32) float32 {
	switch s.metric {
	case MetricL2:
		d := 2 - 2*float64(similarity)
		if d < 0 {
			d = 0
		}
		return float32(math.Sqrt(d))
	default:
		return 1 - similarity
	}
}

func (s *Store) insertionOrder(id string) int {
	if seq, ok := s.order[id]; ok {
		return seq
	}
	return s.nextSeq
}

// Reset удаляет все записи и сбрасывает зафиксированную размерность
func (s *Store) Reset() error {
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	coll, err := s.db.CreateCollection(collectionName, map[string]string{}, failingEmbeddingFunc)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	s.coll = coll
	s.dim = 0
	s.order = make(map[string]int)
	s.nextSeq = 0
	return nil
}

// storeState - состояние, которое chromem не хранит сам
type storeState struct {
	Dimension int            `json:"dimension"`
	Order     map[string]int `json:"order"`
	NextSeq   int            `json:"next_seq"`
}

func statePath(dbPath string) string {
	return dbPath + ".state"
}

// Save сохраняет коллекцию и состояние на диск
func (s *Store) Save(dbPath string) error {
	if err := s.db.ExportToFile(dbPath, true, "", collectionName); err != nil {
		return fmt.Errorf("failed to export DB: %w", err)
	}

	f, err := os.Create(statePath(dbPath))
	if err != nil {
		return fmt.Errorf("failed to create state file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(storeState{
		Dimension: s.dim,
		Order:     s.order,
		NextSeq:   s.nextSeq,
	})
}

// Load восстанавливает коллекцию и состояние с диска
func (s *Store) Load(dbPath string) error {
	if err := s.db.ImportFromFile(dbPath, "", collectionName); err != nil {
		return fmt.Errorf("failed to import DB: %w", err)
	}

	coll := s.db.GetCollection(collectionName, failingEmbeddingFunc)
	if coll == nil {
		return fmt.Errorf("collection %q not found after DB load", collectionName)
	}
	s.coll = coll

	f, err := os.Open(statePath(dbPath))
	if os.IsNotExist(err) {
		// Состояние потеряно: размерность переустановится первой записью,
		// порядок вставки для tie-break начнётся заново
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	defer f.Close()

	var state storeState
	if err := json.NewDecoder(f).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode state file: %w", err)
	}

	s.dim = state.Dimension
	s.order = state.Order
	if s.order == nil {
		s.order = make(map[string]int)
	}
	s.nextSeq = state.NextSeq
	return nil
}
