package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"askdocs/internal/chunker"
	"askdocs/internal/config"
	"askdocs/internal/embedder"
	"askdocs/internal/store"
)

// Embedder - то, что приложению нужно от embedding сервиса
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type App struct {
	cfg      *config.Config
	store    *store.Store
	embedder Embedder
	chunkers *chunker.Factory
	metadata *Metadata
}

type Metadata struct {
	Files    map[string]FileInfo `json:"files"`
	DataPath string              `json:"data_path"`
}

type FileInfo struct {
	Path         string    `json:"path"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size"`
	Chunks       int       `json:"chunks"`
}

func New(cfg *config.Config) (*App, error) {
	chunkers, err := chunker.NewFactory(chunker.Config{
		MaxChunkSize: cfg.ChunkSize,
		Overlap:      cfg.ChunkOverlap,
	})
	if err != nil {
		return nil, fmt.Errorf("bad chunk parameters: %w", err)
	}

	st, err := store.New(store.Metric(cfg.Metric))
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	return &App{
		cfg:      cfg,
		store:    st,
		embedder: embedder.New(cfg.JinaURL, cfg.JinaAPIKey, cfg.EmbedModel),
		chunkers: chunkers,
		metadata: &Metadata{Files: make(map[string]FileInfo)},
	}, nil
}

func (a *App) Init() error {
	// Load metadata first
	_ = a.loadMetadata() // ignore error, may not exist

	// Invalidate metadata if data dir changed
	absDataDir, err := filepath.Abs(a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute data dir: %w", err)
	}
	if a.metadata.DataPath != "" && a.metadata.DataPath != absDataDir {
		log.Printf("Data directory changed from %s to %s, invalidating metadata and index...", a.metadata.DataPath, absDataDir)
		a.metadata.Files = make(map[string]FileInfo)
		_ = os.Remove(a.cfg.MetadataFile)
		_ = os.Remove(a.cfg.DBFile)
		if err := a.store.Reset(); err != nil {
			return fmt.Errorf("failed to reset store: %w", err)
		}
	}
	a.metadata.DataPath = absDataDir

	// Load existing DB if it exists
	if _, err := os.Stat(a.cfg.DBFile); err == nil {
		log.Printf("Found existing DB file, loading...")
		if err := a.store.Load(a.cfg.DBFile); err != nil {
			return fmt.Errorf("failed to load vector database: %w", err)
		}
		log.Printf("Successfully restored collection: %d records from %d files", a.store.Count(), len(a.metadata.Files))
	} else {
		log.Printf("No existing DB file found, starting fresh")
	}

	return nil
}

// resetStore очищает хранилище и метаданные (команда :reset)
func (a *App) resetStore() error {
	if err := a.store.Reset(); err != nil {
		return err
	}
	a.metadata.Files = make(map[string]FileInfo)
	_ = os.Remove(a.cfg.DBFile)
	return a.saveMetadata()
}

func (a *App) loadMetadata() error {
	f, err := os.Open(a.cfg.MetadataFile)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(&a.metadata)
}

func (a *App) saveMetadata() error {
	f, err := os.Create(a.cfg.MetadataFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(a.metadata)
}

// saveAll сохраняет БД и метаданные после успешной индексации
func (a *App) saveAll() error {
	if err := a.store.Save(a.cfg.DBFile); err != nil {
		return fmt.Errorf("failed to save vector database: %w", err)
	}
	if err := a.saveMetadata(); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}
