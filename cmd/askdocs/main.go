package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"askdocs/internal/app"
	"askdocs/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// Парсим флаги командной строки
	doc := flag.String("doc", "", "Path to a document to ingest at startup (optional)")
	dataDir := flag.String("data", "./data", "Data directory for vector DB")
	flag.Parse()

	// Устанавливаем env переменные для парсинга
	if *doc != "" {
		os.Setenv("DOC", *doc)
	}
	os.Setenv("DATA_DIR", *dataDir)

	// Загружаем .env (опционально)
	_ = godotenv.Load()

	// Загружаем конфиг
	cfg := config.Config{}
	if err := config.Init(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Проверяем существование файла до любой работы с сетью
	if cfg.Doc != "" {
		if _, err := os.Stat(cfg.Doc); os.IsNotExist(err) {
			log.Fatalf("Error: document not found: %s", cfg.Doc)
		}
	}

	// Пути к файлам БД внутри data директории
	cfg.DBFile = filepath.Join(cfg.DataDir, "askdocs.db")
	cfg.MetadataFile = filepath.Join(cfg.DataDir, "metadata.json")

	// Создаём директорию для данных
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}

	log.Printf("Data directory: %s", cfg.DataDir)
	log.Printf("Embedding model: %s, metric: %s", cfg.EmbedModel, cfg.Metric)

	// Создаём app
	a, err := app.New(&cfg)
	if err != nil {
		log.Fatalf("failed to create app: %v", err)
	}

	// Инициализируем (загрузка БД и метаданных)
	if err := a.Init(); err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}

	// Контекст с сигналами завершения
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// Индексируем стартовый документ, если указан
	if cfg.Doc != "" {
		if err := a.Ingest(ctx, cfg.Doc); err != nil {
			log.Fatalf("failed to ingest %s: %v", cfg.Doc, err)
		}
	}

	// Запускаем интерактивный цикл
	if err := a.Run(ctx); err != nil {
		log.Fatalf("app stopped with error: %v", err)
	}
}
