package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"askdocs/internal/config"
	"askdocs/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder - детерминированные векторы без сети, в духе счётчика
// символов: одинаковый текст всегда даёт одинаковый вектор
type fakeEmbedder struct {
	docCalls   int
	queryCalls int
}

func fakeVector(text string) []float32 {
	var length, vowels, consonants, spaces float32
	for _, r := range text {
		length++
		switch {
		case r == 'a' || r == 'e' || r == 'i' || r == 'o' || r == 'u':
			vowels++
		case r == ' ':
			spaces++
		default:
			consonants++
		}
	}
	return []float32{length, vowels, consonants, spaces}
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.docCalls++
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = fakeVector(t)
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queryCalls++
	return fakeVector(text), nil
}

func newTestApp(t *testing.T, dataDir string) (*App, *fakeEmbedder) {
	t.Helper()

	cfg := &config.Config{
		DataDir:      dataDir,
		DBFile:       filepath.Join(dataDir, "askdocs.db"),
		MetadataFile: filepath.Join(dataDir, "metadata.json"),
		JinaAPIKey:   "unused",
		JinaURL:      "http://unused",
		EmbedModel:   "fake",
		EmbedBatch:   2,
		ChunkSize:    100,
		ChunkOverlap: 20,
		ChunkMethod:  "text",
		TopK:         2,
		Metric:       "cosine",
	}

	a, err := New(cfg)
	require.NoError(t, err)

	fake := &fakeEmbedder{}
	a.embedder = fake

	require.NoError(t, a.Init())
	return a, fake
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestQuery_EmptyStore(t *testing.T) {
	a, fake := newTestApp(t, t.TempDir())

	_, err := a.Query(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, store.ErrEmptyStore)
	assert.Equal(t, 0, fake.queryCalls, "no embed call for an empty store")
}

func TestIngestAndQuery(t *testing.T) {
	dir := t.TempDir()
	a, _ := newTestApp(t, dir)
	ctx := context.Background()

	cats := writeDoc(t, dir, "cats.txt", "cats purr loudly when happy")
	dogs := writeDoc(t, dir, "dogs.txt", "the stock market closed higher today")
	require.NoError(t, a.Ingest(ctx, cats))
	require.NoError(t, a.Ingest(ctx, dogs))

	results, err := a.Query(ctx, "cats purr loudly when happy", 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "cats purr loudly when happy", results[0].Content)
	assert.Equal(t, "cats.txt", results[0].Source)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestIngest_SkipsUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	a, fake := newTestApp(t, dir)
	ctx := context.Background()

	path := writeDoc(t, dir, "doc.txt", "some document content")
	require.NoError(t, a.Ingest(ctx, path))
	callsAfterFirst := fake.docCalls

	require.NoError(t, a.Ingest(ctx, path))
	assert.Equal(t, callsAfterFirst, fake.docCalls, "unchanged file must not be re-embedded")
	assert.Equal(t, 1, a.store.Count())
}

// Одинаковые имена файлов в разных директориях - разные документы,
// второй не должен быть пропущен как "не менявшийся"
func TestIngest_SameBasenameDifferentDirs(t *testing.T) {
	dir := t.TempDir()
	a, fake := newTestApp(t, dir)
	ctx := context.Background()

	dirA := filepath.Join(dir, "a")
	dirB := filepath.Join(dir, "b")
	require.NoError(t, os.MkdirAll(dirA, 0755))
	require.NoError(t, os.MkdirAll(dirB, 0755))

	first := writeDoc(t, dirA, "notes.txt", "cats purr loudly when happy")
	second := writeDoc(t, dirB, "notes.txt", "the stock market closed higher today")

	require.NoError(t, a.Ingest(ctx, first))
	require.NoError(t, a.Ingest(ctx, second))

	assert.Equal(t, 2, fake.docCalls, "both files must be embedded")
	assert.Equal(t, 2, a.store.Count())
	assert.Len(t, a.metadata.Files, 2)
}

func TestIngest_ReingestIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a, _ := newTestApp(t, dir)
	ctx := context.Background()

	path := writeDoc(t, dir, "doc.txt", "some document content")
	require.NoError(t, a.Ingest(ctx, path))
	count := a.store.Count()

	// Сбрасываем метаданные, имитируя повтор после падения на середине
	a.metadata.Files = make(map[string]FileInfo)
	require.NoError(t, a.Ingest(ctx, path))
	assert.Equal(t, count, a.store.Count())
}

func TestPersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	a, _ := newTestApp(t, dir)
	path := writeDoc(t, dir, "cats.txt", "cats purr loudly when happy")
	require.NoError(t, a.Ingest(ctx, path))
	count := a.store.Count()
	require.Greater(t, count, 0)

	// Новый App с теми же путями - состояние должно подняться с диска
	b, _ := newTestApp(t, dir)
	assert.Equal(t, count, b.store.Count())

	results, err := b.Query(ctx, "cats purr loudly when happy", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cats.txt", results[0].Source)
}

func TestResetStore(t *testing.T) {
	dir := t.TempDir()
	a, _ := newTestApp(t, dir)
	ctx := context.Background()

	path := writeDoc(t, dir, "doc.txt", "some document content")
	require.NoError(t, a.Ingest(ctx, path))
	require.NoError(t, a.resetStore())

	assert.Equal(t, 0, a.store.Count())
	_, err := a.Query(ctx, "anything", 1)
	assert.ErrorIs(t, err, store.ErrEmptyStore)
}
