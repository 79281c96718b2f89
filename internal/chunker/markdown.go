package chunker

import (
	"fmt"
	"log"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownChunker разбивает markdown документы по заголовкам
type MarkdownChunker struct {
	config Config
}

// NewMarkdownChunker создаёт новый markdown chunker
func NewMarkdownChunker(config Config) *MarkdownChunker {
	return &MarkdownChunker{config: config}
}

func (m *MarkdownChunker) Name() string {
	return "markdown"
}

// documentStructure содержит информацию о структуре документа
type documentStructure struct {
	HeadingCounts   map[int]int // уровень заголовка -> количество
	TotalParagraphs int
}

func (m *MarkdownChunker) Chunk(content, source string) ([]Chunk, error) {
	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader([]byte(content))
	doc := md.Parser().Parse(reader)

	// Анализируем структуру документа
	structure := m.analyzeStructure(doc)

	// Выбираем уровень заголовков для разбиения
	level, err := m.selectHeadingLevel(structure)
	if err != nil {
		// Явно возвращаем ошибку - пусть вызывающий код решает что делать
		return nil, fmt.Errorf("markdown chunker cannot process this content: %w", err)
	}

	log.Printf("📊 [%s] Document structure: headings=%v, paragraphs=%d",
		m.Name(), structure.HeadingCounts, structure.TotalParagraphs)

	chunks := m.chunkByHeadings(doc, []byte(content), source, level)

	// Нумеруем чанки по порядку
	for i := range chunks {
		chunks[i].Index = i
	}

	log.Printf("✅ [%s] Created %d chunks (heading level %d)", m.Name(), len(chunks), level)
	return chunks, nil
}

// analyzeStructure анализирует структуру markdown документа
func (m *MarkdownChunker) analyzeStructure(doc ast.Node) documentStructure {
	structure := documentStructure{
		HeadingCounts: make(map[int]int),
	}

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if heading, ok := n.(*ast.Heading); ok {
				structure.HeadingCounts[heading.Level]++
			}
			if _, ok := n.(*ast.Paragraph); ok {
				structure.TotalParagraphs++
			}
		}
		return ast.WalkContinue, nil
	})

	return structure
}

// selectHeadingLevel выбирает уровень заголовков для разбиения
func (m *MarkdownChunker) selectHeadingLevel(structure documentStructure) (int, error) {
	// Проверяем заголовки от H2 до H4 (наиболее частые для структурированных документов)
	for level := 2; level <= 4; level++ {
		minHeadings := 3
		switch level {
		case 2:
			minHeadings = 3
		case 3:
			minHeadings = 5
		default:
			minHeadings = 10
		}

		if structure.HeadingCounts[level] >= minHeadings {
			return level, nil
		}
	}

	// Нет подходящей markdown структуры - возвращаем ошибку
	return 0, fmt.Errorf(
		"no suitable markdown structure found (headings: %v, paragraphs: %d)",
		structure.HeadingCounts, structure.TotalParagraphs,
	)
}

// chunkByHeadings разбивает документ по заголовкам указанного уровня
func (m *MarkdownChunker) chunkByHeadings(doc ast.Node, content []byte, source string, targetLevel int) []Chunk {
	var chunks []Chunk
	var currentChunk strings.Builder
	var currentSection string

	flush := func() {
		text := strings.TrimSpace(currentChunk.String())
		if text == "" {
			return
		}
		chunks = append(chunks, m.finalizeSection(text, source, currentSection)...)
		currentChunk.Reset()
	}

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if heading, ok := n.(*ast.Heading); ok {
				headingText := extractText(heading, content)

				// Заголовок целевого уровня или выше начинает новый чанк
				if heading.Level <= targetLevel {
					flush()
					currentSection = headingText
					currentChunk.WriteString(headingText + "\n\n")
				} else {
					// Подзаголовки включаем в текущий чанк
					currentChunk.WriteString("\n" + headingText + "\n\n")
				}
			} else if textNode, ok := n.(*ast.Text); ok {
				currentChunk.Write(textNode.Segment.Value(content))
			}
		} else {
			if _, ok := n.(*ast.Paragraph); ok {
				currentChunk.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})

	flush()
	return chunks
}

// finalizeSection разбивает секцию на части если она больше лимита
func (m *MarkdownChunker) finalizeSection(text, source, section string) []Chunk {
	if len(text) <= m.config.MaxChunkSize {
		return []Chunk{NewChunk(text, source, section, 0, map[string]string{
			"method": m.Name(),
		})}
	}
	return m.splitLargeSection(text, source, section)
}

// splitLargeSection разбивает большую секцию по параграфам с overlap
func (m *MarkdownChunker) splitLargeSection(text, source, section string) []Chunk {
	paragraphs := SplitByParagraphs(text)
	var chunks []Chunk
	var currentPart strings.Builder
	partNum := 1
	var prevTail string

	emit := func() {
		sectionWithPart := section
		if partNum > 1 {
			sectionWithPart = fmt.Sprintf("%s (часть %d)", section, partNum)
		}
		metadata := map[string]string{
			"method": m.Name(),
			"part":   fmt.Sprintf("%d", partNum),
		}
		chunks = append(chunks, NewChunk(currentPart.String(), source, sectionWithPart, 0, metadata))
	}

	for _, para := range paragraphs {
		// Если добавление параграфа превысит лимит - закрываем часть
		if currentPart.Len() > 0 && currentPart.Len()+len(para) > m.config.MaxChunkSize {
			emit()

			// Сохраняем хвост для overlap
			if m.config.Overlap > 0 {
				prevTail = GetLastNChars(currentPart.String(), m.config.Overlap)
			}

			currentPart.Reset()

			if prevTail != "" {
				currentPart.WriteString(prevTail)
				currentPart.WriteString("\n\n")
			}

			partNum++
		}

		if currentPart.Len() > 0 {
			currentPart.WriteString("\n\n")
		}
		currentPart.WriteString(para)
	}

	if currentPart.Len() > 0 {
		emit()
	}

	return chunks
}

// extractText извлекает текст из узла AST
func extractText(node ast.Node, source []byte) string {
	var buf strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			buf.Write(textNode.Segment.Value(source))
		}
	}
	return buf.String()
}
