package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// ErrDocumentRead marks an unreadable or corrupt document source.
// Callers must treat it as fatal for the whole processing action.
var ErrDocumentRead = errors.New("document read error")

// ErrUnsupportedFormat is returned for file extensions no extractor handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Page is the extracted text of a single document page.
// Sheets and slides count as pages for formats without real ones.
type Page struct {
	Number int // 1-based
	Text   string
}

// ExtractPages pulls per-page text out of a document, preserving page order.
func ExtractPages(filePath string) ([]Page, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return extractPDF(filePath)
	case ".docx":
		return extractDOCX(filePath)
	case ".xlsx", ".ods":
		// excelize reads ODS through the same workbook API
		return extractXLSX(filePath)
	case ".pptx":
		return extractPPTX(filePath)
	case ".md", ".markdown":
		return extractMarkdown(filePath)
	case ".txt":
		return extractText(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func extractPDF(filePath string) ([]Page, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}

	var pages []Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrDocumentRead, i, err)
		}
		pages = append(pages, Page{Number: i, Text: pageText})
	}
	return pages, nil
}

func extractDOCX(filePath string) ([]Page, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}
	defer r.Close()

	doc := r.Editable()
	content := doc.GetContent()
	// DOCX has no page boundaries, the whole body is page 1
	return []Page{{Number: 1, Text: stripXMLTags(content)}}, nil
}

func extractXLSX(filePath string) ([]Page, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}
	defer f.Close()

	var pages []Page
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteString("\n")
		}
		// sheets stand in for pages, 1-based
		pages = append(pages, Page{Number: sheetNum + 1, Text: text.String()})
	}
	return pages, nil
}

func extractPPTX(filePath string) ([]Page, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}
	defer r.Close()

	var pages []Page
	for _, file := range r.File {
		slideNum, ok := slideNumber(file.Name)
		if !ok {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slideText := drawingMLText(string(data))
		if strings.TrimSpace(slideText) == "" {
			continue
		}
		// slides stand in for pages
		pages = append(pages, Page{Number: slideNum, Text: slideText})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

// slideNumber parses N out of "ppt/slides/slideN.xml". Zip entry order is
// not slide order, so the number comes from the name.
func slideNumber(name string) (int, bool) {
	const prefix = "ppt/slides/slide"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".xml") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".xml"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// drawingMLText pulls the text runs (<a:t> elements) out of slide XML
func drawingMLText(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		if endIdx := strings.Index(part, "</a:t>"); endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

func extractMarkdown(filePath string) ([]Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}

	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(data))

	var text strings.Builder
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			text.Write(node.Segment.Value(data))
			if node.HardLineBreak() || node.SoftLineBreak() {
				text.WriteString("\n")
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if text.Len() > 0 {
				text.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}
	return []Page{{Number: 1, Text: text.String()}}, nil
}

func extractText(filePath string) ([]Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}
	return []Page{{Number: 1, Text: string(data)}}, nil
}

// stripXMLTags drops angle-bracket markup left over from DOCX body content
func stripXMLTags(content string) string {
	var out bytes.Buffer
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return out.String()
}
