package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
)

// Processor turns a remote document reference into cleaned plain text.
// It implements port.Extractor. Any failure is fatal for the document.
type Processor struct {
	downloader *Downloader
}

func NewProcessor(downloader *Downloader) *Processor {
	return &Processor{downloader: downloader}
}

// ExtractText downloads the document, detects its format, extracts the raw
// text and normalizes it for chunking.
func (p *Processor) ExtractText(url string) (string, error) {
	content, err := p.downloader.Download(url)
	if err != nil {
		return "", fmt.Errorf("document processing failed: %w", err)
	}

	var text string
	switch detectFormat(url, content) {
	case formatPDF:
		text, err = extractPDF(content)
	case formatDOCX:
		text, err = extractDOCX(content)
	default:
		return "", fmt.Errorf("unsupported document format: provide a PDF or DOCX file")
	}
	if err != nil {
		return "", fmt.Errorf("document processing failed: %w", err)
	}

	cleaned := normalize(text)
	if cleaned == "" {
		return "", fmt.Errorf("no text content found in document")
	}
	return cleaned, nil
}

type format int

const (
	formatUnknown format = iota
	formatPDF
	formatDOCX
)

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
)

// detectFormat sniffs by URL extension first, then by magic bytes.
func detectFormat(url string, content []byte) format {
	lower := strings.ToLower(url)
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}

	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return formatPDF
	case strings.HasSuffix(lower, ".docx"), strings.HasSuffix(lower, ".doc"):
		return formatDOCX
	}

	switch {
	case bytes.HasPrefix(content, pdfMagic):
		return formatPDF
	case bytes.HasPrefix(content, zipMagic):
		return formatDOCX
	}
	return formatUnknown
}

// normalize collapses whitespace and drops characters outside the retained
// set of word characters and common punctuation.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' ||
			unicode.IsSpace(r) || strings.ContainsRune(".,;:!?-()[]{}", r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
