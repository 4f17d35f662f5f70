package extract

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(body.String())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDownloaderAllowed(t *testing.T) {
	d := NewDownloader(0, []string{"**/*.pdf", "**/*.docx"}, time.Second)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/docs/policy.pdf", true},
		{"https://example.com/Policy.PDF", true},
		{"https://example.com/docs/policy.pdf?sig=abc123", true},
		{"https://example.com/report.docx", true},
		{"https://example.com/image.png", false},
		{"https://example.com/", false},
	}

	for _, tt := range tests {
		if got := d.Allowed(tt.url); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestDownloaderSizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer srv.Close()

	d := NewDownloader(1024, nil, time.Second)
	if _, err := d.Download(srv.URL + "/big.pdf"); err == nil {
		t.Error("expected error for oversized document")
	}
}

func TestDownloaderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := NewDownloader(0, nil, time.Second)
	if _, err := d.Download(srv.URL + "/missing.pdf"); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		content []byte
		want    format
	}{
		{"pdf extension", "https://x/a.pdf", nil, formatPDF},
		{"pdf extension with query", "https://x/a.pdf?sv=2023", nil, formatPDF},
		{"docx extension", "https://x/a.docx", nil, formatDOCX},
		{"doc extension", "https://x/a.doc", nil, formatDOCX},
		{"pdf magic", "https://x/download", []byte("%PDF-1.7 rest"), formatPDF},
		{"zip magic", "https://x/download", []byte("PK\x03\x04rest"), formatDOCX},
		{"unknown", "https://x/download", []byte("hello"), formatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.url, tt.content); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello   world", "hello world"},
		{"line\none\n\ttwo", "line one two"},
		{"keep (this), [and] {that}: ok!", "keep (this), [and] {that}: ok!"},
		{"strip*weird#chars@here", "stripweirdcharshere"},
		{"  padded  ", "padded"},
	}

	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractDOCX(t *testing.T) {
	content := buildDOCX(t, "Grace period is thirty days.", "Waiting period is 2 years.")

	text, err := extractDOCX(content)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Grace period is thirty days.") {
		t.Errorf("missing first paragraph: %q", text)
	}
	if !strings.Contains(text, "Waiting period is 2 years.") {
		t.Errorf("missing second paragraph: %q", text)
	}
}

func TestProcessorExtractsRemoteDOCX(t *testing.T) {
	docx := buildDOCX(t, "Grace period means thirty days for premium payment.")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(docx)
	}))
	defer srv.Close()

	p := NewProcessor(NewDownloader(0, nil, time.Second))

	text, err := p.ExtractText(srv.URL + "/policy.docx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Grace period means thirty days") {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestProcessorRejectsUnknownFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("just some text"))
	}))
	defer srv.Close()

	p := NewProcessor(NewDownloader(0, nil, time.Second))
	if _, err := p.ExtractText(srv.URL + "/mystery"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
