// Package extract converts uploaded file bytes into plain text suitable
// for chunking. Paragraphs are separated by blank lines so the chunker
// can split on them.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/ctangarife/legalbot/internal/models"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of content according to its file
// extension. Unrecognized extensions fail with ErrUnsupportedFileType.
func (e *Extractor) Extract(content []byte, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case ".txt", ".md":
		return sanitizeUTF8(string(content)), nil
	case ".html", ".htm":
		return extractHTML(content)
	case ".docx", ".doc":
		return extractDOCX(content)
	case ".pdf":
		return extractPDF(content)
	default:
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, fileType)
	}
}

func extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", models.ErrExtractionFailed, err)
	}

	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			parts = append(parts, collapseSpaces(text))
		}
	})

	// Fall back to the whole body for pages without block markup.
	if len(parts) == 0 {
		body := collapseSpaces(doc.Find("body").Text())
		if body == "" {
			return "", nil
		}
		return sanitizeUTF8(body), nil
	}

	return sanitizeUTF8(strings.Join(parts, "\n\n")), nil
}

// documentXML mirrors the subset of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

func extractDOCX(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx archive: %v", models.ErrExtractionFailed, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: read docx: %v", models.ErrExtractionFailed, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read docx: %v", models.ErrExtractionFailed, err)
		}

		var doc documentXML
		if err := xml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("%w: parse docx xml: %v", models.ErrExtractionFailed, err)
		}

		var parts []string
		for _, para := range doc.Body.Paragraphs {
			var b strings.Builder
			for _, run := range para.Runs {
				for _, text := range run.Text {
					b.WriteString(text.Content)
				}
			}
			if p := strings.TrimSpace(b.String()); p != "" {
				parts = append(parts, p)
			}
		}
		return sanitizeUTF8(strings.Join(parts, "\n\n")), nil
	}

	return "", fmt.Errorf("%w: docx archive has no word/document.xml", models.ErrExtractionFailed)
}

func extractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", models.ErrExtractionFailed, err)
	}

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Encrypted or malformed pages are skipped, not fatal.
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}

	return sanitizeUTF8(strings.Join(parts, "\n\n")), nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
