package extract

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Extraction quality thresholds. Under minPrimaryChars the primary method is
// considered to have missed (image-heavy or oddly encoded PDFs) and the
// fallback runs; under minUsableChars there is not enough signal to parse.
const (
	minPrimaryChars = 50
	minUsableChars  = 20
)

// ErrInsufficientText means no extraction method produced usable text.
var ErrInsufficientText = errors.New("could not extract text from PDF")

// PDF extracts text from a PDF document, trying the primary reader first and
// falling back to MuPDF rendering when the primary yields too little.
func PDF(data []byte) (string, error) {
	text, err := pdfPrimary(data)
	if err != nil || len(strings.TrimSpace(text)) < minPrimaryChars {
		if fallback, ferr := pdfFallback(data); ferr == nil && len(strings.TrimSpace(fallback)) > len(strings.TrimSpace(text)) {
			text = fallback
		}
	}
	if len(strings.TrimSpace(text)) < minUsableChars {
		return "", ErrInsufficientText
	}
	return text, nil
}

func pdfPrimary(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func pdfFallback(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var buf strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}
