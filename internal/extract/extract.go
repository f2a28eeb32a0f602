// Package extract converts raw billing documents (PDF, HTML, plain text)
// into flat text blobs for field extraction.
package extract

import (
	"context"
	"fmt"
)

// SourceType tags where a document's text came from.
type SourceType string

const (
	SourcePDF  SourceType = "pdf"
	SourceHTML SourceType = "html"
	SourceText SourceType = "text"
)

// Text extracts a flat text blob from raw document bytes.
func Text(ctx context.Context, data []byte, src SourceType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch src {
	case SourcePDF:
		return PDF(data)
	case SourceHTML:
		return HTML(string(data)), nil
	case SourceText:
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported source type: %s", src)
	}
}
