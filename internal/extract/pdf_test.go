package extract

import (
	"context"
	"errors"
	"testing"
)

func TestPDFRejectsGarbage(t *testing.T) {
	_, err := PDF([]byte("this is not a pdf document at all"))
	if !errors.Is(err, ErrInsufficientText) {
		t.Fatalf("PDF error = %v, want ErrInsufficientText", err)
	}
}

func TestPDFRejectsEmptyInput(t *testing.T) {
	_, err := PDF(nil)
	if !errors.Is(err, ErrInsufficientText) {
		t.Fatalf("PDF error = %v, want ErrInsufficientText", err)
	}
}

func TestTextDispatch(t *testing.T) {
	tests := []struct {
		name string
		src  SourceType
		in   string
		want string
	}{
		{"plain text unchanged", SourceText, "Total: $5.00", "Total: $5.00"},
		{"html reduced", SourceHTML, "<p>Total: $5.00</p>", "Total: $5.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(context.Background(), []byte(tt.in), tt.src)
			if err != nil {
				t.Fatalf("Text: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Text = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := Text(context.Background(), []byte("x"), SourceType("docx")); err == nil {
		t.Fatalf("Text accepted an unsupported source type")
	}
}
