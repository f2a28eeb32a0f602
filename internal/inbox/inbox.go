// Package inbox defines the inbox collaborator boundary. The actual provider
// integration (message search, attachment retrieval, token refresh) lives in
// the surrounding application.
package inbox

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DocumentRef identifies a candidate document returned by a search.
type DocumentRef struct {
	ID string
}

// Attachment describes a file attached to a message.
type Attachment struct {
	ID       string
	Filename string
	MimeType string
}

// Message is a fetched inbox document.
type Message struct {
	ID          string
	Subject     string
	From        string
	Body        string // plain-text body
	BodyHTML    string // html body, when the message carries one
	Attachments []Attachment
}

// IsPDF reports whether the attachment is a PDF by mime type or extension.
func (a Attachment) IsPDF() bool {
	if strings.EqualFold(a.MimeType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(a.Filename), ".pdf")
}

// Client is the inbox collaborator consumed by the scan orchestrator.
type Client interface {
	Search(ctx context.Context, start, end time.Time) ([]DocumentRef, error)
	Fetch(ctx context.Context, ref DocumentRef) (Message, error)
	FetchAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
}

// Factory resolves a per-user inbox client from stored credentials.
type Factory interface {
	ForUser(ctx context.Context, userID string) (Client, error)
}

// ErrNoCredentials means no inbox credentials exist for the user. The
// orchestrator treats this as a job-fatal failure.
var ErrNoCredentials = errors.New("inbox credentials not found")

// NoCredentialsFactory is the placeholder factory used until the surrounding
// application wires a provider.
type NoCredentialsFactory struct{}

// ForUser always returns ErrNoCredentials.
func (NoCredentialsFactory) ForUser(ctx context.Context, userID string) (Client, error) {
	_ = ctx
	_ = userID
	return nil, ErrNoCredentials
}
