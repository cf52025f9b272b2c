package documents

import "time"

// Document represents an uploaded document owned by a user. DocumentType
// and Industry are free-form labels ("contract", "healthcare") used to
// scope analysis runs.
type Document struct {
	ID               string
	UserID           string
	FileName         string
	OriginalFilename string
	MimeType         string
	ContentType      string
	SizeBytes        int64
	DocumentType     string
	Industry         string
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
}
