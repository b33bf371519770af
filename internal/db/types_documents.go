package db

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/enums"
)

// Document is a user-owned file or text. It is linked to job applications without being owned
// by them.
type Document struct {
	Base
	UserID            uuid.UUID                `json:"userId"`
	Title             string                   `json:"title"`
	Content           string                   `json:"content"`
	FilePath          *string                  `json:"filePath,omitempty"`
	Type              enums.DocumentType       `json:"type"`
	MimeType          *enums.MimeType          `json:"mimeType,omitempty"`
	FileType          *enums.FileType          `json:"fileType,omitempty"`
	Status            enums.DocumentStatus     `json:"status"`
	Visibility        enums.DocumentVisibility `json:"visibility"`
	Source            enums.DocumentSource     `json:"source"`
	Version           *enums.DocumentVersion   `json:"version,omitempty"`
	Tags              []string                 `json:"tags"`
	Description       *string                  `json:"description,omitempty"`
	StructuredContent json.RawMessage          `json:"structuredContent,omitempty"`
}

// CreateDocumentInput holds the fields for a new document. Zero enum values take the column
// defaults.
type CreateDocumentInput struct {
	UserID            uuid.UUID
	Title             string
	Content           string
	FilePath          *string
	Type              enums.DocumentType
	MimeType          *enums.MimeType
	FileType          *enums.FileType
	Status            enums.DocumentStatus
	Visibility        enums.DocumentVisibility
	Source            enums.DocumentSource
	Version           *enums.DocumentVersion
	Tags              []string
	Description       *string
	StructuredContent json.RawMessage
}

// UpdateDocumentInput holds optional changes to a document.
type UpdateDocumentInput struct {
	Title             *string
	Content           *string
	FilePath          *string
	Type              *enums.DocumentType
	MimeType          *enums.MimeType
	FileType          *enums.FileType
	Status            *enums.DocumentStatus
	Visibility        *enums.DocumentVisibility
	Source            *enums.DocumentSource
	Version           *enums.DocumentVersion
	Tags              []string
	Description       *string
	StructuredContent json.RawMessage
}

// DocumentFilters narrows ListDocuments.
type DocumentFilters struct {
	ListOptions
	Type   *enums.DocumentType
	Status *enums.DocumentStatus
}
