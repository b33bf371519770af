package types

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/schemas"
)

// DocumentCreate is the body of POST /users/{id}/documents.
type DocumentCreate struct {
	Title             string                    `json:"title" validate:"required,min=1,max=255"`
	Content           string                    `json:"content"`
	FilePath          *string                   `json:"filePath,omitempty" validate:"omitempty,max=1024"`
	Type              *enums.DocumentType       `json:"type,omitempty" validate:"omitempty,enum"`
	MimeType          *enums.MimeType           `json:"mimeType,omitempty" validate:"omitempty,enum"`
	FileType          *enums.FileType           `json:"fileType,omitempty" validate:"omitempty,enum"`
	Status            *enums.DocumentStatus     `json:"status,omitempty" validate:"omitempty,enum"`
	Visibility        *enums.DocumentVisibility `json:"visibility,omitempty" validate:"omitempty,enum"`
	Source            *enums.DocumentSource     `json:"source,omitempty" validate:"omitempty,enum"`
	Version           *enums.DocumentVersion    `json:"version,omitempty" validate:"omitempty,enum"`
	Tags              []string                  `json:"tags,omitempty" validate:"omitempty,max=50,dive,min=1,max=50"`
	Description       *string                   `json:"description,omitempty" validate:"omitempty,max=1000"`
	StructuredContent json.RawMessage           `json:"structuredContent,omitempty"`
}

// Validate checks the fields and, when structured content is present, the content against
// the schema of the document type.
func (r *DocumentCreate) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	if len(r.StructuredContent) == 0 {
		return nil
	}
	docType := enums.DocumentTypeGeneral
	if r.Type != nil {
		docType = *r.Type
	}
	return ValidateStructuredContent(docType, r.StructuredContent)
}

func (r *DocumentCreate) Input(userID uuid.UUID) db.CreateDocumentInput {
	in := db.CreateDocumentInput{
		UserID:            userID,
		Title:             r.Title,
		Content:           r.Content,
		FilePath:          r.FilePath,
		MimeType:          r.MimeType,
		FileType:          r.FileType,
		Version:           r.Version,
		Tags:              NormalizeTags(r.Tags),
		Description:       r.Description,
		StructuredContent: r.StructuredContent,
	}
	if r.Type != nil {
		in.Type = *r.Type
	}
	if r.Status != nil {
		in.Status = *r.Status
	}
	if r.Visibility != nil {
		in.Visibility = *r.Visibility
	}
	if r.Source != nil {
		in.Source = *r.Source
	}
	return in
}

// DocumentUpdate is the body of PATCH /documents/{id}. Structured content is checked by the
// caller once the effective document type is known.
type DocumentUpdate struct {
	Title             *string                   `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Content           *string                   `json:"content,omitempty"`
	FilePath          *string                   `json:"filePath,omitempty" validate:"omitempty,max=1024"`
	Type              *enums.DocumentType       `json:"type,omitempty" validate:"omitempty,enum"`
	MimeType          *enums.MimeType           `json:"mimeType,omitempty" validate:"omitempty,enum"`
	FileType          *enums.FileType           `json:"fileType,omitempty" validate:"omitempty,enum"`
	Status            *enums.DocumentStatus     `json:"status,omitempty" validate:"omitempty,enum"`
	Visibility        *enums.DocumentVisibility `json:"visibility,omitempty" validate:"omitempty,enum"`
	Source            *enums.DocumentSource     `json:"source,omitempty" validate:"omitempty,enum"`
	Version           *enums.DocumentVersion    `json:"version,omitempty" validate:"omitempty,enum"`
	Tags              []string                  `json:"tags,omitempty" validate:"omitempty,max=50,dive,min=1,max=50"`
	Description       *string                   `json:"description,omitempty" validate:"omitempty,max=1000"`
	StructuredContent json.RawMessage           `json:"structuredContent,omitempty"`
}

func (r *DocumentUpdate) Validate() error { return Validate(r) }

func (r *DocumentUpdate) Input() db.UpdateDocumentInput {
	return db.UpdateDocumentInput{
		Title:             r.Title,
		Content:           r.Content,
		FilePath:          r.FilePath,
		Type:              r.Type,
		MimeType:          r.MimeType,
		FileType:          r.FileType,
		Status:            r.Status,
		Visibility:        r.Visibility,
		Source:            r.Source,
		Version:           r.Version,
		Tags:              NormalizeTags(r.Tags),
		Description:       r.Description,
		StructuredContent: r.StructuredContent,
	}
}

// DocumentResponse is a document as returned by the API.
type DocumentResponse struct {
	ID                uuid.UUID                `json:"id"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
	IsDeleted         bool                     `json:"isDeleted"`
	DeletedAt         *time.Time               `json:"deletedAt,omitempty"`
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

func DocumentToResponse(d *db.Document) DocumentResponse {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return DocumentResponse{
		ID:                d.ID,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		IsDeleted:         d.IsDeleted,
		DeletedAt:         d.DeletedAt,
		UserID:            d.UserID,
		Title:             d.Title,
		Content:           d.Content,
		FilePath:          d.FilePath,
		Type:              d.Type,
		MimeType:          d.MimeType,
		FileType:          d.FileType,
		Status:            d.Status,
		Visibility:        d.Visibility,
		Source:            d.Source,
		Version:           d.Version,
		Tags:              tags,
		Description:       d.Description,
		StructuredContent: d.StructuredContent,
	}
}

func DocumentsToResponse(docs []db.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = DocumentToResponse(&docs[i])
	}
	return out
}

// Create returns the request that recreates the document.
func (r DocumentResponse) Create() DocumentCreate {
	typ, status, visibility, source := r.Type, r.Status, r.Visibility, r.Source
	return DocumentCreate{
		Title:             r.Title,
		Content:           r.Content,
		FilePath:          r.FilePath,
		Type:              &typ,
		MimeType:          r.MimeType,
		FileType:          r.FileType,
		Status:            &status,
		Visibility:        &visibility,
		Source:            &source,
		Version:           r.Version,
		Tags:              r.Tags,
		Description:       r.Description,
		StructuredContent: r.StructuredContent,
	}
}

// ValidateStructuredContent checks raw against the content schema of docType and reports
// failures under the structuredContent field.
func ValidateStructuredContent(docType enums.DocumentType, raw json.RawMessage) error {
	err := schemas.ValidateContent(docType, raw)
	if err == nil {
		return nil
	}
	return schemaError(err)
}

func schemaError(err error) error {
	var verr *schemas.ValidationError
	if !errors.As(err, &verr) {
		var loadErr *schemas.SchemaLoadError
		if errors.As(err, &loadErr) {
			return err
		}
		return apperr.Invalid("structuredContent", err.Error())
	}
	out := &apperr.ValidationError{Fields: make([]apperr.FieldError, 0, len(verr.Errors))}
	for _, fe := range verr.Errors {
		field := "structuredContent"
		if fe.Field != "" && fe.Field != "(root)" {
			field += "." + fe.Field
		}
		out.Fields = append(out.Fields, apperr.FieldError{Field: field, Message: fe.Message})
	}
	return out
}
