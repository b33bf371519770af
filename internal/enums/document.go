package enums

import "database/sql/driver"

// DocumentType classifies what a document is for.
type DocumentType string

const (
	DocumentTypeResume             DocumentType = "resume"
	DocumentTypeCoverLetter        DocumentType = "cover_letter"
	DocumentTypeSupportingDocument DocumentType = "supporting_document"
	DocumentTypeMasterList         DocumentType = "master_list"
	DocumentTypeJobDescription     DocumentType = "job_description"
	DocumentTypeGeneral            DocumentType = "general"
)

var documentTypes = []DocumentType{
	DocumentTypeResume, DocumentTypeCoverLetter, DocumentTypeSupportingDocument,
	DocumentTypeMasterList, DocumentTypeJobDescription, DocumentTypeGeneral,
}

// DocumentTypes returns every member of DocumentType.
func DocumentTypes() []DocumentType { return append([]DocumentType(nil), documentTypes...) }

// ParseDocumentType parses s as a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	return parse("document_type", documentTypes, s)
}

func (t DocumentType) IsValid() bool { _, err := ParseDocumentType(string(t)); return err == nil }

func (t *DocumentType) UnmarshalJSON(data []byte) error {
	return unmarshal("document_type", documentTypes, data, t)
}

func (t *DocumentType) Scan(src any) error { return scan("document_type", documentTypes, src, t) }

func (t DocumentType) Value() (driver.Value, error) { return value("document_type", documentTypes, t) }

// DocumentStatus is the processing state of a document.
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusParsed     DocumentStatus = "parsed"
	DocumentStatusValidated  DocumentStatus = "validated"
	DocumentStatusError      DocumentStatus = "error"
	DocumentStatusArchived   DocumentStatus = "archived"
	DocumentStatusPending    DocumentStatus = "pending"
)

var documentStatuses = []DocumentStatus{
	DocumentStatusUploaded, DocumentStatusProcessing, DocumentStatusParsed, DocumentStatusValidated,
	DocumentStatusError, DocumentStatusArchived, DocumentStatusPending,
}

// DocumentStatuses returns every member of DocumentStatus.
func DocumentStatuses() []DocumentStatus { return append([]DocumentStatus(nil), documentStatuses...) }

// ParseDocumentStatus parses s as a DocumentStatus.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	return parse("document_status", documentStatuses, s)
}

func (s DocumentStatus) IsValid() bool { _, err := ParseDocumentStatus(string(s)); return err == nil }

func (s *DocumentStatus) UnmarshalJSON(data []byte) error {
	return unmarshal("document_status", documentStatuses, data, s)
}

func (s *DocumentStatus) Scan(src any) error {
	return scan("document_status", documentStatuses, src, s)
}

func (s DocumentStatus) Value() (driver.Value, error) {
	return value("document_status", documentStatuses, s)
}

// DocumentVisibility controls who may see a document.
type DocumentVisibility string

const (
	DocumentVisibilityPublic       DocumentVisibility = "public"
	DocumentVisibilityPrivate      DocumentVisibility = "private"
	DocumentVisibilityInternal     DocumentVisibility = "internal"
	DocumentVisibilityConfidential DocumentVisibility = "confidential"
)

var documentVisibilities = []DocumentVisibility{
	DocumentVisibilityPublic, DocumentVisibilityPrivate, DocumentVisibilityInternal, DocumentVisibilityConfidential,
}

// DocumentVisibilities returns every member of DocumentVisibility.
func DocumentVisibilities() []DocumentVisibility {
	return append([]DocumentVisibility(nil), documentVisibilities...)
}

// ParseDocumentVisibility parses s as a DocumentVisibility.
func ParseDocumentVisibility(s string) (DocumentVisibility, error) {
	return parse("document_visibility", documentVisibilities, s)
}

func (v DocumentVisibility) IsValid() bool {
	_, err := ParseDocumentVisibility(string(v))
	return err == nil
}

func (v *DocumentVisibility) UnmarshalJSON(data []byte) error {
	return unmarshal("document_visibility", documentVisibilities, data, v)
}

func (v *DocumentVisibility) Scan(src any) error {
	return scan("document_visibility", documentVisibilities, src, v)
}

func (v DocumentVisibility) Value() (driver.Value, error) {
	return value("document_visibility", documentVisibilities, v)
}

// DocumentSource records how a document entered the system.
type DocumentSource string

const (
	DocumentSourceUserUpload  DocumentSource = "user_upload"
	DocumentSourceEmail       DocumentSource = "email"
	DocumentSourceExternalAPI DocumentSource = "external_api"
	DocumentSourceScraped     DocumentSource = "scraped"
	DocumentSourceImported    DocumentSource = "imported"
	DocumentSourceGenerated   DocumentSource = "generated"
)

var documentSources = []DocumentSource{
	DocumentSourceUserUpload, DocumentSourceEmail, DocumentSourceExternalAPI,
	DocumentSourceScraped, DocumentSourceImported, DocumentSourceGenerated,
}

// DocumentSources returns every member of DocumentSource.
func DocumentSources() []DocumentSource { return append([]DocumentSource(nil), documentSources...) }

// ParseDocumentSource parses s as a DocumentSource.
func ParseDocumentSource(s string) (DocumentSource, error) {
	return parse("document_source", documentSources, s)
}

func (s DocumentSource) IsValid() bool { _, err := ParseDocumentSource(string(s)); return err == nil }

func (s *DocumentSource) UnmarshalJSON(data []byte) error {
	return unmarshal("document_source", documentSources, data, s)
}

func (s *DocumentSource) Scan(src any) error {
	return scan("document_source", documentSources, src, s)
}

func (s DocumentSource) Value() (driver.Value, error) {
	return value("document_source", documentSources, s)
}

// DocumentVersion labels the revision state of a document.
type DocumentVersion string

const (
	DocumentVersionDraft    DocumentVersion = "draft"
	DocumentVersionFinal    DocumentVersion = "final"
	DocumentVersionRevised  DocumentVersion = "revised"
	DocumentVersionArchived DocumentVersion = "archived"
	DocumentVersionTemplate DocumentVersion = "template"
)

var documentVersions = []DocumentVersion{
	DocumentVersionDraft, DocumentVersionFinal, DocumentVersionRevised, DocumentVersionArchived, DocumentVersionTemplate,
}

// DocumentVersions returns every member of DocumentVersion.
func DocumentVersions() []DocumentVersion {
	return append([]DocumentVersion(nil), documentVersions...)
}

// ParseDocumentVersion parses s as a DocumentVersion.
func ParseDocumentVersion(s string) (DocumentVersion, error) {
	return parse("document_version", documentVersions, s)
}

func (v DocumentVersion) IsValid() bool { _, err := ParseDocumentVersion(string(v)); return err == nil }

func (v *DocumentVersion) UnmarshalJSON(data []byte) error {
	return unmarshal("document_version", documentVersions, data, v)
}

func (v *DocumentVersion) Scan(src any) error {
	return scan("document_version", documentVersions, src, v)
}

func (v DocumentVersion) Value() (driver.Value, error) {
	return value("document_version", documentVersions, v)
}

// SkillProficiency is the self-assessed level of a skill inside structured document content.
// It is not stored as a column type.
type SkillProficiency string

const (
	SkillProficient   SkillProficiency = "proficient"
	SkillExperienced  SkillProficiency = "experienced"
	SkillFamiliarWith SkillProficiency = "familiar_with"
)

var skillProficiencies = []SkillProficiency{SkillProficient, SkillExperienced, SkillFamiliarWith}

// SkillProficiencies returns every member of SkillProficiency.
func SkillProficiencies() []SkillProficiency {
	return append([]SkillProficiency(nil), skillProficiencies...)
}

// ParseSkillProficiency parses s as a SkillProficiency.
func ParseSkillProficiency(s string) (SkillProficiency, error) {
	return parse("skill_proficiency", skillProficiencies, s)
}

func (p SkillProficiency) IsValid() bool {
	_, err := ParseSkillProficiency(string(p))
	return err == nil
}

func (p *SkillProficiency) UnmarshalJSON(data []byte) error {
	return unmarshal("skill_proficiency", skillProficiencies, data, p)
}
