package enums

import "database/sql/driver"

// MimeType is the wire media type of a stored file.
type MimeType string

// FileType is the short extension-like tag of a stored file. Every FileType has exactly one
// MimeType and the reverse.
type FileType string

const (
	MimeTypePDF      MimeType = "application/pdf"
	MimeTypeDOCX     MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypeDOC      MimeType = "application/msword"
	MimeTypeCSV      MimeType = "text/csv"
	MimeTypeXLSX     MimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeTypeXLS      MimeType = "application/vnd.ms-excel"
	MimeTypePPTX     MimeType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeTypePPT      MimeType = "application/vnd.ms-powerpoint"
	MimeTypeODT      MimeType = "application/vnd.oasis.opendocument.text"
	MimeTypeODS      MimeType = "application/vnd.oasis.opendocument.spreadsheet"
	MimeTypeODP      MimeType = "application/vnd.oasis.opendocument.presentation"
	MimeTypeRTF      MimeType = "application/rtf"
	MimeTypeXML      MimeType = "application/xml"
	MimeTypeYAML     MimeType = "application/x-yaml"
	MimeTypeMarkdown MimeType = "text/markdown"
	MimeTypeTXT      MimeType = "text/plain"
	MimeTypeHTML     MimeType = "text/html"
	MimeTypeJSON     MimeType = "application/json"
	MimeTypeUnknown  MimeType = "application/octet-stream"
)

const (
	FileTypePDF      FileType = "pdf"
	FileTypeDOCX     FileType = "docx"
	FileTypeDOC      FileType = "doc"
	FileTypeCSV      FileType = "csv"
	FileTypeXLSX     FileType = "xlsx"
	FileTypeXLS      FileType = "xls"
	FileTypePPTX     FileType = "pptx"
	FileTypePPT      FileType = "ppt"
	FileTypeODT      FileType = "odt"
	FileTypeODS      FileType = "ods"
	FileTypeODP      FileType = "odp"
	FileTypeRTF      FileType = "rtf"
	FileTypeXML      FileType = "xml"
	FileTypeYAML     FileType = "yaml"
	FileTypeMarkdown FileType = "md"
	FileTypeTXT      FileType = "txt"
	FileTypeHTML     FileType = "html"
	FileTypeJSON     FileType = "json"
	FileTypeUnknown  FileType = "unknown"
)

// The two lists are index-aligned.
var (
	mimeTypes = []MimeType{
		MimeTypePDF, MimeTypeDOCX, MimeTypeDOC, MimeTypeCSV, MimeTypeXLSX, MimeTypeXLS, MimeTypePPTX,
		MimeTypePPT, MimeTypeODT, MimeTypeODS, MimeTypeODP, MimeTypeRTF, MimeTypeXML, MimeTypeYAML,
		MimeTypeMarkdown, MimeTypeTXT, MimeTypeHTML, MimeTypeJSON, MimeTypeUnknown,
	}
	fileTypes = []FileType{
		FileTypePDF, FileTypeDOCX, FileTypeDOC, FileTypeCSV, FileTypeXLSX, FileTypeXLS, FileTypePPTX,
		FileTypePPT, FileTypeODT, FileTypeODS, FileTypeODP, FileTypeRTF, FileTypeXML, FileTypeYAML,
		FileTypeMarkdown, FileTypeTXT, FileTypeHTML, FileTypeJSON, FileTypeUnknown,
	}
)

// MimeTypes returns every member of MimeType.
func MimeTypes() []MimeType { return append([]MimeType(nil), mimeTypes...) }

// ParseMimeType parses s as a MimeType.
func ParseMimeType(s string) (MimeType, error) { return parse("mime_type", mimeTypes, s) }

func (m MimeType) IsValid() bool { _, err := ParseMimeType(string(m)); return err == nil }

// FileType returns the file type paired with m, or FileTypeUnknown for an invalid value.
func (m MimeType) FileType() FileType {
	for i, v := range mimeTypes {
		if v == m {
			return fileTypes[i]
		}
	}
	return FileTypeUnknown
}

func (m *MimeType) UnmarshalJSON(data []byte) error { return unmarshal("mime_type", mimeTypes, data, m) }

func (m *MimeType) Scan(src any) error { return scan("mime_type", mimeTypes, src, m) }

func (m MimeType) Value() (driver.Value, error) { return value("mime_type", mimeTypes, m) }

// FileTypes returns every member of FileType.
func FileTypes() []FileType { return append([]FileType(nil), fileTypes...) }

// ParseFileType parses s as a FileType.
func ParseFileType(s string) (FileType, error) { return parse("file_type", fileTypes, s) }

func (f FileType) IsValid() bool { _, err := ParseFileType(string(f)); return err == nil }

// MimeType returns the media type paired with f, or MimeTypeUnknown for an invalid value.
func (f FileType) MimeType() MimeType {
	for i, v := range fileTypes {
		if v == f {
			return mimeTypes[i]
		}
	}
	return MimeTypeUnknown
}

func (f *FileType) UnmarshalJSON(data []byte) error { return unmarshal("file_type", fileTypes, data, f) }

func (f *FileType) Scan(src any) error { return scan("file_type", fileTypes, src, f) }

func (f FileType) Value() (driver.Value, error) { return value("file_type", fileTypes, f) }

// Matches reports whether m and f describe the same format.
func Matches(m MimeType, f FileType) bool {
	return m.IsValid() && f.IsValid() && m.FileType() == f
}
