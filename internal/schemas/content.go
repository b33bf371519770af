package schemas

import (
	"embed"
	"fmt"
	"os"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/job-assistant/internal/enums"
)

//go:embed content/*.json
var contentFS embed.FS

// sharedSchema holds definitions referenced by the per-type schemas.
const sharedSchema = "content/profile.json"

var contentFiles = map[enums.DocumentType]string{
	enums.DocumentTypeResume:             "content/resume.json",
	enums.DocumentTypeCoverLetter:        "content/cover_letter.json",
	enums.DocumentTypeSupportingDocument: "content/supporting_document.json",
	enums.DocumentTypeMasterList:         "content/master_list.json",
	enums.DocumentTypeJobDescription:     "content/job_description.json",
	enums.DocumentTypeGeneral:            "content/general.json",
}

var (
	compileOnce sync.Once
	compiled    map[enums.DocumentType]*gojsonschema.Schema
	compileErr  error
)

func compileAll() {
	shared, err := contentFS.ReadFile(sharedSchema)
	if err != nil {
		compileErr = &SchemaLoadError{Path: sharedSchema, Message: "read failed", Cause: err}
		return
	}

	out := make(map[enums.DocumentType]*gojsonschema.Schema, len(contentFiles))
	for docType, path := range contentFiles {
		raw, err := contentFS.ReadFile(path)
		if err != nil {
			compileErr = &SchemaLoadError{Path: path, Message: "read failed", Cause: err}
			return
		}
		sl := gojsonschema.NewSchemaLoader()
		sl.Draft = gojsonschema.Draft7
		if err := sl.AddSchemas(gojsonschema.NewBytesLoader(shared)); err != nil {
			compileErr = &SchemaLoadError{Path: sharedSchema, Message: "schema compilation failed", Cause: err}
			return
		}
		schema, err := sl.Compile(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			compileErr = &SchemaLoadError{Path: path, Message: "schema compilation failed", Cause: err}
			return
		}
		out[docType] = schema
	}
	compiled = out
}

func schemaFor(docType enums.DocumentType) (*gojsonschema.Schema, error) {
	compileOnce.Do(compileAll)
	if compileErr != nil {
		return nil, compileErr
	}
	schema, ok := compiled[docType]
	if !ok {
		return nil, fmt.Errorf("no content schema for document type %q", docType)
	}
	return schema, nil
}

// ValidateContent checks structured document content against the schema of docType. It
// returns nil, a *ValidationError describing every failure, or a *SchemaLoadError when the
// embedded schemas are broken.
func ValidateContent(docType enums.DocumentType, raw []byte) error {
	schema, err := schemaFor(docType)
	if err != nil {
		return err
	}
	return validateWith(schema, gojsonschema.NewBytesLoader(raw))
}

// ValidateContentFile is ValidateContent for a JSON file on disk.
func ValidateContentFile(docType enums.DocumentType, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ValidateContent(docType, raw)
}

// ContentSchema returns the JSON Schema for docType. Resume and master list schemas refer to
// definitions in SharedContentSchema.
func ContentSchema(docType enums.DocumentType) ([]byte, error) {
	path, ok := contentFiles[docType]
	if !ok {
		return nil, fmt.Errorf("no content schema for document type %q", docType)
	}
	return contentFS.ReadFile(path)
}

// SharedContentSchema returns the schema holding the shared profile definitions.
func SharedContentSchema() ([]byte, error) {
	return contentFS.ReadFile(sharedSchema)
}
