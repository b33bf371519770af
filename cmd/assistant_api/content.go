package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/observability"
	"github.com/jonathan/job-assistant/internal/schemas"
)

var (
	contentType  string
	contentInput string
	schemaType   string
	schemaShared bool
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Work with structured document content",
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a structured content JSON file",
	Long:  "Validates a JSON file against the content schema of a document type and lists every failing field.",
	RunE:  runContentValidate,
}

var contentSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a document type",
	RunE:  runContentSchema,
}

func init() {
	contentValidateCmd.Flags().StringVarP(&contentType, "type", "t", "", "Document type (required)")
	contentValidateCmd.Flags().StringVarP(&contentInput, "in", "i", "", "Path to content JSON file (required)")
	if err := contentValidateCmd.MarkFlagRequired("type"); err != nil {
		panic(fmt.Sprintf("failed to mark type flag as required: %v", err))
	}
	if err := contentValidateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	contentSchemaCmd.Flags().StringVarP(&schemaType, "type", "t", string(enums.DocumentTypeGeneral), "Document type")
	contentSchemaCmd.Flags().BoolVar(&schemaShared, "shared", false, "Print the shared profile definitions instead")

	contentCmd.AddCommand(contentValidateCmd, contentSchemaCmd)
	rootCmd.AddCommand(contentCmd)
}

func runContentValidate(cmd *cobra.Command, _ []string) error {
	docType, err := enums.ParseDocumentType(contentType)
	if err != nil {
		return err
	}
	if _, err := os.Stat(contentInput); os.IsNotExist(err) {
		return fmt.Errorf("content file not found: %s", contentInput)
	}

	err = schemas.ValidateContentFile(docType, contentInput)
	var verr *schemas.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}

	out := cmd.OutOrStdout()
	if verbose {
		var fields []schemas.FieldError
		if verr != nil {
			fields = verr.Errors
		}
		observability.NewPrinter(out).PrintContentErrors(docType, fields)
	}
	if verr != nil {
		if !verbose {
			fmt.Fprint(out, verr.Error())
		}
		return fmt.Errorf("%s content is invalid: %d error(s)", docType, len(verr.Errors))
	}

	fmt.Fprintf(out, "%s is valid %s content\n", contentInput, docType)
	return nil
}

func runContentSchema(cmd *cobra.Command, _ []string) error {
	if schemaShared {
		raw, err := schemas.SharedContentSchema()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	}
	docType, err := enums.ParseDocumentType(schemaType)
	if err != nil {
		return err
	}
	raw, err := schemas.ContentSchema(docType)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(raw)
	return err
}
