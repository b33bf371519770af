package migrate

import "strings"

// All returns the migrations in declaration order. Linearize decides the apply order.
func All() []Migration {
	return []Migration{
		initialEnums,
		usersAndSessions,
		jobApplications,
		documents,
		documentLinks,
		snakeCaseEnums,
		dropLegacyEnums,
		concurrencyAndContent,
	}
}

func entity(name string, cols ...Column) Table {
	base := []Column{
		{Name: "id", Type: "uuid", PrimaryKey: true, Default: "gen_random_uuid()"},
		{Name: "created_at", Type: "timestamptz", Default: "NOW()"},
		{Name: "updated_at", Type: "timestamptz", Default: "NOW()"},
		{Name: "is_deleted", Type: "boolean", Default: "false"},
		{Name: "deleted_at", Type: "timestamptz", Nullable: true},
	}
	return Table{Name: name, Columns: append(base, cols...)}
}

// Enum types of the first schema generation. Their labels are upper case.
var legacyEnums = []CreateEnum{
	{Name: "userrole", Values: []string{"SUPERUSER", "ADMIN", "USER", "GUEST"}},
	{Name: "ssoprovider", Values: []string{"GOOGLE", "MICROSOFT", "GITHUB", "FACEBOOK", "OKTA", "DISCORD", "APPLE", "CUSTOM"}},
	{Name: "jobtype", Values: []string{"FULL_TIME", "PART_TIME", "CONTRACT", "INTERNSHIP", "TEMPORARY", "FREELANCE"}},
	{Name: "jobapplicationstatus", Values: []string{"APPLIED", "INTERVIEW_SCHEDULED", "OFFERED", "REJECTED", "ACCEPTED", "WITHDRAWN", "PENDING"}},
	{Name: "assistantsteptype", Values: []string{"INITIAL", "MASTER_LIST", "TAILORED_RESUME", "TAILORED_COVER_LETTER", "CANDIDATE_VALIDATION", "APPLICATION_TIPS", "HIRING_MANAGER_REVIEW"}},
	{Name: "assistantstepstatus", Values: []string{"IN_PROGRESS", "COMPLETED", "FAILED", "CANCELLED", "NOT_STARTED"}},
	{Name: "documenttype", Values: []string{"RESUME", "COVER_LETTER", "SUPPORTING_DOCUMENT", "MASTER_LIST", "JOB_DESCRIPTION", "GENERAL"}},
	{Name: "documentstatus", Values: []string{"UPLOADED", "PROCESSING", "PARSED", "VALIDATED", "ERROR", "ARCHIVED", "PENDING"}},
	{Name: "documentvisibility", Values: []string{"PUBLIC", "PRIVATE", "INTERNAL", "CONFIDENTIAL"}},
	{Name: "documentsource", Values: []string{"USER_UPLOAD", "EMAIL", "EXTERNAL_API", "SCRAPED", "IMPORTED", "GENERATED"}},
	{Name: "documentversion", Values: []string{"DRAFT", "FINAL", "REVISED", "ARCHIVED", "TEMPLATE"}},
	{Name: "mimetype", Values: legacyFileLabels},
	{Name: "filetype", Values: legacyFileLabels},
}

var legacyFileLabels = []string{
	"PDF", "DOCX", "DOC", "CSV", "XLSX", "XLS", "PPTX", "PPT", "ODT", "ODS", "ODP", "RTF", "XML",
	"YAML", "MARKDOWN", "TXT", "HTML", "JSON", "UNKNOWN",
}

var initialEnums = Migration{
	ID:          "0001_initial_enums",
	Description: "enum types of the first schema generation",
	Operations: func() []Operation {
		ops := make([]Operation, len(legacyEnums))
		for i, e := range legacyEnums {
			ops[i] = e
		}
		return ops
	}(),
}

var usersAndSessions = Migration{
	ID:          "0002_users_and_sessions",
	Parents:     []string{"0001_initial_enums"},
	Description: "user and user_session tables",
	Operations: []Operation{
		CreateTable{Table: entity("user",
			Column{Name: "username", Type: "text", Unique: true},
			Column{Name: "email", Type: "text", Unique: true},
			Column{Name: "password", Type: "text"},
			Column{Name: "first_name", Type: "text", Nullable: true},
			Column{Name: "last_name", Type: "text", Nullable: true},
			Column{Name: "is_active", Type: "boolean", Default: "true"},
			Column{Name: "role", Type: "userrole", Default: "'USER'"},
			Column{Name: "sso_provider", Type: "ssoprovider", Nullable: true},
			Column{Name: "sso_id", Type: "text", Nullable: true},
			Column{Name: "sso_verified", Type: "boolean", Default: "false"},
			Column{Name: "profile_picture", Type: "text", Nullable: true},
			Column{Name: "dir", Type: "text", Nullable: true},
		)},
		CreateTable{Table: entity("user_session",
			Column{Name: "user_id", Type: "uuid", References: `"user"(id) ON DELETE CASCADE`},
			Column{Name: "session_token", Type: "text", Unique: true},
			Column{Name: "refresh_token", Type: "text", Nullable: true},
			Column{Name: "ip_address", Type: "text", Nullable: true},
			Column{Name: "user_agent", Type: "text", Nullable: true},
			Column{Name: "is_active", Type: "boolean", Default: "true"},
			Column{Name: "expires_at", Type: "timestamptz"},
		)},
	},
}

var jobApplications = Migration{
	ID:          "0003_job_applications",
	Parents:     []string{"0002_users_and_sessions"},
	Description: "job_application and assistant_step tables",
	Operations: []Operation{
		CreateTable{Table: entity("job_application",
			Column{Name: "user_id", Type: "uuid", References: `"user"(id) ON DELETE CASCADE`},
			Column{Name: "title", Type: "text", Nullable: true},
			Column{Name: "company_name", Type: "text", Nullable: true},
			Column{Name: "location", Type: "text", Nullable: true},
			Column{Name: "posting_url", Type: "text", Nullable: true},
			Column{Name: "notes", Type: "text", Nullable: true},
			Column{Name: "applied_at", Type: "timestamptz", Default: "NOW()"},
			Column{Name: "type", Type: "jobtype", Default: "'FULL_TIME'"},
			Column{Name: "application_status", Type: "jobapplicationstatus", Default: "'PENDING'"},
		)},
		CreateTable{Table: entity("assistant_step",
			Column{Name: "job_application_id", Type: "uuid", References: "job_application(id) ON DELETE CASCADE"},
			Column{Name: "step_name", Type: "assistantsteptype", Default: "'INITIAL'"},
			Column{Name: "step_status", Type: "assistantstepstatus", Default: "'NOT_STARTED'"},
			Column{Name: "step_order", Type: "integer", Nullable: true},
			Column{Name: "previous_step_id", Type: "uuid", Nullable: true, References: "assistant_step(id)"},
			Column{Name: "input_context", Type: "jsonb", Nullable: true},
			Column{Name: "result", Type: "jsonb", Nullable: true},
		)},
	},
}

// documents branches off the users migration and is merged with the job application
// branch by documentLinks.
var documents = Migration{
	ID:          "0004_documents",
	Parents:     []string{"0002_users_and_sessions"},
	Description: "document table",
	Operations: []Operation{
		CreateTable{Table: entity("document",
			Column{Name: "user_id", Type: "uuid", References: `"user"(id) ON DELETE CASCADE`},
			Column{Name: "title", Type: "text"},
			Column{Name: "content", Type: "text", Default: "''"},
			Column{Name: "file_path", Type: "text", Nullable: true},
			Column{Name: "type", Type: "documenttype", Default: "'GENERAL'"},
			Column{Name: "mime_type", Type: "mimetype", Nullable: true},
			Column{Name: "file_type", Type: "filetype", Nullable: true},
			Column{Name: "status", Type: "documentstatus", Default: "'PENDING'"},
			Column{Name: "visibility", Type: "documentvisibility", Default: "'PRIVATE'"},
			Column{Name: "source", Type: "documentsource", Default: "'USER_UPLOAD'"},
			Column{Name: "version", Type: "documentversion", Nullable: true},
			Column{Name: "tags", Type: "text[]", Default: "'{}'"},
			Column{Name: "description", Type: "text", Nullable: true},
		)},
	},
}

var documentLinks = Migration{
	ID:          "0005_document_links",
	Parents:     []string{"0003_job_applications", "0004_documents"},
	Description: "merge: document_job_application join table",
	Operations: []Operation{
		CreateTable{Table: Table{
			Name: "document_job_application",
			Columns: []Column{
				{Name: "document_id", Type: "uuid", References: "document(id) ON DELETE CASCADE"},
				{Name: "job_application_id", Type: "uuid", References: "job_application(id) ON DELETE CASCADE"},
				{Name: "created_at", Type: "timestamptz", Default: "NOW()"},
			},
			PrimaryKey: []string{"document_id", "job_application_id"},
		}},
	},
}

// Canonical snake_case types. Labels are lower case.
var userRoleEnum = CreateEnum{Name: "user_role", Values: []string{"superuser", "admin", "user", "guest"}}

var ssoProviderEnum = CreateEnum{Name: "sso_provider", Values: []string{"google", "microsoft", "github", "facebook", "okta", "discord", "apple", "custom"}}

var jobTypeEnum = CreateEnum{Name: "job_type", Values: []string{"full_time", "part_time", "contract", "internship", "temporary", "freelance"}}

var jobApplicationStatusEnum = CreateEnum{Name: "job_application_status", Values: []string{"applied", "interview_scheduled", "offered", "rejected", "accepted", "withdrawn", "pending"}}

var assistantStepTypeEnum = CreateEnum{Name: "assistant_step_type", Values: []string{
	"pending", "initial_synthesis", "master_list", "candidate_validation", "tailored_resume",
	"tailored_cover_letter", "hiring_manager_review", "linkedin_optimization",
	"interview_preparation", "skill_development_plan", "final_checklist",
}}

var assistantStepStatusEnum = CreateEnum{Name: "assistant_step_status", Values: []string{"in_progress", "completed", "failed", "cancelled", "not_started", "waiting_for_user_input"}}

var documentTypeEnum = CreateEnum{Name: "document_type", Values: []string{"resume", "cover_letter", "supporting_document", "master_list", "job_description", "general"}}

var documentStatusEnum = CreateEnum{Name: "document_status", Values: []string{"uploaded", "processing", "parsed", "validated", "error", "archived", "pending"}}

var documentVisibilityEnum = CreateEnum{Name: "document_visibility", Values: []string{"public", "private", "internal", "confidential"}}

var documentSourceEnum = CreateEnum{Name: "document_source", Values: []string{"user_upload", "email", "external_api", "scraped", "imported", "generated"}}

var documentVersionEnum = CreateEnum{Name: "document_version", Values: []string{"draft", "final", "revised", "archived", "template"}}

var mimeTypeEnum = CreateEnum{Name: "mime_type", Values: []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/msword",
	"text/csv",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.ms-powerpoint",
	"application/vnd.oasis.opendocument.text",
	"application/vnd.oasis.opendocument.spreadsheet",
	"application/vnd.oasis.opendocument.presentation",
	"application/rtf",
	"application/xml",
	"application/x-yaml",
	"text/markdown",
	"text/plain",
	"text/html",
	"application/json",
	"application/octet-stream",
}}

var fileTypeEnum = CreateEnum{Name: "file_type", Values: []string{
	"pdf", "docx", "doc", "csv", "xlsx", "xls", "pptx", "ppt", "odt", "ods", "odp", "rtf", "xml",
	"yaml", "md", "txt", "html", "json", "unknown",
}}

var jobApplicationSourceEnum = CreateEnum{Name: "job_application_source", Values: []string{"linkedin", "company_website", "indeed", "glassdoor", "social_media", "referral"}}

var jobApplicationPriorityEnum = CreateEnum{Name: "job_application_priority", Values: []string{"high", "medium", "low", "none"}}

// mimeFromLegacy maps lower-cased legacy labels onto media types.
func mimeFromLegacy() map[string]string {
	out := make(map[string]string, len(legacyFileLabels))
	for i, label := range legacyFileLabels {
		out[strings.ToLower(label)] = mimeTypeEnum.Values[i]
	}
	return out
}

var lower = Recast{Lower: true}

var snakeCaseEnums = Migration{
	ID:          "0006_snake_case_enums",
	Parents:     []string{"0005_document_links"},
	Description: "snake_case enum types with lower-case labels; assistant state on job_application",
	Operations: []Operation{
		userRoleEnum, ssoProviderEnum, jobTypeEnum, jobApplicationStatusEnum,
		assistantStepTypeEnum, assistantStepStatusEnum, documentTypeEnum, documentStatusEnum,
		documentVisibilityEnum, documentSourceEnum, documentVersionEnum, mimeTypeEnum, fileTypeEnum,

		AlterColumnType{Table: "user", Column: "role", From: "userrole", To: "user_role",
			FromDefault: "'USER'", ToDefault: "'user'", Recast: lower},
		AlterColumnType{Table: "user", Column: "sso_provider", From: "ssoprovider", To: "sso_provider", Recast: lower},
		AlterColumnType{Table: "job_application", Column: "type", From: "jobtype", To: "job_type",
			FromDefault: "'FULL_TIME'", ToDefault: "'full_time'", Recast: lower},
		AlterColumnType{Table: "job_application", Column: "application_status", From: "jobapplicationstatus", To: "job_application_status",
			FromDefault: "'PENDING'", ToDefault: "'pending'", Recast: lower},
		AlterColumnType{Table: "assistant_step", Column: "step_name", From: "assistantsteptype", To: "assistant_step_type",
			FromDefault: "'INITIAL'", ToDefault: "'pending'", Recast: Recast{Lower: true, Rename: map[string]string{
				"initial":          "initial_synthesis",
				"application_tips": "interview_preparation",
			}, Fallback: map[string]string{
				"pending":                "initial",
				"linkedin_optimization":  "application_tips",
				"skill_development_plan": "application_tips",
				"final_checklist":        "application_tips",
			}}},
		AlterColumnType{Table: "assistant_step", Column: "step_status", From: "assistantstepstatus", To: "assistant_step_status",
			FromDefault: "'NOT_STARTED'", ToDefault: "'not_started'", Recast: Recast{Lower: true, Fallback: map[string]string{
				"waiting_for_user_input": "in_progress",
			}}},
		AlterColumnType{Table: "document", Column: "type", From: "documenttype", To: "document_type",
			FromDefault: "'GENERAL'", ToDefault: "'general'", Recast: lower},
		AlterColumnType{Table: "document", Column: "mime_type", From: "mimetype", To: "mime_type",
			Recast: Recast{Lower: true, Rename: mimeFromLegacy()}},
		AlterColumnType{Table: "document", Column: "file_type", From: "filetype", To: "file_type",
			Recast: Recast{Lower: true, Rename: map[string]string{"markdown": "md"}}},
		AlterColumnType{Table: "document", Column: "status", From: "documentstatus", To: "document_status",
			FromDefault: "'PENDING'", ToDefault: "'pending'", Recast: lower},
		AlterColumnType{Table: "document", Column: "visibility", From: "documentvisibility", To: "document_visibility",
			FromDefault: "'PRIVATE'", ToDefault: "'private'", Recast: lower},
		AlterColumnType{Table: "document", Column: "source", From: "documentsource", To: "document_source",
			FromDefault: "'USER_UPLOAD'", ToDefault: "'user_upload'", Recast: lower},
		AlterColumnType{Table: "document", Column: "version", From: "documentversion", To: "document_version", Recast: lower},

		AddColumn{Table: "job_application", Column: Column{Name: "assistant_status", Type: "assistant_step_status", Default: "'not_started'"}},
		AddColumn{Table: "job_application", Column: Column{Name: "assistant_current_step", Type: "assistant_step_type", Default: "'pending'"}},
	},
}

var dropLegacyEnums = Migration{
	ID:          "0007_drop_legacy_enums",
	Parents:     []string{"0006_snake_case_enums"},
	Description: "drop the first generation enum types",
	Operations: func() []Operation {
		ops := make([]Operation, len(legacyEnums))
		for i, e := range legacyEnums {
			ops[i] = DropEnum(e)
		}
		return ops
	}(),
}

var concurrencyAndContent = Migration{
	ID:          "0008_concurrency_and_content",
	Parents:     []string{"0007_drop_legacy_enums"},
	Description: "lock_version, source and priority, structured document content, step chain guards",
	Operations: []Operation{
		jobApplicationSourceEnum,
		jobApplicationPriorityEnum,
		AddColumn{Table: "job_application", Column: Column{Name: "source", Type: "job_application_source", Nullable: true}},
		AddColumn{Table: "job_application", Column: Column{Name: "priority", Type: "job_application_priority", Default: "'none'"}},
		AddColumn{Table: "job_application", Column: Column{Name: "lock_version", Type: "integer", Default: "0"}},
		AddColumn{Table: "document", Column: Column{Name: "structured_content", Type: "jsonb", Nullable: true}},

		CreateIndex{Index: Index{Name: "assistant_step_job_application_id_step_order_key", Table: "assistant_step",
			Columns: []string{"job_application_id", "step_order"}, Unique: true}},
		CreateIndex{Index: Index{Name: "assistant_step_previous_step_id_key", Table: "assistant_step",
			Columns: []string{"previous_step_id"}, Unique: true}},
		CreateIndex{Index: Index{Name: "ix_job_application_user_id", Table: "job_application", Columns: []string{"user_id"}}},
		CreateIndex{Index: Index{Name: "ix_document_user_id", Table: "document", Columns: []string{"user_id"}}},
		CreateIndex{Index: Index{Name: "ix_document_job_application_job_application_id", Table: "document_job_application",
			Columns: []string{"job_application_id"}}},
		CreateIndex{Index: Index{Name: "ix_user_session_user_id", Table: "user_session", Columns: []string{"user_id"}}},
		CreateIndex{Index: Index{Name: "ix_user_session_expires_at", Table: "user_session", Columns: []string{"expires_at"},
			Where: "is_active"}},
	},
}
