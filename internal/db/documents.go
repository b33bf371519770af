package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/enums"
)

const documentColumns = `id, created_at, updated_at, is_deleted, deleted_at, user_id, title, content,
	file_path, type, mime_type, file_type, status, visibility, source, version, tags, description,
	structured_content`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	var structuredJSON []byte
	err := row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt, &d.IsDeleted, &d.DeletedAt,
		&d.UserID, &d.Title, &d.Content, &d.FilePath, &d.Type, &d.MimeType, &d.FileType,
		&d.Status, &d.Visibility, &d.Source, &d.Version, &d.Tags, &d.Description, &structuredJSON)
	if err != nil {
		return nil, err
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	d.StructuredContent = rawJSON(structuredJSON)
	return &d, nil
}

// fileFormat fills in the missing half of the mime/file type pair and rejects mismatches.
func fileFormat(mime *enums.MimeType, file *enums.FileType) (*enums.MimeType, *enums.FileType, error) {
	switch {
	case mime == nil && file == nil:
		return nil, nil, nil
	case mime == nil:
		m := file.MimeType()
		return &m, file, nil
	case file == nil:
		f := mime.FileType()
		return mime, &f, nil
	case !enums.Matches(*mime, *file):
		return nil, nil, apperr.Invalid("fileType", fmt.Sprintf("%s does not match mime type %s", *file, *mime))
	default:
		return mime, file, nil
	}
}

func (in *CreateDocumentInput) applyDefaults() {
	if in.Type == "" {
		in.Type = enums.DocumentTypeGeneral
	}
	if in.Status == "" {
		in.Status = enums.DocumentStatusPending
	}
	if in.Visibility == "" {
		in.Visibility = enums.DocumentVisibilityPrivate
	}
	if in.Source == "" {
		in.Source = enums.DocumentSourceUserUpload
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
}

// CreateDocument inserts a document owned by a live user.
func (db *DB) CreateDocument(ctx context.Context, in CreateDocumentInput) (*Document, error) {
	in.applyDefaults()
	mime, file, err := fileFormat(in.MimeType, in.FileType)
	if err != nil {
		return nil, err
	}

	var created *Document
	err = db.inTx(ctx, func(tx pgx.Tx) error {
		if err := requireUser(ctx, tx, in.UserID); err != nil {
			return err
		}

		query := `INSERT INTO document (user_id, title, content, file_path, type, mime_type, file_type,
		              status, visibility, source, version, tags, description, structured_content)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		          RETURNING ` + documentColumns
		d, err := scanDocument(tx.QueryRow(ctx, query,
			in.UserID, in.Title, in.Content, in.FilePath, in.Type, mime, file,
			in.Status, in.Visibility, in.Source, in.Version, in.Tags, in.Description,
			jsonArg(in.StructuredContent),
		))
		if err != nil {
			return mapError("create document", "Document", err)
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetDocument retrieves a live document. Returns nil, nil if not found.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM document WHERE id = $1 AND NOT is_deleted`
	d, err := scanDocument(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, mapError("get document", "Document", err)
	}
	return d, nil
}

// ListDocuments returns a user's documents, most recently updated first.
func (db *DB) ListDocuments(ctx context.Context, userID uuid.UUID, filters DocumentFilters) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM document WHERE user_id = $1`
	args := []interface{}{userID}
	argPos := 2

	if !filters.IncludeDeleted {
		query += " AND NOT is_deleted"
	}
	if filters.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argPos)
		args = append(args, *filters.Type)
		argPos++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filters.Status)
	}

	query += " ORDER BY updated_at DESC, id"
	page, args := pageClause(args, filters.ListOptions)
	return db.queryDocuments(ctx, query+page, args...)
}

func (db *DB) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list documents", "Document", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, mapError("scan document", "Document", err)
		}
		docs = append(docs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list documents", "Document", err)
	}
	return docs, nil
}

// UpdateDocument applies the non-nil fields of in. Changing one half of the mime/file pair
// re-derives the other.
func (db *DB) UpdateDocument(ctx context.Context, id uuid.UUID, in UpdateDocumentInput) (*Document, error) {
	mime, file, err := fileFormat(in.MimeType, in.FileType)
	if err != nil {
		return nil, err
	}

	var a assignments
	setIf(&a, "title", in.Title)
	setIf(&a, "content", in.Content)
	setIf(&a, "file_path", in.FilePath)
	setIf(&a, "type", in.Type)
	setIf(&a, "mime_type", mime)
	setIf(&a, "file_type", file)
	setIf(&a, "status", in.Status)
	setIf(&a, "visibility", in.Visibility)
	setIf(&a, "source", in.Source)
	setIf(&a, "version", in.Version)
	if in.Tags != nil {
		a.set("tags", in.Tags)
	}
	setIf(&a, "description", in.Description)
	a.setJSON("structured_content", in.StructuredContent)

	if a.empty() {
		d, err := db.GetDocument(ctx, id)
		if err == nil && d == nil {
			return nil, apperr.NotFound("Document", id)
		}
		return d, err
	}

	query := fmt.Sprintf(`UPDATE document SET %s WHERE id = %s AND NOT is_deleted RETURNING %s`,
		a.clause(), a.next(id), documentColumns)
	d, err := scanDocument(db.pool.QueryRow(ctx, query, a.args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Document", id)
		}
		return nil, mapError("update document", "Document", err)
	}
	return d, nil
}

// SoftDeleteDocument hides a document. Links to job applications are kept.
func (db *DB) SoftDeleteDocument(ctx context.Context, id uuid.UUID) error {
	return softDelete(ctx, db.pool, "document", "Document", id)
}

// RestoreDocument clears the deletion flag. The owner must be live.
func (db *DB) RestoreDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := `UPDATE document d SET is_deleted = false, deleted_at = NULL, updated_at = NOW()
	          FROM "user" u
	          WHERE d.id = $1 AND u.id = d.user_id AND NOT u.is_deleted
	          RETURNING ` + prefixed("d", documentColumns)
	d, err := scanDocument(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Document", id)
		}
		return nil, mapError("restore document", "Document", err)
	}
	return d, nil
}

// HardDeleteDocument removes a document and its links.
func (db *DB) HardDeleteDocument(ctx context.Context, id uuid.UUID) (*CascadeSummary, error) {
	var summary CascadeSummary
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM document_job_application WHERE document_id = $1`, id)
		if err != nil {
			return mapError("delete document links", "Document link", err)
		}
		summary.DocumentLinks = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM document WHERE id = $1`, id)
		if err != nil {
			return mapError("delete document", "Document", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Document", id)
		}
		summary.Documents = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// AttachDocument links a document to a job application of the same owner. Attaching an
// existing link is a no-op.
func (db *DB) AttachDocument(ctx context.Context, documentID, jobApplicationID uuid.UUID) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var docOwner, appOwner uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT user_id FROM document WHERE id = $1 AND NOT is_deleted FOR KEY SHARE`, documentID,
		).Scan(&docOwner)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperr.NotFound("Document", documentID)
			}
			return mapError("lookup document", "Document", err)
		}
		err = tx.QueryRow(ctx,
			`SELECT user_id FROM job_application WHERE id = $1 AND NOT is_deleted FOR KEY SHARE`, jobApplicationID,
		).Scan(&appOwner)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperr.NotFound("Job application", jobApplicationID)
			}
			return mapError("lookup job application", "Job application", err)
		}
		if docOwner != appOwner {
			return &apperr.PermissionDeniedError{Message: "Document and job application belong to different users."}
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO document_job_application (document_id, job_application_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			documentID, jobApplicationID,
		)
		if err != nil {
			return mapError("attach document", "Document link", err)
		}
		return nil
	})
}

// DetachDocument removes a link. The document itself is untouched.
func (db *DB) DetachDocument(ctx context.Context, documentID, jobApplicationID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM document_job_application WHERE document_id = $1 AND job_application_id = $2`,
		documentID, jobApplicationID,
	)
	if err != nil {
		return mapError("detach document", "Document link", err)
	}
	if tag.RowsAffected() == 0 {
		return &apperr.NotFoundError{Resource: "Document link"}
	}
	return nil
}

// ListDocumentsForJobApplication returns the live documents linked to an application.
func (db *DB) ListDocumentsForJobApplication(ctx context.Context, jobApplicationID uuid.UUID) ([]Document, error) {
	query := `SELECT ` + prefixed("d", documentColumns) + `
	          FROM document d
	          JOIN document_job_application dj ON dj.document_id = d.id
	          WHERE dj.job_application_id = $1 AND NOT d.is_deleted
	          ORDER BY d.updated_at DESC, d.id`
	return db.queryDocuments(ctx, query, jobApplicationID)
}

// ListJobApplicationsForDocument returns the live applications a document is linked to.
func (db *DB) ListJobApplicationsForDocument(ctx context.Context, documentID uuid.UUID) ([]JobApplication, error) {
	query := `SELECT ` + prefixed("j", jobApplicationColumns) + `
	          FROM job_application j
	          JOIN document_job_application dj ON dj.job_application_id = j.id
	          WHERE dj.document_id = $1 AND NOT j.is_deleted
	          ORDER BY j.applied_at DESC, j.id`
	rows, err := db.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, mapError("list linked job applications", "Job application", err)
	}
	defer rows.Close()

	apps := []JobApplication{}
	for rows.Next() {
		j, err := scanJobApplication(rows)
		if err != nil {
			return nil, mapError("scan job application", "Job application", err)
		}
		apps = append(apps, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list linked job applications", "Job application", err)
	}
	return apps, nil
}
