package server

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/db"
)

// Store is the persistence surface the handlers use. *db.DB implements it; handler tests
// substitute an in-memory fake.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, in db.CreateUserInput) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	ListUsers(ctx context.Context, opts db.ListOptions) ([]db.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in db.UpdateUserInput) (*db.User, error)
	SoftDeleteUser(ctx context.Context, id uuid.UUID) error
	RestoreUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	HardDeleteUser(ctx context.Context, id uuid.UUID) (*db.CascadeSummary, error)

	CreateJobApplication(ctx context.Context, in db.CreateJobApplicationInput) (*db.JobApplication, error)
	GetJobApplication(ctx context.Context, id uuid.UUID) (*db.JobApplication, error)
	ListJobApplications(ctx context.Context, userID uuid.UUID, filters db.JobApplicationFilters) ([]db.JobApplication, error)
	UpdateJobApplication(ctx context.Context, id uuid.UUID, in db.UpdateJobApplicationInput) (*db.JobApplication, error)
	SoftDeleteJobApplication(ctx context.Context, id uuid.UUID) error
	RestoreJobApplication(ctx context.Context, id uuid.UUID) (*db.JobApplication, error)
	HardDeleteJobApplication(ctx context.Context, id uuid.UUID) (*db.CascadeSummary, error)

	CreateAssistantStep(ctx context.Context, in db.CreateAssistantStepInput) (*db.AssistantStep, error)
	GetAssistantStep(ctx context.Context, id uuid.UUID) (*db.AssistantStep, error)
	ListAssistantSteps(ctx context.Context, jobApplicationID uuid.UUID) ([]db.AssistantStep, error)
	UpdateAssistantStep(ctx context.Context, id uuid.UUID, in db.UpdateAssistantStepInput) (*db.AssistantStep, error)
	AdvanceAssistantStep(ctx context.Context, in db.AdvanceInput) (*db.AdvanceResult, error)
	GetAssistantHistory(ctx context.Context, jobApplicationID uuid.UUID) (*db.AssistantHistory, error)

	CreateDocument(ctx context.Context, in db.CreateDocumentInput) (*db.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*db.Document, error)
	ListDocuments(ctx context.Context, userID uuid.UUID, filters db.DocumentFilters) ([]db.Document, error)
	UpdateDocument(ctx context.Context, id uuid.UUID, in db.UpdateDocumentInput) (*db.Document, error)
	SoftDeleteDocument(ctx context.Context, id uuid.UUID) error
	RestoreDocument(ctx context.Context, id uuid.UUID) (*db.Document, error)
	HardDeleteDocument(ctx context.Context, id uuid.UUID) (*db.CascadeSummary, error)
	AttachDocument(ctx context.Context, documentID, jobApplicationID uuid.UUID) error
	DetachDocument(ctx context.Context, documentID, jobApplicationID uuid.UUID) error
	ListDocumentsForJobApplication(ctx context.Context, jobApplicationID uuid.UUID) ([]db.Document, error)
	ListJobApplicationsForDocument(ctx context.Context, documentID uuid.UUID) ([]db.JobApplication, error)

	CreateSession(ctx context.Context, in db.CreateSessionInput) (*db.UserSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*db.UserSession, error)
	GetSessionByToken(ctx context.Context, token string) (*db.UserSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID, opts db.ListOptions) ([]db.UserSession, error)
	DeactivateSession(ctx context.Context, id uuid.UUID) error
	DeleteSession(ctx context.Context, id uuid.UUID) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

var _ Store = (*db.DB)(nil)
