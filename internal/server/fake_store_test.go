package server

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/workflow"
)

// fakeStore is an in-memory Store for handler tests. It keeps the repository's contract:
// getters return nil, nil for missing or soft-deleted rows, mutations return NotFoundError.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	apps     map[uuid.UUID]*db.JobApplication
	steps    map[uuid.UUID]*db.AssistantStep
	docs     map[uuid.UUID]*db.Document
	links    map[[2]uuid.UUID]bool // document, job application
	sessions map[uuid.UUID]*db.UserSession
	pingErr  error
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uuid.UUID]*db.User{},
		apps:     map[uuid.UUID]*db.JobApplication{},
		steps:    map[uuid.UUID]*db.AssistantStep{},
		docs:     map[uuid.UUID]*db.Document{},
		links:    map[[2]uuid.UUID]bool{},
		sessions: map[uuid.UUID]*db.UserSession{},
	}
}

func newBase() db.Base {
	now := time.Now().UTC()
	return db.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func markDeleted(b *db.Base) {
	if b.IsDeleted {
		return
	}
	now := time.Now().UTC()
	b.IsDeleted = true
	b.DeletedAt = &now
}

func page[T any](items []T, opts db.ListOptions) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CreateUser(_ context.Context, in db.CreateUserInput) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == in.Username {
			return nil, &apperr.DuplicateResourceError{Resource: "Username"}
		}
		if u.Email == in.Email {
			return nil, &apperr.DuplicateResourceError{Resource: "Email"}
		}
	}
	role := in.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	u := &db.User{
		Base:           newBase(),
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   in.PasswordHash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		IsActive:       true,
		Role:           role,
		SSOProvider:    in.SSOProvider,
		SSOID:          in.SSOID,
		SSOVerified:    in.SSOVerified,
		ProfilePicture: in.ProfilePicture,
		Dir:            in.Dir,
	}
	f.users[u.ID] = u
	out := *u
	return &out, nil
}

func (f *fakeStore) liveUser(id uuid.UUID) *db.User {
	u, ok := f.users[id]
	if !ok || u.IsDeleted {
		return nil
	}
	return u
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.liveUser(id); u != nil {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (f *fakeStore) findUser(match func(*db.User) bool) *db.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if !u.IsDeleted && match(u) {
			out := *u
			return &out
		}
	}
	return nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*db.User, error) {
	return f.findUser(func(u *db.User) bool { return u.Username == username }), nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	return f.findUser(func(u *db.User) bool { return u.Email == email }), nil
}

func (f *fakeStore) ListUsers(_ context.Context, opts db.ListOptions) ([]db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.User{}
	for _, u := range f.users {
		if opts.IncludeDeleted || !u.IsDeleted {
			out = append(out, *u)
		}
	}
	slices.SortFunc(out, func(a, b db.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return page(out, opts), nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id uuid.UUID, in db.UpdateUserInput) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.liveUser(id)
	if u == nil {
		return nil, apperr.NotFound("User", id)
	}
	changed := assign(&u.Username, in.Username)
	changed = assign(&u.Email, in.Email) || changed
	changed = assign(&u.PasswordHash, in.PasswordHash) || changed
	changed = assignPtr(&u.FirstName, in.FirstName) || changed
	changed = assignPtr(&u.LastName, in.LastName) || changed
	changed = assign(&u.IsActive, in.IsActive) || changed
	changed = assign(&u.Role, in.Role) || changed
	changed = assignPtr(&u.SSOProvider, in.SSOProvider) || changed
	changed = assignPtr(&u.SSOID, in.SSOID) || changed
	changed = assign(&u.SSOVerified, in.SSOVerified) || changed
	changed = assignPtr(&u.ProfilePicture, in.ProfilePicture) || changed
	changed = assignPtr(&u.Dir, in.Dir) || changed
	if changed {
		u.UpdatedAt = time.Now().UTC()
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) SoftDeleteUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("User", id)
	}
	markDeleted(&u.Base)
	return nil
}

func (f *fakeStore) RestoreUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User", id)
	}
	u.IsDeleted, u.DeletedAt = false, nil
	out := *u
	return &out, nil
}

func (f *fakeStore) HardDeleteUser(_ context.Context, id uuid.UUID) (*db.CascadeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return nil, apperr.NotFound("User", id)
	}
	var summary db.CascadeSummary
	for appID, app := range f.apps {
		if app.UserID == id {
			addSummary(&summary, f.purgeApp(appID))
		}
	}
	for docID, doc := range f.docs {
		if doc.UserID == id {
			addSummary(&summary, f.purgeDoc(docID))
		}
	}
	for sid, s := range f.sessions {
		if s.UserID == id {
			delete(f.sessions, sid)
			summary.Sessions++
		}
	}
	delete(f.users, id)
	return &summary, nil
}

func addSummary(dst *db.CascadeSummary, src db.CascadeSummary) {
	dst.AssistantSteps += src.AssistantSteps
	dst.DocumentLinks += src.DocumentLinks
	dst.Documents += src.Documents
	dst.JobApplications += src.JobApplications
	dst.Sessions += src.Sessions
}

func (f *fakeStore) purgeApp(id uuid.UUID) db.CascadeSummary {
	var summary db.CascadeSummary
	for sid, s := range f.steps {
		if s.JobApplicationID == id {
			delete(f.steps, sid)
			summary.AssistantSteps++
		}
	}
	for key := range f.links {
		if key[1] == id {
			delete(f.links, key)
			summary.DocumentLinks++
		}
	}
	delete(f.apps, id)
	summary.JobApplications++
	return summary
}

func (f *fakeStore) purgeDoc(id uuid.UUID) db.CascadeSummary {
	var summary db.CascadeSummary
	for key := range f.links {
		if key[0] == id {
			delete(f.links, key)
			summary.DocumentLinks++
		}
	}
	delete(f.docs, id)
	summary.Documents++
	return summary
}

func (f *fakeStore) CreateJobApplication(_ context.Context, in db.CreateJobApplicationInput) (*db.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.liveUser(in.UserID) == nil {
		return nil, apperr.NotFound("User", in.UserID)
	}
	app := &db.JobApplication{
		Base:                 newBase(),
		UserID:               in.UserID,
		Title:                in.Title,
		CompanyName:          in.CompanyName,
		Location:             in.Location,
		PostingURL:           in.PostingURL,
		Notes:                in.Notes,
		Type:                 orEnum(in.Type, enums.JobTypeFullTime),
		ApplicationStatus:    orEnum(in.ApplicationStatus, enums.JobApplicationStatusPending),
		AssistantStatus:      orEnum(in.AssistantStatus, enums.AssistantStatusNotStarted),
		AssistantCurrentStep: orEnum(in.AssistantCurrentStep, enums.AssistantStepPending),
		Source:               in.Source,
		Priority:             orEnum(in.Priority, enums.JobApplicationPriorityNone),
	}
	app.AppliedAt = app.CreatedAt
	if in.AppliedAt != nil {
		app.AppliedAt = *in.AppliedAt
	}
	f.apps[app.ID] = app
	out := *app
	return &out, nil
}

func orEnum[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func (f *fakeStore) liveApp(id uuid.UUID) *db.JobApplication {
	a, ok := f.apps[id]
	if !ok || a.IsDeleted {
		return nil
	}
	return a
}

func (f *fakeStore) GetJobApplication(_ context.Context, id uuid.UUID) (*db.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.liveApp(id); a != nil {
		out := *a
		return &out, nil
	}
	return nil, nil
}

func (f *fakeStore) ListJobApplications(_ context.Context, userID uuid.UUID, filters db.JobApplicationFilters) ([]db.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.JobApplication{}
	for _, a := range f.apps {
		switch {
		case a.UserID != userID:
		case a.IsDeleted && !filters.IncludeDeleted:
		case filters.ApplicationStatus != nil && a.ApplicationStatus != *filters.ApplicationStatus:
		case filters.AssistantStatus != nil && a.AssistantStatus != *filters.AssistantStatus:
		case filters.Priority != nil && a.Priority != *filters.Priority:
		default:
			out = append(out, *a)
		}
	}
	return page(out, filters.ListOptions), nil
}

func (f *fakeStore) UpdateJobApplication(_ context.Context, id uuid.UUID, in db.UpdateJobApplicationInput) (*db.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.liveApp(id)
	if a == nil {
		return nil, apperr.NotFound("Job application", id)
	}
	next := *a
	changed := assignPtr(&next.Title, in.Title)
	changed = assignPtr(&next.CompanyName, in.CompanyName) || changed
	changed = assignPtr(&next.Location, in.Location) || changed
	changed = assignPtr(&next.PostingURL, in.PostingURL) || changed
	changed = assignPtr(&next.Notes, in.Notes) || changed
	changed = assign(&next.AppliedAt, in.AppliedAt) || changed
	changed = assign(&next.Type, in.Type) || changed
	changed = assign(&next.ApplicationStatus, in.ApplicationStatus) || changed
	changed = assign(&next.AssistantStatus, in.AssistantStatus) || changed
	changed = assignPtr(&next.Source, in.Source) || changed
	changed = assign(&next.Priority, in.Priority) || changed
	if !changed {
		out := *a
		return &out, nil
	}
	if in.ExpectedLockVersion != nil && *in.ExpectedLockVersion != a.LockVersion {
		return nil, &apperr.BusinessRuleViolationError{Rule: workflow.RuleConcurrentAdvance}
	}
	next.LockVersion++
	next.UpdatedAt = time.Now().UTC()
	*a = next
	out := next
	return &out, nil
}

func (f *fakeStore) SoftDeleteJobApplication(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return apperr.NotFound("Job application", id)
	}
	markDeleted(&a.Base)
	return nil
}

func (f *fakeStore) RestoreJobApplication(_ context.Context, id uuid.UUID) (*db.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok || f.liveUser(a.UserID) == nil {
		return nil, apperr.NotFound("Job application", id)
	}
	a.IsDeleted, a.DeletedAt = false, nil
	out := *a
	return &out, nil
}

func (f *fakeStore) HardDeleteJobApplication(_ context.Context, id uuid.UUID) (*db.CascadeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.apps[id]; !ok {
		return nil, apperr.NotFound("Job application", id)
	}
	summary := f.purgeApp(id)
	return &summary, nil
}

func (f *fakeStore) CreateAssistantStep(_ context.Context, in db.CreateAssistantStepInput) (*db.AssistantStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.liveApp(in.JobApplicationID) == nil {
		return nil, apperr.NotFound("Job application", in.JobApplicationID)
	}
	prev := in.PreviousStepID
	if prev == nil {
		if head := workflow.Head(f.chain(in.JobApplicationID)); head != nil {
			id := head.ID
			prev = &id
		}
	}
	return f.insertStep(in, prev), nil
}

func (f *fakeStore) insertStep(in db.CreateAssistantStepInput, prev *uuid.UUID) *db.AssistantStep {
	s := &db.AssistantStep{
		Base:             newBase(),
		JobApplicationID: in.JobApplicationID,
		StepName:         in.StepName,
		StepStatus:       orEnum(in.StepStatus, enums.AssistantStatusNotStarted),
		StepOrder:        in.StepOrder,
		PreviousStepID:   prev,
		InputContext:     in.InputContext,
	}
	f.steps[s.ID] = s
	out := *s
	return &out
}

// chain returns the validated step chain of an application; tests never build broken ones.
func (f *fakeStore) chain(appID uuid.UUID) []workflow.Step {
	var steps []workflow.Step
	for _, s := range f.steps {
		if s.JobApplicationID == appID && !s.IsDeleted {
			steps = append(steps, s.ChainStep())
		}
	}
	ordered, err := workflow.Validate(steps)
	if err != nil {
		panic(err)
	}
	return ordered
}

func (f *fakeStore) GetAssistantStep(_ context.Context, id uuid.UUID) (*db.AssistantStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.steps[id]
	if !ok || s.IsDeleted {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (f *fakeStore) ListAssistantSteps(ctx context.Context, appID uuid.UUID) ([]db.AssistantStep, error) {
	history, err := f.GetAssistantHistory(ctx, appID)
	if err != nil {
		return nil, err
	}
	return history.Steps, nil
}

func (f *fakeStore) UpdateAssistantStep(_ context.Context, id uuid.UUID, in db.UpdateAssistantStepInput) (*db.AssistantStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.steps[id]
	if !ok || s.IsDeleted {
		return nil, apperr.NotFound("Assistant step", id)
	}
	if in.StepStatus != nil {
		s.StepStatus = *in.StepStatus
	}
	if in.StepOrder != nil {
		s.StepOrder = in.StepOrder
	}
	if in.InputContext != nil {
		s.InputContext = in.InputContext
	}
	if in.Result != nil {
		s.Result = in.Result
	}
	out := *s
	return &out, nil
}

func (f *fakeStore) AdvanceAssistantStep(_ context.Context, in db.AdvanceInput) (*db.AdvanceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app := f.liveApp(in.JobApplicationID)
	if app == nil {
		return nil, apperr.NotFound("Job application", in.JobApplicationID)
	}
	if in.ExpectedLockVersion != nil && *in.ExpectedLockVersion != app.LockVersion {
		return nil, &apperr.BusinessRuleViolationError{Rule: workflow.RuleConcurrentAdvance}
	}

	plan, err := workflow.Plan(app.AssistantCurrentStep, app.AssistantStatus, in.Target, f.chain(app.ID))
	if err != nil {
		return nil, err
	}

	var result db.AdvanceResult
	if plan.CompletePrevious {
		prev := f.steps[*plan.PreviousID]
		prev.StepStatus = enums.AssistantStatusCompleted
		completed := *prev
		result.Completed = &completed
	}
	result.Step = f.insertStep(db.CreateAssistantStepInput{
		JobApplicationID: app.ID,
		StepName:         plan.To,
		StepStatus:       enums.AssistantStatusInProgress,
		StepOrder:        plan.Order,
		InputContext:     in.InputContext,
	}, plan.PreviousID)

	app.AssistantCurrentStep = plan.To
	app.AssistantStatus = plan.AppStatus
	app.LockVersion++
	updated := *app
	result.JobApplication = &updated
	return &result, nil
}

func (f *fakeStore) GetAssistantHistory(_ context.Context, appID uuid.UUID) (*db.AssistantHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app := f.liveApp(appID)
	if app == nil {
		return nil, apperr.NotFound("Job application", appID)
	}
	history := &db.AssistantHistory{Steps: []db.AssistantStep{}}
	copied := *app
	history.JobApplication = &copied
	for _, s := range f.chain(appID) {
		history.Steps = append(history.Steps, *f.steps[s.ID])
	}
	return history, nil
}

func (f *fakeStore) CreateDocument(_ context.Context, in db.CreateDocumentInput) (*db.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.liveUser(in.UserID) == nil {
		return nil, apperr.NotFound("User", in.UserID)
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	d := &db.Document{
		Base:              newBase(),
		UserID:            in.UserID,
		Title:             in.Title,
		Content:           in.Content,
		FilePath:          in.FilePath,
		Type:              orEnum(in.Type, enums.DocumentTypeGeneral),
		MimeType:          in.MimeType,
		FileType:          in.FileType,
		Status:            orEnum(in.Status, enums.DocumentStatusPending),
		Visibility:        orEnum(in.Visibility, enums.DocumentVisibilityPrivate),
		Source:            orEnum(in.Source, enums.DocumentSourceUserUpload),
		Version:           in.Version,
		Tags:              tags,
		Description:       in.Description,
		StructuredContent: in.StructuredContent,
	}
	f.docs[d.ID] = d
	out := *d
	return &out, nil
}

func (f *fakeStore) liveDoc(id uuid.UUID) *db.Document {
	d, ok := f.docs[id]
	if !ok || d.IsDeleted {
		return nil
	}
	return d
}

func (f *fakeStore) GetDocument(_ context.Context, id uuid.UUID) (*db.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.liveDoc(id); d != nil {
		out := *d
		return &out, nil
	}
	return nil, nil
}

func (f *fakeStore) ListDocuments(_ context.Context, userID uuid.UUID, filters db.DocumentFilters) ([]db.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.Document{}
	for _, d := range f.docs {
		switch {
		case d.UserID != userID:
		case d.IsDeleted && !filters.IncludeDeleted:
		case filters.Type != nil && d.Type != *filters.Type:
		case filters.Status != nil && d.Status != *filters.Status:
		default:
			out = append(out, *d)
		}
	}
	return page(out, filters.ListOptions), nil
}

func (f *fakeStore) UpdateDocument(_ context.Context, id uuid.UUID, in db.UpdateDocumentInput) (*db.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.liveDoc(id)
	if d == nil {
		return nil, apperr.NotFound("Document", id)
	}
	mime, file, err := pairFormat(in.MimeType, in.FileType)
	if err != nil {
		return nil, err
	}
	changed := assign(&d.Title, in.Title)
	changed = assign(&d.Content, in.Content) || changed
	changed = assignPtr(&d.FilePath, in.FilePath) || changed
	changed = assign(&d.Type, in.Type) || changed
	changed = assignPtr(&d.MimeType, mime) || changed
	changed = assignPtr(&d.FileType, file) || changed
	changed = assign(&d.Status, in.Status) || changed
	changed = assign(&d.Visibility, in.Visibility) || changed
	changed = assign(&d.Source, in.Source) || changed
	changed = assignPtr(&d.Version, in.Version) || changed
	if in.Tags != nil {
		d.Tags = slices.Clone(in.Tags)
		changed = true
	}
	changed = assignPtr(&d.Description, in.Description) || changed
	switch {
	case len(in.StructuredContent) == 0:
	case isJSONNull(in.StructuredContent):
		d.StructuredContent = nil
		changed = true
	default:
		d.StructuredContent = slices.Clone(in.StructuredContent)
		changed = true
	}
	if changed {
		d.UpdatedAt = time.Now().UTC()
	}
	out := *d
	return &out, nil
}

// pairFormat fills in the missing half of a mime/file pair the way the repository does.
func pairFormat(mime *enums.MimeType, file *enums.FileType) (*enums.MimeType, *enums.FileType, error) {
	switch {
	case mime == nil && file == nil:
		return nil, nil, nil
	case mime == nil:
		m := file.MimeType()
		return &m, file, nil
	case file == nil:
		ft := mime.FileType()
		return mime, &ft, nil
	case !enums.Matches(*mime, *file):
		return nil, nil, apperr.Invalid("fileType", string(*file)+" does not match mime type "+string(*mime))
	default:
		return mime, file, nil
	}
}

// assign copies *src into *dst when src is set and reports whether it did.
func assign[T any](dst *T, src *T) bool {
	if src == nil {
		return false
	}
	*dst = *src
	return true
}

// assignPtr is assign for nullable columns.
func assignPtr[T any](dst **T, src *T) bool {
	if src == nil {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func (f *fakeStore) SoftDeleteDocument(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return apperr.NotFound("Document", id)
	}
	markDeleted(&d.Base)
	return nil
}

func (f *fakeStore) RestoreDocument(_ context.Context, id uuid.UUID) (*db.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, apperr.NotFound("Document", id)
	}
	d.IsDeleted, d.DeletedAt = false, nil
	out := *d
	return &out, nil
}

func (f *fakeStore) HardDeleteDocument(_ context.Context, id uuid.UUID) (*db.CascadeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return nil, apperr.NotFound("Document", id)
	}
	summary := f.purgeDoc(id)
	return &summary, nil
}

func (f *fakeStore) AttachDocument(_ context.Context, docID, appID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.liveDoc(docID)
	if d == nil {
		return apperr.NotFound("Document", docID)
	}
	a := f.liveApp(appID)
	if a == nil {
		return apperr.NotFound("Job application", appID)
	}
	if d.UserID != a.UserID {
		return &apperr.PermissionDeniedError{Message: "Document and job application belong to different users."}
	}
	f.links[[2]uuid.UUID{docID, appID}] = true
	return nil
}

func (f *fakeStore) DetachDocument(_ context.Context, docID, appID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uuid.UUID{docID, appID}
	if !f.links[key] {
		return &apperr.NotFoundError{Resource: "Document link"}
	}
	delete(f.links, key)
	return nil
}

func (f *fakeStore) ListDocumentsForJobApplication(_ context.Context, appID uuid.UUID) ([]db.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.Document{}
	for key := range f.links {
		if d := f.liveDoc(key[0]); key[1] == appID && d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeStore) ListJobApplicationsForDocument(_ context.Context, docID uuid.UUID) ([]db.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.JobApplication{}
	for key := range f.links {
		if a := f.liveApp(key[1]); key[0] == docID && a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSession(_ context.Context, in db.CreateSessionInput) (*db.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.liveUser(in.UserID) == nil {
		return nil, apperr.NotFound("User", in.UserID)
	}
	s := &db.UserSession{
		Base:         newBase(),
		UserID:       in.UserID,
		SessionToken: in.SessionToken,
		RefreshToken: in.RefreshToken,
		IPAddress:    in.IPAddress,
		UserAgent:    in.UserAgent,
		IsActive:     true,
		ExpiresAt:    in.ExpiresAt,
	}
	f.sessions[s.ID] = s
	out := *s
	return &out, nil
}

func (f *fakeStore) GetSession(_ context.Context, id uuid.UUID) (*db.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (f *fakeStore) GetSessionByToken(_ context.Context, token string) (*db.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.SessionToken == token {
			out := *s
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListSessions(_ context.Context, userID uuid.UUID, opts db.ListOptions) ([]db.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.UserSession{}
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return page(out, opts), nil
}

func (f *fakeStore) DeactivateSession(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return apperr.NotFound("Session", id)
	}
	s.IsActive = false
	return nil
}

func (f *fakeStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return apperr.NotFound("Session", id)
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

var errStoreDown = errors.New("connection refused")

// rawJSON embeds a JSON literal unchanged in a request body map.
type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) { return []byte(r), nil }
