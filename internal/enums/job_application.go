package enums

import "database/sql/driver"

// JobType is the employment type of a position.
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
	JobTypeFreelance  JobType = "freelance"
)

var jobTypes = []JobType{
	JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeTemporary, JobTypeFreelance,
}

// JobTypes returns every member of JobType.
func JobTypes() []JobType { return append([]JobType(nil), jobTypes...) }

// ParseJobType parses s as a JobType.
func ParseJobType(s string) (JobType, error) { return parse("job_type", jobTypes, s) }

func (t JobType) IsValid() bool { _, err := ParseJobType(string(t)); return err == nil }

func (t *JobType) UnmarshalJSON(data []byte) error { return unmarshal("job_type", jobTypes, data, t) }

func (t *JobType) Scan(src any) error { return scan("job_type", jobTypes, src, t) }

func (t JobType) Value() (driver.Value, error) { return value("job_type", jobTypes, t) }

// JobApplicationStatus tracks the hiring outcome of an application. It is independent of the
// assistant workflow status.
type JobApplicationStatus string

const (
	JobApplicationStatusApplied            JobApplicationStatus = "applied"
	JobApplicationStatusInterviewScheduled JobApplicationStatus = "interview_scheduled"
	JobApplicationStatusOffered            JobApplicationStatus = "offered"
	JobApplicationStatusRejected           JobApplicationStatus = "rejected"
	JobApplicationStatusAccepted           JobApplicationStatus = "accepted"
	JobApplicationStatusWithdrawn          JobApplicationStatus = "withdrawn"
	JobApplicationStatusPending            JobApplicationStatus = "pending"
)

var jobApplicationStatuses = []JobApplicationStatus{
	JobApplicationStatusApplied, JobApplicationStatusInterviewScheduled, JobApplicationStatusOffered,
	JobApplicationStatusRejected, JobApplicationStatusAccepted, JobApplicationStatusWithdrawn,
	JobApplicationStatusPending,
}

// JobApplicationStatuses returns every member of JobApplicationStatus.
func JobApplicationStatuses() []JobApplicationStatus {
	return append([]JobApplicationStatus(nil), jobApplicationStatuses...)
}

// ParseJobApplicationStatus parses s as a JobApplicationStatus.
func ParseJobApplicationStatus(s string) (JobApplicationStatus, error) {
	return parse("job_application_status", jobApplicationStatuses, s)
}

func (s JobApplicationStatus) IsValid() bool {
	_, err := ParseJobApplicationStatus(string(s))
	return err == nil
}

func (s *JobApplicationStatus) UnmarshalJSON(data []byte) error {
	return unmarshal("job_application_status", jobApplicationStatuses, data, s)
}

func (s *JobApplicationStatus) Scan(src any) error {
	return scan("job_application_status", jobApplicationStatuses, src, s)
}

func (s JobApplicationStatus) Value() (driver.Value, error) {
	return value("job_application_status", jobApplicationStatuses, s)
}

// JobApplicationSource is where the posting was found.
type JobApplicationSource string

const (
	JobApplicationSourceLinkedIn       JobApplicationSource = "linkedin"
	JobApplicationSourceCompanyWebsite JobApplicationSource = "company_website"
	JobApplicationSourceIndeed         JobApplicationSource = "indeed"
	JobApplicationSourceGlassdoor      JobApplicationSource = "glassdoor"
	JobApplicationSourceSocialMedia    JobApplicationSource = "social_media"
	JobApplicationSourceReferral       JobApplicationSource = "referral"
)

var jobApplicationSources = []JobApplicationSource{
	JobApplicationSourceLinkedIn, JobApplicationSourceCompanyWebsite, JobApplicationSourceIndeed,
	JobApplicationSourceGlassdoor, JobApplicationSourceSocialMedia, JobApplicationSourceReferral,
}

// JobApplicationSources returns every member of JobApplicationSource.
func JobApplicationSources() []JobApplicationSource {
	return append([]JobApplicationSource(nil), jobApplicationSources...)
}

// ParseJobApplicationSource parses s as a JobApplicationSource.
func ParseJobApplicationSource(s string) (JobApplicationSource, error) {
	return parse("job_application_source", jobApplicationSources, s)
}

func (s JobApplicationSource) IsValid() bool {
	_, err := ParseJobApplicationSource(string(s))
	return err == nil
}

func (s *JobApplicationSource) UnmarshalJSON(data []byte) error {
	return unmarshal("job_application_source", jobApplicationSources, data, s)
}

func (s *JobApplicationSource) Scan(src any) error {
	return scan("job_application_source", jobApplicationSources, src, s)
}

func (s JobApplicationSource) Value() (driver.Value, error) {
	return value("job_application_source", jobApplicationSources, s)
}

// JobApplicationPriority is the user's own ranking of an application.
type JobApplicationPriority string

const (
	JobApplicationPriorityHigh   JobApplicationPriority = "high"
	JobApplicationPriorityMedium JobApplicationPriority = "medium"
	JobApplicationPriorityLow    JobApplicationPriority = "low"
	JobApplicationPriorityNone   JobApplicationPriority = "none"
)

var jobApplicationPriorities = []JobApplicationPriority{
	JobApplicationPriorityHigh, JobApplicationPriorityMedium, JobApplicationPriorityLow, JobApplicationPriorityNone,
}

// JobApplicationPriorities returns every member of JobApplicationPriority.
func JobApplicationPriorities() []JobApplicationPriority {
	return append([]JobApplicationPriority(nil), jobApplicationPriorities...)
}

// ParseJobApplicationPriority parses s as a JobApplicationPriority.
func ParseJobApplicationPriority(s string) (JobApplicationPriority, error) {
	return parse("job_application_priority", jobApplicationPriorities, s)
}

func (p JobApplicationPriority) IsValid() bool {
	_, err := ParseJobApplicationPriority(string(p))
	return err == nil
}

func (p *JobApplicationPriority) UnmarshalJSON(data []byte) error {
	return unmarshal("job_application_priority", jobApplicationPriorities, data, p)
}

func (p *JobApplicationPriority) Scan(src any) error {
	return scan("job_application_priority", jobApplicationPriorities, src, p)
}

func (p JobApplicationPriority) Value() (driver.Value, error) {
	return value("job_application_priority", jobApplicationPriorities, p)
}
