// Package submission records the public contact and job application forms in
// the provider's database.
package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/rand"
)

const (
	// ContactTable is the table contact submissions are inserted into.
	ContactTable = "contact_submissions"

	// JobTable is the table job applications are inserted into.
	JobTable = "job_submissions"

	// ResumeBucket is the storage bucket resumes are uploaded to.
	ResumeBucket = "job-resumes"

	// MaxResumeSize is the largest resume accepted, in bytes.
	MaxResumeSize = 10 << 20

	resumeSuffixLen = 6
)

// ErrResumeTooLarge indicates a resume exceeds MaxResumeSize.
var ErrResumeTooLarge = errors.New("Resume file is too large. Maximum size is 10MB.")

// Provider is the set of provider capabilities submissions rely upon.
type Provider interface {
	From(table string) provider.Table
	Storage() provider.Storage
}

// Contact is a contact form submission.
type Contact struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  *string `json:"last_name"`
	Email     string  `json:"email" validate:"required,email"`
	Message   *string `json:"message"`
}

// NewContact creates a Contact from raw form values. Values are trimmed and
// empty optional values are omitted.
func NewContact(firstName, lastName, email, message string) Contact {
	return Contact{
		FirstName: strings.TrimSpace(firstName),
		LastName:  optional(lastName),
		Email:     strings.TrimSpace(email),
		Message:   optional(message),
	}
}

// Job is a job application.
type Job struct {
	Contact
	ResumeURL *string `json:"resume_url"`
}

// Resume is a resume uploaded with a Job.
type Resume struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// New creates a new Submitter instance.
func New(p Provider) *Submitter {
	return &Submitter{
		provider: p,
		now:      time.Now,
		random:   rand.GenerateAlphanumeric,
	}
}

// Submitter records form submissions.
type Submitter struct {
	provider Provider
	now      func() time.Time
	random   func(int) (string, error)
}

// Contact records c.
func (s Submitter) Contact(ctx context.Context, c Contact) error {
	if err := s.provider.From(ContactTable).Insert(ctx, c); err != nil {
		return fmt.Errorf("submit contact; error: %w", err)
	}
	return nil
}

// Job records job. If resume is not nil it is uploaded first and the job
// refers to it by its public URL.
func (s Submitter) Job(ctx context.Context, job Job, resume *Resume) error {
	if resume != nil {
		url, err := s.uploadResume(ctx, *resume)
		if err != nil {
			return err
		}
		job.ResumeURL = &url
	}

	if err := s.provider.From(JobTable).Insert(ctx, job); err != nil {
		return fmt.Errorf("submit job; error: %w", err)
	}
	return nil
}

func (s Submitter) uploadResume(ctx context.Context, resume Resume) (string, error) {
	if resume.Size > MaxResumeSize {
		return "", ErrResumeTooLarge
	}

	suffix, err := s.random(resumeSuffixLen)
	if err != nil {
		return "", fmt.Errorf("resume name; error: %w", err)
	}
	name := fmt.Sprintf("resumes/%d_%s%s", s.now().UnixMilli(), suffix, path.Ext(resume.Name))

	bucket := s.provider.Storage().From(ResumeBucket)
	if err := bucket.Upload(
		ctx,
		name,
		io.LimitReader(resume.Body, MaxResumeSize+1),
		provider.UploadOptions{ContentType: resume.ContentType},
	); err != nil {
		return "", fmt.Errorf("upload resume; error: %w", err)
	}
	return bucket.PublicURL(name), nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
