package rest

import (
	"errors"
	"mime/multipart"
	"net/http"

	ihttp "github.com/banjito/ampcalibration/internal/http"
	"github.com/banjito/ampcalibration/internal/submission"
)

// multipartOverhead is the allowance for the form fields and multipart
// framing sent alongside an uploaded file.
const multipartOverhead = 1 << 20

var errFileRequired = errors.New("A file is required")

// formFileError describes why an uploaded file could not be read. tooLarge
// is returned if the request body exceeded its limit.
func formFileError(err error, tooLarge error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return tooLarge
	case errors.Is(err, http.ErrMissingFile):
		return errFileRequired
	default:
		return err
	}
}

type contactBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

func (b contactBody) contact() submission.Contact {
	return submission.NewContact(b.FirstName, b.LastName, b.Email, b.Message)
}

type Contact struct{ API }

func (ep Contact) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var b contactBody
	if err := ep.read(w, r, &b); err != nil {
		return
	}

	contact := b.contact()
	if err := ep.valid.Struct(contact); err != nil {
		ihttp.ErrBadRequest(ep.logger, w, err)
		return
	}

	browser, ok := ep.browser(w, r)
	if !ok {
		return
	}

	if err := submission.New(browser).Contact(r.Context(), contact); err != nil {
		ihttp.ErrProvider(ep.logger, w, err)
		return
	}

	ep.write(w, http.StatusCreated, nil)
}

const resumeField = "resume"

// JobApplication records a job application posted as a multipart form with
// an optional resume file.
type JobApplication struct{ API }

func (ep JobApplication) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, submission.MaxResumeSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		ihttp.ErrInvalid(ep.logger, w, formFileError(err, submission.ErrResumeTooLarge))
		return
	}

	job := submission.Job{
		Contact: contactBody{
			FirstName: r.FormValue("first_name"),
			LastName:  r.FormValue("last_name"),
			Email:     r.FormValue("email"),
			Message:   r.FormValue("message"),
		}.contact(),
	}
	if err := ep.valid.Struct(job); err != nil {
		ihttp.ErrBadRequest(ep.logger, w, err)
		return
	}

	browser, ok := ep.browser(w, r)
	if !ok {
		return
	}

	var resume *submission.Resume
	file, header, err := r.FormFile(resumeField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		ihttp.ErrInvalid(ep.logger, w, formFileError(err, submission.ErrResumeTooLarge))
		return
	default:
		defer file.Close()
		resume = newResume(header, file)
	}

	err = submission.New(browser).Job(r.Context(), job, resume)
	if errors.Is(err, submission.ErrResumeTooLarge) {
		ihttp.ErrInvalid(ep.logger, w, err)
		return
	}
	if err != nil {
		ihttp.ErrProvider(ep.logger, w, err)
		return
	}

	ep.write(w, http.StatusCreated, nil)
}

func newResume(header *multipart.FileHeader, file multipart.File) *submission.Resume {
	return &submission.Resume{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}
