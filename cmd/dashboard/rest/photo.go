package rest

import (
	"errors"
	"net/http"

	ihttp "github.com/banjito/ampcalibration/internal/http"
	"github.com/banjito/ampcalibration/internal/profile"
)

const photoField = "photo"

type photoResponse struct {
	URL string `json:"url"`
}

type GetPhoto struct{ API }

func (ep GetPhoto) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}
	res, ok := ep.require(w, r, pc)
	if !ok {
		return
	}
	browser, ok := ep.browser(w, r)
	if !ok {
		return
	}

	url, ok, err := ep.photos(r, browser, pc.Storage()).URL(r.Context(), res.User.ID)
	if err != nil {
		ihttp.ErrProvider(ep.logger, w, err)
		return
	}
	if !ok {
		ihttp.ErrNotFound(w)
		return
	}

	ep.write(w, http.StatusOK, photoResponse{URL: url})
}

type UploadPhoto struct{ API }

func (ep UploadPhoto) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}
	res, ok := ep.require(w, r, pc)
	if !ok {
		return
	}
	browser, ok := ep.browser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, profile.MaxPhotoSize+multipartOverhead)
	file, header, err := r.FormFile(photoField)
	if err != nil {
		ihttp.ErrInvalid(ep.logger, w, formFileError(err, profile.ErrPhotoTooLarge))
		return
	}
	defer file.Close()

	url, err := ep.photos(r, browser, pc.Storage()).Upload(r.Context(), res.User.ID, profile.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if errors.Is(err, profile.ErrPhotoTooLarge) || errors.Is(err, profile.ErrNotImage) {
		ihttp.ErrInvalid(ep.logger, w, err)
		return
	}
	if err != nil {
		ihttp.ErrProvider(ep.logger, w, err)
		return
	}

	ep.write(w, http.StatusCreated, photoResponse{URL: url})
}

type RemovePhoto struct{ API }

func (ep RemovePhoto) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}
	res, ok := ep.require(w, r, pc)
	if !ok {
		return
	}
	browser, ok := ep.browser(w, r)
	if !ok {
		return
	}

	if err := ep.photos(r, browser, pc.Storage()).Remove(r.Context(), res.User.ID); err != nil {
		ihttp.ErrProvider(ep.logger, w, err)
		return
	}

	ep.write(w, http.StatusNoContent, nil)
}
