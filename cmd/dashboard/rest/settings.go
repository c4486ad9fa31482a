package rest

import (
	"net/http"

	ihttp "github.com/banjito/ampcalibration/internal/http"
	"github.com/banjito/ampcalibration/internal/settings"
)

type GetSettings struct{ API }

func (ep GetSettings) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	s, corrupt, err := settings.Load(r.Context(), pc.Storage())
	if err != nil {
		ihttp.ErrInternal(ep.logger, w, err)
		return
	}
	if corrupt {
		ep.requestLogger(r).Warn("saved settings unreadable; using defaults")
	}

	ep.write(w, http.StatusOK, s)
}

type PutSettings struct{ API }

func (ep PutSettings) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	s, _, err := settings.Load(r.Context(), pc.Storage())
	if err != nil {
		ihttp.ErrInternal(ep.logger, w, err)
		return
	}
	// fields absent from the body keep their current values
	if err := ep.read(w, r, &s); err != nil {
		return
	}
	if err := ep.valid.Struct(s); err != nil {
		ihttp.ErrBadRequest(ep.logger, w, err)
		return
	}

	if err := settings.Save(r.Context(), pc.Storage(), s); err != nil {
		ihttp.ErrInternal(ep.logger, w, err)
		return
	}

	ep.write(w, http.StatusOK, s)
}
