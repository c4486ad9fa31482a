package rest

import (
	"net/http"

	"github.com/banjito/ampcalibration/internal/local"
	"github.com/banjito/ampcalibration/internal/profile"
	"github.com/banjito/ampcalibration/internal/provider"

	"go.uber.org/zap"
)

// User answers the sidebar of the signed-in user.
type User struct{ API }

func (ep User) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	res, ok := ep.require(w, r, pc)
	if !ok {
		return
	}

	var photoURL string
	if browser, ok := pc.Browser(); ok {
		url, _, err := ep.photos(r, browser, pc.Storage()).URL(r.Context(), res.User.ID)
		if err != nil {
			// the sidebar renders without a photo
			ep.requestLogger(r).Warn("photo url", zap.Error(err))
		}
		photoURL = url
	}

	ep.write(w, http.StatusOK, profile.NewSidebar(*res, photoURL))
}

func (api API) photos(r *http.Request, browser *provider.Browser, storage local.Storage) *profile.Photos {
	return profile.NewPhotos(
		api.requestLogger(r),
		browser.Storage().From(profile.PhotoBucket),
		storage,
	)
}
