package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/banjito/ampcalibration/internal/auth"
	ihttp "github.com/banjito/ampcalibration/internal/http"
	ilogger "github.com/banjito/ampcalibration/internal/logger"
	"github.com/banjito/ampcalibration/internal/page"
	"github.com/banjito/ampcalibration/internal/provider"

	"go.uber.org/zap"
)

func (api API) read(w http.ResponseWriter, r *http.Request, i interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(i); err != nil {
		ihttp.ErrBadRequest(api.logger, w, fmt.Errorf("decode body; error: %w", err))
		return err
	}
	return nil
}

func (api API) write(w http.ResponseWriter, code int, i interface{}) {
	if i == nil {
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(i); err != nil {
		api.logger.Error("encode response", zap.Error(err))
	}
}

// requestLogger is the API's logger decorated with the request's fields.
func (api API) requestLogger(r *http.Request) *zap.Logger {
	return ilogger.FromContext(r.Context(), api.logger)
}

// page retrieves the page.Context of the request.
func (api API) page(w http.ResponseWriter, r *http.Request) (*page.Context, bool) {
	pc := page.FromContext(r.Context())
	if pc == nil {
		ihttp.ErrInternal(api.logger, w, errors.New("page context missing"))
		return nil, false
	}
	return pc, true
}

// browser retrieves the provider client acting for the request's browser. If
// the provider client has not been bootstrapped 503 is answered.
func (api API) browser(w http.ResponseWriter, r *http.Request) (*provider.Browser, bool) {
	pc, ok := api.page(w, r)
	if !ok {
		return nil, false
	}
	browser, ok := pc.Browser()
	if !ok {
		ihttp.ErrServiceUnavailable(w)
		return nil, false
	}
	return browser, true
}

func (api API) authenticator(r *http.Request, pc *page.Context) *auth.Authenticator {
	return auth.NewAuthenticator(api.requestLogger(r), pc, pc.Roles())
}

func (api API) guard(r *http.Request, pc *page.Context) *auth.Guard {
	logger := api.requestLogger(r)
	return auth.NewGuard(
		logger,
		auth.NewResolver(logger, pc, api.options.Auth),
		pc.Roles(),
	)
}

type navigateBody struct {
	Redirect string `json:"redirect"`
}

// require runs the page guard for an API request. If the browser is not
// signed in, it is answered with where the page should navigate to.
func (api API) require(w http.ResponseWriter, r *http.Request, pc *page.Context) (*auth.Result, bool) {
	nav := ihttp.NewNavigation(r.URL.Path)
	res, err := api.guard(r, pc).Require(r.Context(), nav, nil)
	if err == nil {
		return res, true
	}

	if errors.Is(err, auth.ErrClientNotInitialized) {
		ihttp.ErrServiceUnavailable(w)
		return nil, false
	}
	target, ok := nav.Target()
	if !ok {
		target = auth.LoginPath
	}
	api.write(w, http.StatusUnauthorized, navigateBody{Redirect: target})
	return nil, false
}

// authError answers a failed auth operation.
func (api API) authError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrClientNotInitialized):
		ihttp.ErrServiceUnavailable(w)
	case errors.Is(err, auth.ErrInvalidPIN):
		ihttp.ErrInvalid(api.logger, w, err)
	case errors.Is(err, auth.ErrNotAuthenticated):
		api.write(w, http.StatusUnauthorized, navigateBody{Redirect: auth.LoginPath})
	default:
		ihttp.ErrProvider(api.logger, w, err)
	}
}

// requestOrigin is the scheme and host the request was made to.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
